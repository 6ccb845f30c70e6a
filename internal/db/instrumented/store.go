// Package instrumented decorates a db.Store with Prometheus request metrics.
package instrumented

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/metrics"
)

var (
	_ db.Store        = (*Store)(nil)
	_ db.IndexManager = (*Store)(nil)
)

// Store records count and latency of every call on the wrapped store, labelled by role.
type Store struct {
	next db.Store
	role string
}

// Wrap decorates next.
func Wrap(next db.Store, role db.Role) *Store {
	return &Store{next: next, role: string(role)}
}

// Unwrap returns the decorated store.
func (s *Store) Unwrap() db.Store { return s.next }

// Ping implements db.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	metrics.ObserveStore(s.role, db.OpPing, start, err)
	return err
}

// Info implements db.InfoProvider.
func (s *Store) Info(ctx context.Context) (db.ClusterInfo, error) {
	start := time.Now()
	info, err := s.next.Info(ctx)
	metrics.ObserveStore(s.role, db.OpInfo, start, err)
	return info, err
}

// Get implements db.DocumentReader. A missing document is not counted as an error.
func (s *Store) Get(ctx context.Context, index, id string) (db.Hit, error) {
	start := time.Now()
	hit, err := s.next.Get(ctx, index, id)
	observed := err
	if errors.Is(err, db.ErrDocumentNotFound) {
		observed = nil
	}
	metrics.ObserveStore(s.role, db.OpGet, start, observed)
	return hit, err
}

// Search implements db.Searcher.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	start := time.Now()
	res, err := s.next.Search(ctx, req)
	metrics.ObserveStore(s.role, db.OpSearch, start, err)
	return res, err
}

// Index implements db.DocumentWriter.
func (s *Store) Index(ctx context.Context, index, id string, doc map[string]any) (db.IndexResult, error) {
	start := time.Now()
	res, err := s.next.Index(ctx, index, id, doc)
	metrics.ObserveStore(s.role, db.OpIndex, start, err)
	return res, err
}

// Update implements db.DocumentWriter.
func (s *Store) Update(ctx context.Context, index, id string, partial map[string]any) error {
	start := time.Now()
	err := s.next.Update(ctx, index, id, partial)
	metrics.ObserveStore(s.role, db.OpUpdate, start, err)
	return err
}

// Bulk implements db.BulkWriter. The whole stream is observed as one call, ending when the
// consumer stops or the input is exhausted.
func (s *Store) Bulk(ctx context.Context, actions iter.Seq[db.BulkAction], chunkSize int) iter.Seq2[db.BulkItem, error] {
	inner := s.next.Bulk(ctx, actions, chunkSize)
	return func(yield func(db.BulkItem, error) bool) {
		start := time.Now()
		var streamErr error
		defer func() { metrics.ObserveStore(s.role, db.OpBulk, start, streamErr) }()

		for item, err := range inner {
			if err != nil {
				streamErr = err
			}
			if !yield(item, err) {
				return
			}
		}
	}
}

// EnsureIndex delegates to the wrapped store when it manages explicit schemas and is a no-op
// otherwise.
func (s *Store) EnsureIndex(ctx context.Context, def *db.IndexDefinition) error {
	im, ok := s.next.(db.IndexManager)
	if !ok {
		return nil
	}
	start := time.Now()
	err := im.EnsureIndex(ctx, def)
	metrics.ObserveStore(s.role, db.OpCreateIndex, start, err)
	return err
}

// Close implements db.Store.
func (s *Store) Close() {
	s.next.Close()
}
