package document

import (
	"context"
	"iter"
	"slices"
	"testing"

	"github.com/kailas-cloud/docflow/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn    func(ctx context.Context, index, id string) (db.Hit, error)
	searchFn func(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
	indexFn  func(ctx context.Context, index, id string, doc map[string]any) (db.IndexResult, error)
	updateFn func(ctx context.Context, index, id string, partial map[string]any) error
	// writeFn answers one chunk; unset means every action succeeds.
	writeFn func(chunk []db.BulkAction) []db.BulkItem
	chunks  [][]db.BulkAction
}

func (m *mockStore) Get(ctx context.Context, index, id string) (db.Hit, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id)
	}
	return db.Hit{ID: id, Index: index, Source: map[string]any{}}, nil
}

func (m *mockStore) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) Index(ctx context.Context, index, id string, doc map[string]any) (db.IndexResult, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, index, id, doc)
	}
	return db.IndexResult{ID: id, Index: index, Version: 1, Result: "created"}, nil
}

func (m *mockStore) Update(ctx context.Context, index, id string, partial map[string]any) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, index, id, partial)
	}
	return nil
}

func (m *mockStore) Bulk(
	ctx context.Context, actions iter.Seq[db.BulkAction], chunkSize int,
) iter.Seq2[db.BulkItem, error] {
	return db.Chunked(ctx, actions, chunkSize, func(_ context.Context, chunk []db.BulkAction) []db.BulkItem {
		m.chunks = append(m.chunks, slices.Clone(chunk))
		if m.writeFn != nil {
			return m.writeFn(chunk)
		}
		out := make([]db.BulkItem, len(chunk))
		for i, a := range chunk {
			out[i] = db.BulkItem{OK: true, ID: a.ID, Index: a.Index, Status: 201}
		}
		return out
	})
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
