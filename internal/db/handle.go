package db

import (
	"context"
	"iter"
)

var (
	_ Store        = (*Handle)(nil)
	_ IndexManager = (*Handle)(nil)
)

// Handle is a Store bound to one role of a Manager. Each call resolves the current handle,
// so once the manager is closed calls fail with ErrClosed instead of reaching a disposed client.
type Handle struct {
	m    *Manager
	role Role
}

// Handle returns the role-bound view of the manager's handles.
func (m *Manager) Handle(role Role) *Handle {
	return &Handle{m: m, role: role}
}

func (h *Handle) resolve(op string) (Store, error) {
	s, err := h.m.handle(h.role)
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}
	return s, nil
}

// Ping implements Pinger.
func (h *Handle) Ping(ctx context.Context) error {
	s, err := h.resolve(OpPing)
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}

// Info implements InfoProvider.
func (h *Handle) Info(ctx context.Context) (ClusterInfo, error) {
	s, err := h.resolve(OpInfo)
	if err != nil {
		return ClusterInfo{}, err
	}
	return s.Info(ctx)
}

// Get implements DocumentReader.
func (h *Handle) Get(ctx context.Context, index, id string) (Hit, error) {
	s, err := h.resolve(OpGet)
	if err != nil {
		return Hit{}, err
	}
	return s.Get(ctx, index, id)
}

// Search implements Searcher.
func (h *Handle) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	s, err := h.resolve(OpSearch)
	if err != nil {
		return nil, err
	}
	return s.Search(ctx, req)
}

// Index implements DocumentWriter.
func (h *Handle) Index(ctx context.Context, index, id string, doc map[string]any) (IndexResult, error) {
	s, err := h.resolve(OpIndex)
	if err != nil {
		return IndexResult{}, err
	}
	return s.Index(ctx, index, id, doc)
}

// Update implements DocumentWriter.
func (h *Handle) Update(ctx context.Context, index, id string, partial map[string]any) error {
	s, err := h.resolve(OpUpdate)
	if err != nil {
		return err
	}
	return s.Update(ctx, index, id, partial)
}

// Bulk implements BulkWriter. An unavailable handle yields a single error and no items.
func (h *Handle) Bulk(ctx context.Context, actions iter.Seq[BulkAction], chunkSize int) iter.Seq2[BulkItem, error] {
	s, err := h.resolve(OpBulk)
	if err != nil {
		return func(yield func(BulkItem, error) bool) {
			yield(BulkItem{}, err)
		}
	}
	return s.Bulk(ctx, actions, chunkSize)
}

// EnsureIndex implements IndexManager; it is a no-op for drivers without explicit schemas.
func (h *Handle) EnsureIndex(ctx context.Context, def *IndexDefinition) error {
	s, err := h.resolve(OpCreateIndex)
	if err != nil {
		return err
	}
	if im, ok := s.(IndexManager); ok {
		return im.EnsureIndex(ctx, def)
	}
	return nil
}

// Close is a no-op: the Manager owns the underlying handles.
func (h *Handle) Close() {}
