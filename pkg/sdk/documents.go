package docflow

import (
	"context"
	"time"
)

// DocumentService writes schemaless documents into one index.
type DocumentService struct {
	index string
	svc   ingestUseCase
	obs   *observer
}

// Index returns the target index.
func (s *DocumentService) Index() string { return s.index }

// Insert stores one document. An "_id" field supplies the document id and is stripped
// from the stored source; without it the store assigns one.
func (s *DocumentService) Insert(ctx context.Context, doc map[string]any) (res InsertResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.insert", start, err) }()

	r, err := s.svc.InsertOne(ctx, s.index, doc)
	if err != nil {
		return InsertResult{}, err
	}
	return InsertResult{ID: r.ID, Index: r.Index, Version: r.Version, Result: r.Result}, nil
}

// BulkInsert stores docs in chunks of the configured size. Rejected documents are
// reported in the result; err is set only when the batch could not be sent.
func (s *DocumentService) BulkInsert(ctx context.Context, docs []map[string]any) (res BulkResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("documents.bulk_insert", start, err) }()

	out, err := s.svc.BulkInsert(ctx, s.index, docs, 0)
	if err != nil {
		return BulkResult{}, err
	}
	return toBulkResult(out), nil
}
