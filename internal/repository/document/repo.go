// Package document reads and writes schemaless documents in arbitrary indices.
package document

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/db/query"
	"github.com/kailas-cloud/docflow/internal/domain"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
)

// store is the consumer interface for documents (ISP).
type store interface {
	Get(ctx context.Context, index, id string) (db.Hit, error)
	Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
	Index(ctx context.Context, index, id string, doc map[string]any) (db.IndexResult, error)
	Update(ctx context.Context, index, id string, partial map[string]any) error
	Bulk(ctx context.Context, actions iter.Seq[db.BulkAction], chunkSize int) iter.Seq2[db.BulkItem, error]
}

// Repo implements the document contracts of the ingest, audit and journey services.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Get returns a document by id, or domain.ErrDocumentNotFound.
func (r *Repo) Get(ctx context.Context, index, id string) (domdoc.Doc, error) {
	hit, err := r.store.Get(ctx, index, id)
	if err != nil {
		return domdoc.Doc{}, fmt.Errorf("get %s/%s: %w", index, id, translate(err))
	}
	return toDoc(hit), nil
}

// Insert writes src under id. An empty id lets the store assign one.
func (r *Repo) Insert(ctx context.Context, index, id string, src map[string]any) (domdoc.InsertResult, error) {
	res, err := r.store.Index(ctx, index, id, src)
	if err != nil {
		return domdoc.InsertResult{}, fmt.Errorf("index into %s: %w", index, translate(err))
	}
	return domdoc.InsertResult{
		Success: true,
		ID:      res.ID,
		Index:   res.Index,
		Version: res.Version,
		Result:  res.Result,
	}, nil
}

// Update merges partial into the top level of an existing document.
func (r *Repo) Update(ctx context.Context, index, id string, partial map[string]any) error {
	if err := r.store.Update(ctx, index, id, partial); err != nil {
		return fmt.Errorf("update %s/%s: %w", index, id, translate(err))
	}
	return nil
}

// Search runs q against index. size 0 uses the store default.
func (r *Repo) Search(ctx context.Context, index string, q query.Query, from, size int) (domdoc.Page, error) {
	res, err := r.store.Search(ctx, &db.SearchRequest{Index: index, Query: q, From: from, Size: size})
	if err != nil {
		return domdoc.Page{}, fmt.Errorf("search %s: %w", index, translate(err))
	}
	docs := make([]domdoc.Doc, 0, len(res.Hits))
	for _, h := range res.Hits {
		docs = append(docs, toDoc(h))
	}
	return domdoc.Page{Total: res.Total, Docs: docs}, nil
}

// Bulk writes docs to index chunkSize at a time and accounts for every document.
// Ids are taken from each document according to policy; the caller's maps are not modified.
// Per-document rejections land in the outcome; an error is returned only when ctx ends
// the stream early or the store handle is unavailable.
func (r *Repo) Bulk(
	ctx context.Context, index string, docs []map[string]any, policy domdoc.IDPolicy, chunkSize int,
) (bulk.Outcome, error) {
	actions := func(yield func(db.BulkAction) bool) {
		for _, doc := range docs {
			id, src := policy.Apply(doc)
			if !yield(db.BulkAction{Op: db.BulkOpIndex, Index: index, ID: id, Source: src}) {
				return
			}
		}
	}

	var tally bulk.Tally
	for item, err := range r.store.Bulk(ctx, actions, chunkSize) {
		if err != nil {
			return bulk.Outcome{}, fmt.Errorf("bulk into %s: %w", index, translate(err))
		}
		if item.OK {
			tally.Add(bulk.NewOK(item.ID))
			continue
		}
		tally.Add(bulk.NewError(item.ID, bulk.Reason(item.Error)))
	}
	return tally.Outcome(), nil
}

// translate maps store errors onto domain errors, keeping the original in the chain.
// Failures the store did not answer for itself (transport, closed handles) mean the store is unavailable.
func translate(err error) error {
	switch {
	case errors.Is(err, db.ErrDocumentNotFound):
		return fmt.Errorf("%w: %w", domain.ErrDocumentNotFound, err)
	case errors.Is(err, db.ErrIndexNotFound):
		return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	case db.IsBadRequest(err):
		var re *db.ResponseError
		errors.As(err, &re)
		return fmt.Errorf("%w: %w", domain.NewInvalidDocument(re.Reason), err)
	case db.IsUnavailable(err):
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	default:
		return err
	}
}

func toDoc(h db.Hit) domdoc.Doc {
	src := h.Source
	if src == nil {
		src = map[string]any{}
	}
	return domdoc.Doc{ID: h.ID, Index: h.Index, Score: h.Score, Source: src}
}
