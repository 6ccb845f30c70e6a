package ingest

import (
	"context"

	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
)

// DocumentWriter writes single documents.
type DocumentWriter interface {
	Insert(ctx context.Context, index, id string, src map[string]any) (domdoc.InsertResult, error)
}

// BulkWriter writes many documents with per-document accounting.
type BulkWriter interface {
	Bulk(
		ctx context.Context, index string, docs []map[string]any, policy domdoc.IDPolicy, chunkSize int,
	) (bulk.Outcome, error)
}
