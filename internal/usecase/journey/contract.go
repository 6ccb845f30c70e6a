package journey

import (
	"context"

	"github.com/kailas-cloud/docflow/internal/db/query"
	domaudit "github.com/kailas-cloud/docflow/internal/domain/audit"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
	"github.com/kailas-cloud/docflow/internal/domain/document/patch"
)

// DocumentReader reads journeys through the read-only handle.
type DocumentReader interface {
	Get(ctx context.Context, index, id string) (domdoc.Doc, error)
	Search(ctx context.Context, index string, q query.Query, from, size int) (domdoc.Page, error)
}

// DocumentWriter writes journeys through the read-write handle.
type DocumentWriter interface {
	Insert(ctx context.Context, index, id string, src map[string]any) (domdoc.InsertResult, error)
	Bulk(
		ctx context.Context, index string, docs []map[string]any, policy domdoc.IDPolicy, chunkSize int,
	) (bulk.Outcome, error)
}

// Updater applies audited updates.
type Updater interface {
	Update(ctx context.Context, id string, p patch.Patch) (domaudit.Outcome, error)
}
