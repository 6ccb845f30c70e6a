package chi

import (
	"context"

	domaudit "github.com/kailas-cloud/docflow/internal/domain/audit"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
	"github.com/kailas-cloud/docflow/internal/domain/document/patch"
	domflow "github.com/kailas-cloud/docflow/internal/domain/flow"
	flowuc "github.com/kailas-cloud/docflow/internal/usecase/flow"
	healthuc "github.com/kailas-cloud/docflow/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docflow/internal/usecase/ingest"
	journeyuc "github.com/kailas-cloud/docflow/internal/usecase/journey"
)

// FlowService reconstructs claim flows.
type FlowService interface {
	ByClaimID(ctx context.Context, id int64) ([]domflow.Event, error)
	ByDocumentID(ctx context.Context, id int64) ([]domflow.Event, error)
	ByDamageRequestID(ctx context.Context, id int64) ([]domflow.Event, error)
}

// IngestService writes arbitrary documents.
type IngestService interface {
	InsertOne(ctx context.Context, index string, doc map[string]any) (domdoc.InsertResult, error)
	BulkInsert(ctx context.Context, index string, docs []map[string]any, chunkSize int) (bulk.Outcome, error)
}

// JourneyService manages journey documents.
type JourneyService interface {
	Get(ctx context.Context, id string) (*journeyuc.Doc, error)
	Search(ctx context.Context, q journeyuc.Query, size int) (journeyuc.SearchResponse, error)
	Save(ctx context.Context, doc map[string]any) (bulk.Outcome, error)
	BulkSave(ctx context.Context, docs []map[string]any) (bulk.Outcome, error)
	Update(ctx context.Context, id string, p patch.Patch) (domaudit.Outcome, error)
	All(ctx context.Context) (journeyuc.SearchResponse, error)
	AllPaginated(ctx context.Context, page, size int) (journeyuc.Paginated, error)
}

// HealthService reports store health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

var (
	_ FlowService    = (*flowuc.Service)(nil)
	_ IngestService  = (*ingestuc.Service)(nil)
	_ HealthService  = (*healthuc.Service)(nil)
	_ JourneyService = (*journeyuc.Service)(nil)
)
