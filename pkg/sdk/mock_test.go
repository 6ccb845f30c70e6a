package docflow

import (
	"context"

	domaudit "github.com/kailas-cloud/docflow/internal/domain/audit"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
	"github.com/kailas-cloud/docflow/internal/domain/document/patch"
	domflow "github.com/kailas-cloud/docflow/internal/domain/flow"
	healthuc "github.com/kailas-cloud/docflow/internal/usecase/health"
	journeyuc "github.com/kailas-cloud/docflow/internal/usecase/journey"
)

// --- flowUseCase mock ---

type mockFlowUC struct {
	fn     func(ctx context.Context, key string, id int64) ([]domflow.Event, error)
	called string
}

func (m *mockFlowUC) ByClaimID(ctx context.Context, id int64) ([]domflow.Event, error) {
	m.called = "claim"
	return m.fn(ctx, m.called, id)
}

func (m *mockFlowUC) ByDocumentID(ctx context.Context, id int64) ([]domflow.Event, error) {
	m.called = "document"
	return m.fn(ctx, m.called, id)
}

func (m *mockFlowUC) ByDamageRequestID(ctx context.Context, id int64) ([]domflow.Event, error) {
	m.called = "damage_request"
	return m.fn(ctx, m.called, id)
}

// --- ingestUseCase mock ---

type mockIngestUC struct {
	insertFn func(ctx context.Context, index string, doc map[string]any) (domdoc.InsertResult, error)
	bulkFn   func(ctx context.Context, index string, docs []map[string]any, chunkSize int) (bulk.Outcome, error)
}

func (m *mockIngestUC) InsertOne(ctx context.Context, index string, doc map[string]any) (domdoc.InsertResult, error) {
	return m.insertFn(ctx, index, doc)
}

func (m *mockIngestUC) BulkInsert(
	ctx context.Context, index string, docs []map[string]any, chunkSize int,
) (bulk.Outcome, error) {
	return m.bulkFn(ctx, index, docs, chunkSize)
}

// --- journeyUseCase mock ---

type mockJourneyUC struct {
	getFn      func(ctx context.Context, id string) (*journeyuc.Doc, error)
	searchFn   func(ctx context.Context, q journeyuc.Query, size int) (journeyuc.SearchResponse, error)
	saveFn     func(ctx context.Context, doc map[string]any) (bulk.Outcome, error)
	bulkSaveFn func(ctx context.Context, docs []map[string]any) (bulk.Outcome, error)
	updateFn   func(ctx context.Context, id string, p patch.Patch) (domaudit.Outcome, error)
	allFn      func(ctx context.Context) (journeyuc.SearchResponse, error)
	pageFn     func(ctx context.Context, page, size int) (journeyuc.Paginated, error)
}

func (m *mockJourneyUC) Get(ctx context.Context, id string) (*journeyuc.Doc, error) {
	return m.getFn(ctx, id)
}

func (m *mockJourneyUC) Search(ctx context.Context, q journeyuc.Query, size int) (journeyuc.SearchResponse, error) {
	return m.searchFn(ctx, q, size)
}

func (m *mockJourneyUC) Save(ctx context.Context, doc map[string]any) (bulk.Outcome, error) {
	return m.saveFn(ctx, doc)
}

func (m *mockJourneyUC) BulkSave(ctx context.Context, docs []map[string]any) (bulk.Outcome, error) {
	return m.bulkSaveFn(ctx, docs)
}

func (m *mockJourneyUC) Update(ctx context.Context, id string, p patch.Patch) (domaudit.Outcome, error) {
	return m.updateFn(ctx, id, p)
}

func (m *mockJourneyUC) All(ctx context.Context) (journeyuc.SearchResponse, error) {
	return m.allFn(ctx)
}

func (m *mockJourneyUC) AllPaginated(ctx context.Context, page, size int) (journeyuc.Paginated, error) {
	return m.pageFn(ctx, page, size)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }
