package docflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/docflow/internal/app"
	domaudit "github.com/kailas-cloud/docflow/internal/domain/audit"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
	"github.com/kailas-cloud/docflow/internal/domain/document/patch"
	domflow "github.com/kailas-cloud/docflow/internal/domain/flow"
	healthuc "github.com/kailas-cloud/docflow/internal/usecase/health"
	journeyuc "github.com/kailas-cloud/docflow/internal/usecase/journey"
)

// Internal interfaces, swapped for fakes in tests.
type flowUseCase interface {
	ByClaimID(ctx context.Context, id int64) ([]domflow.Event, error)
	ByDocumentID(ctx context.Context, id int64) ([]domflow.Event, error)
	ByDamageRequestID(ctx context.Context, id int64) ([]domflow.Event, error)
}

type ingestUseCase interface {
	InsertOne(ctx context.Context, index string, doc map[string]any) (domdoc.InsertResult, error)
	BulkInsert(ctx context.Context, index string, docs []map[string]any, chunkSize int) (bulk.Outcome, error)
}

type journeyUseCase interface {
	Get(ctx context.Context, id string) (*journeyuc.Doc, error)
	Search(ctx context.Context, q journeyuc.Query, size int) (journeyuc.SearchResponse, error)
	Save(ctx context.Context, doc map[string]any) (bulk.Outcome, error)
	BulkSave(ctx context.Context, docs []map[string]any) (bulk.Outcome, error)
	Update(ctx context.Context, id string, p patch.Patch) (domaudit.Outcome, error)
	All(ctx context.Context) (journeyuc.SearchResponse, error)
	AllPaginated(ctx context.Context, page, size int) (journeyuc.Paginated, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the docflow SDK entry point.
type Client struct {
	closer     func()
	flowSvc    flowUseCase
	ingestSvc  ingestUseCase
	journeySvc journeyUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a docflow Client and opens both store handles.
// The provided context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o.apply(cc)
	}

	cfg, err := cc.appConfig()
	if err != nil {
		return nil, err
	}

	logger := cc.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	obs, err := newObserver(cc.logger, cc.metricsReg)
	if err != nil {
		return nil, err
	}

	a, err := app.New(ctx, cfg,
		app.Dialer(cfg.Store, logger, zapcore.WarnLevel), logger)
	if err != nil {
		return nil, fmt.Errorf("docflow: %w", err)
	}

	return &Client{
		closer:     a.Close,
		flowSvc:    a.Flow,
		ingestSvc:  a.Ingest,
		journeySvc: a.Journey,
		healthSvc:  a.Health,
		obs:        obs,
	}, nil
}

// Flow returns the claim flow service.
func (c *Client) Flow() *FlowService {
	return &FlowService{svc: c.flowSvc, obs: c.obs}
}

// Documents returns the ingest service bound to index.
func (c *Client) Documents(index string) *DocumentService {
	return &DocumentService{index: index, svc: c.ingestSvc, obs: c.obs}
}

// Journeys returns the journey service.
func (c *Client) Journeys() *JourneyService {
	return &JourneyService{svc: c.journeySvc, obs: c.obs}
}

// Close releases the store handles.
func (c *Client) Close() error {
	if c.closer != nil {
		c.closer()
	}
	return nil
}
