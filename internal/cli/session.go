package cli

import (
	"context"

	"github.com/kailas-cloud/docflow/internal/app"
	"github.com/kailas-cloud/docflow/internal/config"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domflow "github.com/kailas-cloud/docflow/internal/domain/flow"
	logpkg "github.com/kailas-cloud/docflow/internal/logger"
	healthuc "github.com/kailas-cloud/docflow/internal/usecase/health"
)

// FlowService reconstructs claim flows.
type FlowService interface {
	ByClaimID(ctx context.Context, id int64) ([]domflow.Event, error)
	ByDocumentID(ctx context.Context, id int64) ([]domflow.Event, error)
	ByDamageRequestID(ctx context.Context, id int64) ([]domflow.Event, error)
}

// IngestService bulk-loads documents.
type IngestService interface {
	BulkInsert(ctx context.Context, index string, docs []map[string]any, chunkSize int) (bulk.Outcome, error)
}

// HealthService probes the store handles.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Session is an open connection to the document store.
type Session struct {
	Flow   FlowService
	Ingest IngestService
	Health HealthService
	Close  func()
}

// Opener opens a Session for the global options.
type Opener func(ctx context.Context, opts *RootOptions) (*Session, error)

// DefaultOpener loads configuration, opens both store handles and wires the services.
// Logs go to stderr at warn unless the config sets a level.
func DefaultOpener(ctx context.Context, opts *RootOptions) (*Session, error) {
	env := opts.Env
	if env == "" {
		env = config.GetEnv()
	}

	var (
		cfg config.Config
		err error
	)
	if opts.Config != "" {
		cfg, err = config.LoadFile(opts.Config)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	level := cfg.Logging.Level
	if level == "" {
		level = "warn"
	}
	logger, err := logpkg.New(env, level)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "create logger", err)
	}

	dial := app.Dialer(cfg.Store, logger, app.TransportLevel(cfg.Logging.TransportLevel))
	a, err := app.New(ctx, cfg, dial, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, WrapExitError(ExitCommandError, "connect to document store", err)
	}

	return &Session{
		Flow:   a.Flow,
		Ingest: a.Ingest,
		Health: a.Health,
		Close: func() {
			a.Close()
			_ = logger.Sync()
		},
	}, nil
}
