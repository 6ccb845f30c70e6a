// Package app assembles the docflow services from configuration. It is the shared
// composition root of the API server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/docflow/internal/config"
	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/db/elastic"
	"github.com/kailas-cloud/docflow/internal/db/instrumented"
	dbRedis "github.com/kailas-cloud/docflow/internal/db/redis"
	documentrepo "github.com/kailas-cloud/docflow/internal/repository/document"
	eventrepo "github.com/kailas-cloud/docflow/internal/repository/event"
	audituc "github.com/kailas-cloud/docflow/internal/usecase/audit"
	flowuc "github.com/kailas-cloud/docflow/internal/usecase/flow"
	healthuc "github.com/kailas-cloud/docflow/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/docflow/internal/usecase/ingest"
	journeyuc "github.com/kailas-cloud/docflow/internal/usecase/journey"
)

// App holds the opened store handles and the services built on them.
type App struct {
	Store   *db.Manager
	Flow    *flowuc.Service
	Ingest  *ingestuc.Service
	Audit   *audituc.Engine
	Journey *journeyuc.Service
	Health  *healthuc.Service
}

// Dialer builds instrumented store handles for the configured driver.
func Dialer(cfg config.StoreConfig, logger *zap.Logger, transportLevel zapcore.Level) db.Dialer {
	return func(_ context.Context, role db.Role, creds db.Credentials) (db.Store, error) {
		switch cfg.Driver {
		case config.DriverElasticsearch:
			s, err := elastic.NewStore(elastic.Config{
				Addresses:          []string{cfg.Address()},
				Username:           creds.Username,
				Password:           creds.Password,
				MaxRetries:         cfg.MaxRetries,
				Timeout:            cfg.Timeout(),
				ConnectionsPerNode: cfg.ConnectionsPerNode,
				InsecureSkipVerify: cfg.InsecureSkipVerify,
				Logger: elastic.NewTransportLogger(
					logger.With(zap.String("role", string(role))), transportLevel),
			})
			if err != nil {
				return nil, err
			}
			return instrumented.Wrap(s, role), nil
		case config.DriverRedis:
			s, err := dbRedis.NewStore(dbRedis.Config{
				Addrs:     cfg.Redis.Addrs,
				Username:  creds.Username,
				Password:  creds.Password,
				DB:        cfg.Redis.DB,
				KeyPrefix: cfg.Redis.KeyPrefix,
			})
			if err != nil {
				return nil, err
			}
			return instrumented.Wrap(s, role), nil
		default:
			return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
		}
	}
}

// TransportLevel parses the logging level of store round trips, falling back to warn.
func TransportLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.WarnLevel
	}
	return l
}

// New opens both store handles through dial, ensures the index schemas and wires the services.
// The caller owns the returned App and must Close it.
func New(ctx context.Context, cfg config.Config, dial db.Dialer, logger *zap.Logger) (*App, error) {
	manager := db.NewManager(dial,
		db.Credentials(cfg.Store.Read),
		db.Credentials(cfg.Store.Write),
		logger,
	).WithReadiness(time.Duration(cfg.Store.ReadinessTimeout) * time.Second)

	if err := manager.Open(ctx); err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	a, err := build(ctx, cfg, manager, logger)
	if err != nil {
		manager.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg config.Config, manager *db.Manager, logger *zap.Logger) (*App, error) {
	// Services go through the manager on every call so they stop with it.
	reader := manager.Handle(db.RoleRead)
	writer := manager.Handle(db.RoleWrite)

	if err := ensureSchemas(ctx, cfg.Indices, reader, writer, logger); err != nil {
		return nil, err
	}

	events := eventrepo.New(reader, cfg.Indices.HistoricalClaim).WithMaxEvents(cfg.Ingest.FlowMaxEvents)
	readDocs := documentrepo.New(reader)
	writeDocs := documentrepo.New(writer)

	engine := audituc.New(writeDocs, cfg.Indices.Journey, logger).
		WithHistoryIndex(cfg.Indices.JourneyHistoryIndex())

	return &App{
		Store:  manager,
		Flow:   flowuc.New(events, logger),
		Ingest: ingestuc.New(writeDocs, writeDocs, logger).WithChunkSize(cfg.Ingest.ChunkSize),
		Audit:  engine,
		Journey: journeyuc.New(readDocs, writeDocs, engine, cfg.Indices.Journey).
			WithChunkSize(cfg.Ingest.ChunkSize),
		Health: healthuc.New(manager),
	}, nil
}

// ensureSchemas registers the searched indices on stores that need explicit schemas.
// The write handle creates them; the read handle only has to learn them, so a refusal there
// is logged and tolerated.
func ensureSchemas(
	ctx context.Context, indices config.IndicesConfig, reader, writer db.IndexManager, logger *zap.Logger,
) error {
	eventSchema, err := eventrepo.Schema(indices.HistoricalClaim)
	if err != nil {
		return fmt.Errorf("event schema: %w", err)
	}
	journeySchema, err := journeyuc.Schema(indices.Journey)
	if err != nil {
		return fmt.Errorf("journey schema: %w", err)
	}

	for _, def := range []*db.IndexDefinition{eventSchema, journeySchema} {
		if err := writer.EnsureIndex(ctx, def); err != nil {
			return fmt.Errorf("ensure index %s: %w", def.Name, err)
		}
		if err := reader.EnsureIndex(ctx, def); err != nil {
			logger.Warn("read handle refused index definition",
				zap.String("index", def.Name), zap.Error(err))
		}
	}
	return nil
}

// Close releases the store handles.
func (a *App) Close() {
	a.Store.Close()
}
