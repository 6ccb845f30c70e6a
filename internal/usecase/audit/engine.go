package audit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docflow/internal/domain"
	domaudit "github.com/kailas-cloud/docflow/internal/domain/audit"
	"github.com/kailas-cloud/docflow/internal/domain/document/patch"
	"github.com/kailas-cloud/docflow/internal/metrics"
)

// Engine applies partial updates to a live index, archiving the current version of the
// document into a historical index first. The live document is never changed unless the
// archive write succeeded.
type Engine struct {
	docs    Documents
	live    string
	history string
	logger  *zap.Logger
}

// New creates an engine for the live index. The archive defaults to historical_<live>.
func New(docs Documents, live string, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		docs:    docs,
		live:    live,
		history: domaudit.HistoricalIndex(live),
		logger:  logger,
	}
}

// WithHistoryIndex overrides the archive index.
func (e *Engine) WithHistoryIndex(index string) *Engine {
	if index != "" {
		e.history = index
	}
	return e
}

// LiveIndex returns the index being updated.
func (e *Engine) LiveIndex() string { return e.live }

// HistoryIndex returns the archive index.
func (e *Engine) HistoryIndex() string { return e.history }

// Update archives document id and then merges p.Data() into it.
//
// A missing or empty document, or a failed archive write, yields a refused outcome with a
// nil error; the outcome's Cause tells them apart. An error is returned only when the archive was
// written but the final update failed.
func (e *Engine) Update(ctx context.Context, id string, p patch.Patch) (domaudit.Outcome, error) {
	current, err := e.docs.Get(ctx, e.live, id)
	if err != nil {
		return e.refuse(domaudit.StageFetch, id, err), nil
	}
	if len(current.Source) == 0 {
		return e.refuse(domaudit.StageFetch, id, domaudit.ErrNoSource), nil
	}

	rec := domaudit.Record(id, current.Source, p.Meta())
	archived, err := e.docs.Insert(ctx, e.history, "", rec)
	if err != nil {
		return e.refuse(domaudit.StageArchive, id, err), nil
	}

	if err := e.docs.Update(ctx, e.live, id, p.Data()); err != nil {
		e.logger.Error("update failed after archiving",
			zap.String("index", e.live),
			zap.String("id", id),
			zap.String("archive_id", archived.ID),
			zap.Error(err),
		)
		return domaudit.Outcome{}, fmt.Errorf("update %s after archive %s: %w", id, archived.ID, err)
	}

	e.logger.Info("document updated",
		zap.String("index", e.live),
		zap.String("id", id),
		zap.String("archive_index", e.history),
		zap.String("archive_id", archived.ID),
	)
	return domaudit.Updated(), nil
}

func (e *Engine) refuse(stage domaudit.Stage, id string, err error) domaudit.Outcome {
	out := domaudit.Refused(stage, err)
	kind := failureKind(err)
	metrics.AuditFailuresTotal.WithLabelValues(string(stage), kind).Inc()

	fields := []zap.Field{
		zap.String("stage", string(stage)),
		zap.String("index", e.live),
		zap.String("id", id),
		zap.Error(err),
	}
	if out.Cause.NotFound() {
		e.logger.Warn("document has not been found", fields...)
	} else {
		e.logger.Error("audited update refused", fields...)
	}
	return out
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidDocument):
		return "invalid_document"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "store_error"
	}
}
