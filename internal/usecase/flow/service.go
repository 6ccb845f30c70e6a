package flow

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domflow "github.com/kailas-cloud/docflow/internal/domain/flow"
	"github.com/kailas-cloud/docflow/internal/metrics"
)

// Service reconstructs claim flows.
type Service struct {
	events EventFinder
	logger *zap.Logger
}

// New creates a flow service.
func New(events EventFinder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{events: events, logger: logger}
}

// Reconstruct returns the deduplicated, chronological events of every entity linked by the
// junction whose field equals value. A missing junction, or a junction without links,
// yields an empty flow rather than an error.
func (s *Service) Reconstruct(ctx context.Context, value any, field domflow.KeyField) ([]domflow.Event, error) {
	junction, err := s.events.FindJunction(ctx, field, value)
	if err != nil {
		return nil, fmt.Errorf("find junction: %w", err)
	}
	if junction == nil {
		s.logger.Debug("no junction for flow", zap.String("field", string(field)), zap.Any("value", value))
		return s.done([]domflow.Event{}), nil
	}

	links := domflow.Links(junction.Source)
	if len(links) == 0 {
		s.logger.Debug("junction has no linked entities", zap.String("junction", junction.ID))
		return s.done([]domflow.Event{}), nil
	}

	events, err := s.events.FindEvents(ctx, links)
	if err != nil {
		return nil, fmt.Errorf("find events for junction %s: %w", junction.ID, err)
	}
	return s.done(domflow.Dedupe(events)), nil
}

func (s *Service) done(events []domflow.Event) []domflow.Event {
	metrics.FlowEventsReturned.Observe(float64(len(events)))
	return events
}

// ByClaimID reconstructs the flow of a claim.
func (s *Service) ByClaimID(ctx context.Context, id int64) ([]domflow.Event, error) {
	return s.Reconstruct(ctx, id, domflow.ClaimKey)
}

// ByDocumentID reconstructs the flow of a claim document.
func (s *Service) ByDocumentID(ctx context.Context, id int64) ([]domflow.Event, error) {
	return s.Reconstruct(ctx, id, domflow.DocumentKey)
}

// ByDamageRequestID reconstructs the flow of a damage request.
func (s *Service) ByDamageRequestID(ctx context.Context, id int64) ([]domflow.Event, error) {
	return s.Reconstruct(ctx, id, domflow.DamageRequestKey)
}
