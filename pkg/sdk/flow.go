package docflow

import (
	"context"
	"time"
)

// FlowService reconstructs claim flows.
type FlowService struct {
	svc flowUseCase
	obs *observer
}

// ByClaimID returns the flow of a health insured claim.
func (s *FlowService) ByClaimID(ctx context.Context, id int64) (events []Event, err error) {
	start := time.Now()
	defer func() { s.obs.observe("flow.claim", start, err) }()

	found, err := s.svc.ByClaimID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEvents(found), nil
}

// ByDocumentID returns the flow reached from a health document.
func (s *FlowService) ByDocumentID(ctx context.Context, id int64) (events []Event, err error) {
	start := time.Now()
	defer func() { s.obs.observe("flow.document", start, err) }()

	found, err := s.svc.ByDocumentID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEvents(found), nil
}

// ByDamageRequestID returns the flow reached from an eclaim.
func (s *FlowService) ByDamageRequestID(ctx context.Context, id int64) (events []Event, err error) {
	start := time.Now()
	defer func() { s.obs.observe("flow.damage_request", start, err) }()

	found, err := s.svc.ByDamageRequestID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toEvents(found), nil
}
