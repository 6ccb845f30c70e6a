package docflow

import (
	"context"
	"time"

	"github.com/kailas-cloud/docflow/internal/domain/document/patch"
	journeyuc "github.com/kailas-cloud/docflow/internal/usecase/journey"
)

// JourneyService manages journeys with audited updates.
type JourneyService struct {
	svc journeyUseCase
	obs *observer
}

// Get returns the journey with id. A missing journey yields nil and no error.
func (s *JourneyService) Get(ctx context.Context, id string) (j *Journey, err error) {
	start := time.Now()
	defer func() { s.obs.observe("journeys.get", start, err) }()

	doc, err := s.svc.Get(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	return &Journey{ID: doc.ID, Source: doc.Source}, nil
}

// Search ranks journeys matching q, returning at most size hits.
func (s *JourneyService) Search(ctx context.Context, q JourneyQuery, size int) (hits JourneyHits, err error) {
	start := time.Now()
	defer func() { s.obs.observe("journeys.search", start, err) }()

	resp, err := s.svc.Search(ctx, journeyuc.Query(q), size)
	if err != nil {
		return JourneyHits{}, err
	}
	return toJourneyHits(resp), nil
}

// Save stores one journey, keeping its "_id" field in the source.
func (s *JourneyService) Save(ctx context.Context, doc map[string]any) (res BulkResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("journeys.save", start, err) }()

	out, err := s.svc.Save(ctx, doc)
	if err != nil {
		return BulkResult{}, err
	}
	return toBulkResult(out), nil
}

// BulkSave stores many journeys.
func (s *JourneyService) BulkSave(ctx context.Context, docs []map[string]any) (res BulkResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("journeys.bulk_save", start, err) }()

	out, err := s.svc.BulkSave(ctx, docs)
	if err != nil {
		return BulkResult{}, err
	}
	return toBulkResult(out), nil
}

// Update archives the current journey and applies data as a partial update.
// meta is merged into the archived snapshot. A refused update is reported in the
// result; err is set only for failures after archival.
func (s *JourneyService) Update(
	ctx context.Context, id string, data, meta map[string]any,
) (res UpdateResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("journeys.update", start, err) }()

	p, err := patch.New(data, meta)
	if err != nil {
		return UpdateResult{}, err
	}
	out, err := s.svc.Update(ctx, id, p)
	if err != nil {
		return UpdateResult{}, err
	}
	return toUpdateResult(out), nil
}

// All returns every journey.
func (s *JourneyService) All(ctx context.Context) (hits JourneyHits, err error) {
	start := time.Now()
	defer func() { s.obs.observe("journeys.all", start, err) }()

	resp, err := s.svc.All(ctx)
	if err != nil {
		return JourneyHits{}, err
	}
	return toJourneyHits(resp), nil
}

// Page returns one page of journey sources. page starts at 1.
func (s *JourneyService) Page(ctx context.Context, page, size int) (p JourneyPage, err error) {
	start := time.Now()
	defer func() { s.obs.observe("journeys.page", start, err) }()

	resp, err := s.svc.AllPaginated(ctx, page, size)
	if err != nil {
		return JourneyPage{}, err
	}
	return JourneyPage{
		Page:    resp.Meta.Page,
		Size:    resp.Meta.Size,
		Total:   resp.Meta.Total,
		Results: resp.Results,
	}, nil
}
