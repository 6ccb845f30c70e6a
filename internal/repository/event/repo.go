// Package event reads claim-flow events from the historical claim index.
package event

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/db/query"
	"github.com/kailas-cloud/docflow/internal/domain"
	"github.com/kailas-cloud/docflow/internal/domain/flow"
)

// Defaults for the historical claim index.
const (
	DefaultIndex     = "historical_claim"
	DefaultMaxEvents = 300
)

const tagField = flow.FieldModelTag + ".keyword"

// store is the consumer interface for event lookups (ISP).
type store interface {
	Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error)
}

// Repo implements usecase/flow.EventFinder.
type Repo struct {
	store     store
	index     string
	maxEvents int
}

// New creates an event repository over index. An empty index uses DefaultIndex.
func New(s store, index string) *Repo {
	if index == "" {
		index = DefaultIndex
	}
	return &Repo{store: s, index: index, maxEvents: DefaultMaxEvents}
}

// WithMaxEvents caps the number of events returned by FindEvents.
func (r *Repo) WithMaxEvents(n int) *Repo {
	if n > 0 {
		r.maxEvents = n
	}
	return r
}

// Index returns the index the repository reads.
func (r *Repo) Index() string { return r.index }

// FindJunction returns the first junction whose field equals value, or nil when none exists.
func (r *Repo) FindJunction(ctx context.Context, field flow.KeyField, value any) (*flow.Event, error) {
	res, err := r.store.Search(ctx, &db.SearchRequest{
		Index: r.index,
		Query: taggedTerm(flow.Junction, string(field), value),
		Size:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("search junction %s=%v: %w", field, value, translate(err))
	}
	if len(res.Hits) == 0 {
		return nil, nil
	}
	e := toEvent(res.Hits[0])
	return &e, nil
}

// FindEvents returns the events of every linked entity in one query, oldest first.
// Ties on timestamp keep index order. Results beyond the event cap are not returned.
func (r *Repo) FindEvents(ctx context.Context, links []flow.Link) ([]flow.Event, error) {
	if len(links) == 0 {
		return []flow.Event{}, nil
	}

	should := query.Bool().SetMinimumShouldMatch(1)
	for _, l := range links {
		should.AddShould(taggedTerm(l.Tag, flow.FieldID, l.ID))
	}

	res, err := r.store.Search(ctx, &db.SearchRequest{
		Index: r.index,
		Query: should,
		Sort:  []query.SortField{query.Asc(flow.FieldTimestamp), query.Asc(query.IndexOrder)},
		Size:  r.maxEvents,
	})
	if err != nil {
		return nil, fmt.Errorf("search flow events: %w", translate(err))
	}

	events := make([]flow.Event, 0, len(res.Hits))
	for _, h := range res.Hits {
		events = append(events, toEvent(h))
	}
	return events, nil
}

func translate(err error) error {
	if db.IsUnavailable(err) {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return err
}

func taggedTerm(tag flow.ModelTag, field string, value any) *query.BoolQuery {
	return query.Bool().AddMust(
		query.Term(tagField, string(tag)),
		query.Term(field, value),
	)
}

func toEvent(h db.Hit) flow.Event {
	src := h.Source
	if src == nil {
		src = map[string]any{}
	}
	return flow.Event{ID: h.ID, Index: h.Index, Source: src}
}

// Schema describes the fields flow queries touch, for stores that need an explicit index.
// Timestamps are expected as ISO-8601 strings so that lexical order is chronological.
func Schema(index string) (*db.IndexDefinition, error) {
	if index == "" {
		index = DefaultIndex
	}
	return db.NewIndex(index).
		Numeric(flow.FieldID).
		Tag(flow.FieldModelTag).
		Tag(flow.FieldState).
		SortableTag(flow.FieldTimestamp).
		Numeric(string(flow.ClaimKey)).
		Numeric(string(flow.DocumentKey)).
		Numeric(string(flow.DamageRequestKey)).
		Build()
}
