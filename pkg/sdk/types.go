package docflow

import (
	domaudit "github.com/kailas-cloud/docflow/internal/domain/audit"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domflow "github.com/kailas-cloud/docflow/internal/domain/flow"
	journeyuc "github.com/kailas-cloud/docflow/internal/usecase/journey"
)

// Event is one stored state snapshot of a claim flow.
type Event struct {
	ID     string
	Index  string
	Source map[string]any
}

// Model returns the event's model_tag, or "" when absent or not a string.
func (e Event) Model() string {
	s, _ := e.Source[domflow.FieldModelTag].(string)
	return s
}

// InsertResult is the store acknowledgement of a single document.
type InsertResult struct {
	ID      string
	Index   string
	Version int64
	Result  string // "created" or "updated"
}

// ItemError identifies one rejected document.
type ItemError struct {
	ID     string
	Reason string
}

// BulkResult aggregates a bulk write.
type BulkResult struct {
	Inserted int
	Failed   int
	Errors   []ItemError
}

// Succeeded reports whether no document was rejected.
func (r BulkResult) Succeeded() bool { return r.Failed == 0 }

// Journey is a stored journey with its id.
type Journey struct {
	ID     string
	Source map[string]any
}

// JourneyQuery filters a journey search. Empty fields are ignored.
type JourneyQuery struct {
	ID       string
	Title    string
	Username string
}

// JourneyHit is a scored journey search result.
type JourneyHit struct {
	ID     string
	Score  float64
	Source map[string]any
}

// JourneyHits is a page of hits with the total match count.
type JourneyHits struct {
	Total int
	Hits  []JourneyHit
}

// JourneyPage is one page of journey sources.
type JourneyPage struct {
	Page    int
	Size    int
	Total   int
	Results []map[string]any
}

// UpdateResult reports an audited journey update. Cause is set when the update was refused.
type UpdateResult struct {
	Updated bool
	Stage   string // archival stage that refused the update
	Cause   error
}

func toEvents(in []domflow.Event) []Event {
	out := make([]Event, len(in))
	for i, e := range in {
		out[i] = Event{ID: e.ID, Index: e.Index, Source: e.Source}
	}
	return out
}

func toBulkResult(o bulk.Outcome) BulkResult {
	r := BulkResult{Inserted: o.Summary.Inserted, Failed: o.Summary.Failed}
	for _, e := range o.Errors {
		r.Errors = append(r.Errors, ItemError(e))
	}
	return r
}

func toJourneyHits(in journeyuc.SearchResponse) JourneyHits {
	out := JourneyHits{Total: in.Total, Hits: make([]JourneyHit, len(in.Hits))}
	for i, h := range in.Hits {
		out.Hits[i] = JourneyHit(h)
	}
	return out
}

func toUpdateResult(o domaudit.Outcome) UpdateResult {
	r := UpdateResult{Updated: o.Success}
	if o.Cause != nil {
		r.Stage = string(o.Cause.Stage)
		r.Cause = o.Cause
	}
	return r
}
