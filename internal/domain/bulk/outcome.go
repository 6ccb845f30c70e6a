package bulk

// Kind classifies an outcome for callers that report success, partial success and failure
// differently.
type Kind int

// Outcome kinds.
const (
	AllSucceeded Kind = iota
	Partial
	AllFailed
)

func (k Kind) String() string {
	switch k {
	case AllSucceeded:
		return "all_succeeded"
	case Partial:
		return "partial"
	case AllFailed:
		return "all_failed"
	default:
		return "unknown"
	}
}

// Summary counts written and rejected documents.
type Summary struct {
	Inserted int `json:"inserted"`
	Failed   int `json:"failed"`
}

// ItemError identifies one rejected document.
type ItemError struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Outcome is the aggregated result of a bulk write.
// Inserted+Failed equals the number of submitted documents, Success holds iff Failed is zero,
// and Errors has one entry per failure.
type Outcome struct {
	Success bool        `json:"success"`
	Summary Summary     `json:"summary"`
	Errors  []ItemError `json:"errors"`
}

// Kind reports whether every document was written, some were, or none were.
// An empty outcome counts as AllSucceeded.
func (o Outcome) Kind() Kind {
	switch {
	case o.Summary.Failed == 0:
		return AllSucceeded
	case o.Summary.Inserted > 0:
		return Partial
	default:
		return AllFailed
	}
}

// Tally accumulates item results into an Outcome. The zero value is ready to use.
type Tally struct {
	summary Summary
	errors  []ItemError
}

// Add records one item result.
func (t *Tally) Add(r Result) {
	if r.Status() == StatusOK {
		t.summary.Inserted++
		return
	}
	t.summary.Failed++
	t.errors = append(t.errors, ItemError{ID: r.ID(), Reason: r.Reason()})
}

// Outcome returns the accumulated outcome. Errors is an empty slice, never nil.
func (t *Tally) Outcome() Outcome {
	errs := t.errors
	if errs == nil {
		errs = []ItemError{}
	}
	return Outcome{
		Success: t.summary.Failed == 0,
		Summary: t.summary,
		Errors:  errs,
	}
}
