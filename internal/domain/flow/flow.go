// Package flow models claim-flow events: the junction document that links a claim, its
// supporting document and its damage request, and the per-tag state history of those entities.
package flow

import (
	"encoding/json"
	"reflect"
)

// ModelTag is the value of the model_tag attribute identifying an event's document type.
type ModelTag string

// Model tags as stored.
const (
	Junction      ModelTag = "HealthInsuredClaimEclaim"
	Claim         ModelTag = "HealthInsuredClaim"
	Document      ModelTag = "HealthClaimDocument"
	DamageRequest ModelTag = "DamageRequest"
)

// KeyField is a junction attribute holding the id of a linked entity.
type KeyField string

// Junction foreign keys.
const (
	ClaimKey         KeyField = "health_insured_claim"
	DocumentKey      KeyField = "health_document"
	DamageRequestKey KeyField = "eclaim"
)

// Event attributes.
const (
	FieldID        = "id"
	FieldModelTag  = "model_tag"
	FieldState     = "state"
	FieldTimestamp = "timestamp"
)

// links maps each junction key to the model tag of the entity it references, in fan-out order.
var links = []struct {
	field KeyField
	tag   ModelTag
}{
	{ClaimKey, Claim},
	{DocumentKey, Document},
	{DamageRequestKey, DamageRequest},
}

// Event is one stored state snapshot.
type Event struct {
	ID     string         `json:"id"`
	Index  string         `json:"index"`
	Source map[string]any `json:"source"`
}

// Tag returns the event's model_tag or nil when absent.
func (e Event) Tag() any { return e.Source[FieldModelTag] }

// State returns the event's state or nil when absent.
func (e Event) State() any { return e.Source[FieldState] }

// Link is a resolved junction foreign key.
type Link struct {
	Tag ModelTag
	ID  any
}

// Links extracts the present foreign keys from a junction source, in claim, document,
// damage request order.
func Links(junction map[string]any) []Link {
	var out []Link
	for _, l := range links {
		v := junction[string(l.field)]
		if !Present(v) {
			continue
		}
		out = append(out, Link{Tag: l.tag, ID: v})
	}
	return out
}

// Present reports whether a JSON value counts as set. nil, zero values and empty
// containers do not.
func Present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// Dedupe drops back-to-back repeats: an event is kept when its model_tag has not been
// seen yet or its state differs from the last kept state of that tag. Order is preserved,
// and applying Dedupe to its own output returns it unchanged.
func Dedupe(events []Event) []Event {
	if len(events) == 0 {
		return []Event{}
	}

	out := make([]Event, 0, len(events))
	// keyed by tag rendered as JSON so that non-comparable tag values do not panic
	last := make(map[string]any)
	for _, e := range events {
		key := tagKey(e.Tag())
		prev, seen := last[key]
		if seen && reflect.DeepEqual(prev, e.State()) {
			continue
		}
		out = append(out, e)
		last[key] = e.State()
	}
	return out
}

func tagKey(tag any) string {
	if s, ok := tag.(string); ok {
		return "s:" + s
	}
	b, err := json.Marshal(tag)
	if err != nil {
		return "?"
	}
	return "j:" + string(b)
}
