// Package bulk holds the accounting of bulk writes: per-item results and the aggregated outcome.
package bulk

import (
	"encoding/json"
	"fmt"
)

// ItemStatus is the processing outcome of a single bulk item.
type ItemStatus string

// Bulk item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of writing one document in a bulk operation.
type Result struct {
	id     string
	status ItemStatus
	reason string
}

// NewOK creates a successful item result.
func NewOK(id string) Result { return Result{id: id, status: StatusOK} }

// NewError creates a failed item result.
func NewError(id, reason string) Result { return Result{id: id, status: StatusError, reason: reason} }

// ID returns the document id, empty when the store never assigned one.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Reason returns the failure reason, empty on success.
func (r Result) Reason() string { return r.reason }

// Reason extracts a human-readable message from a store failure payload. Lookup order:
// error.reason, then error.caused_by.reason, then the payload rendered as JSON.
func Reason(payload any) string {
	if m, ok := payload.(map[string]any); ok {
		if s := nonEmpty(m["reason"]); s != "" {
			return s
		}
		if cause, ok := m["caused_by"].(map[string]any); ok {
			if s := nonEmpty(cause["reason"]); s != "" {
				return s
			}
		}
	}
	if s, ok := payload.(string); ok {
		return s
	}
	if payload == nil {
		return "unknown error"
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprint(payload)
	}
	return string(b)
}

func nonEmpty(v any) string {
	s, _ := v.(string)
	return s
}
