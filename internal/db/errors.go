package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for store operations.
var (
	ErrDocumentNotFound = errors.New("db: document not found")
	ErrIndexNotFound    = errors.New("db: index not found")
	ErrNotInitialized   = errors.New("db: store not initialized")
	ErrClosed           = errors.New("db: store closed")
)

// Op names used for error context and metrics labels.
const (
	OpPing        = "ping"
	OpInfo        = "info"
	OpGet         = "get"
	OpSearch      = "search"
	OpIndex       = "index"
	OpUpdate      = "update"
	OpBulk        = "bulk"
	OpCreateIndex = "create_index"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// ResponseError is a rejection reported by the store itself (as opposed to a transport failure).
type ResponseError struct {
	Status int
	Type   string
	Reason string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("status %d: %s: %s", e.Status, e.Type, e.Reason)
}

// IsBadRequest reports whether err carries a store-side 400 rejection.
func IsBadRequest(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Status == 400
}

// IsUnavailable reports whether err is a store operation that failed without an answer from
// the store: transport failures and handles used before Open or after Close. Cancelled or
// expired contexts and documents that cannot be encoded are the caller's doing and do not count.
func IsUnavailable(err error) bool {
	var (
		de  *Error
		re  *ResponseError
		ute *json.UnsupportedTypeError
		uve *json.UnsupportedValueError
	)
	switch {
	case !errors.As(err, &de), errors.As(err, &re):
		return false
	case errors.As(err, &ute), errors.As(err, &uve):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}
