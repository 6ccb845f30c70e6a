package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidDocument signals a document the store refused because of its shape or field types.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidInput signals a malformed request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable signals that the document store could not be reached.
	ErrStoreUnavailable = errors.New("document store unavailable")
)

// InvalidDocumentError wraps ErrInvalidDocument with the reason reported by the store.
type InvalidDocumentError struct {
	Reason string
}

func (e *InvalidDocumentError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDocument.Error(), e.Reason)
}

func (e *InvalidDocumentError) Unwrap() error { return ErrInvalidDocument }

// NewInvalidDocument creates an invalid document error.
func NewInvalidDocument(reason string) error {
	return &InvalidDocumentError{Reason: reason}
}
