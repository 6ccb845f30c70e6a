package docflow

import (
	"github.com/kailas-cloud/docflow/internal/domain"
	"github.com/kailas-cloud/docflow/internal/domain/document/patch"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound         = domain.ErrNotFound
	ErrDocumentNotFound = domain.ErrDocumentNotFound
	ErrInvalidDocument  = domain.ErrInvalidDocument
	ErrInvalidInput     = domain.ErrInvalidInput
	ErrDataRequired     = patch.ErrDataRequired
)
