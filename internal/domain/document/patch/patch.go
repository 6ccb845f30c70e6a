package patch

import (
	"errors"

	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
)

// ErrDataRequired is returned when a patch carries no data object.
var ErrDataRequired = errors.New("data is required")

// Patch is an audited partial update: top-level fields to merge plus metadata
// recorded with the archived version.
type Patch struct {
	data map[string]any
	meta map[string]any
}

// New validates and creates a Patch. data must be present (it may be empty); meta is optional.
func New(data, meta map[string]any) (Patch, error) {
	if data == nil {
		return Patch{}, ErrDataRequired
	}
	return Patch{data: domdoc.Clone(data), meta: domdoc.Clone(meta)}, nil
}

// Data returns the fields to merge into the live document.
func (p Patch) Data() map[string]any { return p.data }

// Meta returns the metadata stamped onto the historical record.
func (p Patch) Meta() map[string]any { return p.meta }
