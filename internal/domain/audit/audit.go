// Package audit models archive-before-mutate updates: the historical record written before
// a live document changes, and the outcome reported to the caller.
package audit

import (
	"errors"
	"fmt"

	"github.com/kailas-cloud/docflow/internal/domain"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
)

// OriginalIDField links a historical record to the live document it was copied from.
const OriginalIDField = "_original_id"

// HistoricalIndex is the default archive index of a live index.
func HistoricalIndex(live string) string { return "historical_" + live }

// ErrNoSource is reported for a live document that exists but stores no source to archive.
// It counts as not found.
var ErrNoSource = fmt.Errorf("%w: no source to archive", domain.ErrDocumentNotFound)

// Stage names the step of an audited update that failed.
type Stage string

// Update stages that can fail before the live document is touched.
const (
	StageFetch   Stage = "fetch"
	StageArchive Stage = "archive"
)

// ArchiveError explains why an update was refused.
type ArchiveError struct {
	Stage Stage
	Err   error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// NotFound reports whether the update failed because the live document does not exist.
func (e *ArchiveError) NotFound() bool {
	return errors.Is(e.Err, domain.ErrDocumentNotFound)
}

// Summary counts updated and refused documents.
type Summary struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Outcome is the result of an audited update. Errors is always null on the wire;
// Cause carries the failure for logs and callers and is never serialized.
type Outcome struct {
	Success bool             `json:"success"`
	Summary Summary          `json:"summary"`
	Errors  []bulk.ItemError `json:"errors"`
	Cause   *ArchiveError    `json:"-"`
}

// Updated is the outcome of an applied update.
func Updated() Outcome {
	return Outcome{Success: true, Summary: Summary{Updated: 1}}
}

// Refused is the outcome of an update that stopped before touching the live document.
func Refused(stage Stage, err error) Outcome {
	return Outcome{
		Summary: Summary{Failed: 1},
		Cause:   &ArchiveError{Stage: stage, Err: err},
	}
}

// Record builds the historical snapshot of a live document: a deep copy of its source plus
// the original id, with meta keys applied last so they win over both.
func Record(id string, source, meta map[string]any) map[string]any {
	rec := domdoc.Clone(source)
	if rec == nil {
		rec = make(map[string]any, len(meta)+1)
	}
	rec[OriginalIDField] = id
	for k, v := range domdoc.Clone(meta) {
		rec[k] = v
	}
	return rec
}
