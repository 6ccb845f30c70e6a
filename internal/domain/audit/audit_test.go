package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/kailas-cloud/docflow/internal/domain"
)

func TestHistoricalIndex(t *testing.T) {
	if got := HistoricalIndex("journey_v3"); got != "historical_journey_v3" {
		t.Errorf("HistoricalIndex = %q", got)
	}
}

func TestRecord(t *testing.T) {
	src := map[string]any{
		"title":  "old",
		"nested": map[string]any{"k": "v"},
	}
	meta := map[string]any{"changed_by": "ops", "title": "from-meta"}

	rec := Record("j1", src, meta)

	if rec[OriginalIDField] != "j1" {
		t.Errorf("_original_id = %v", rec[OriginalIDField])
	}
	if rec["changed_by"] != "ops" {
		t.Errorf("changed_by = %v", rec["changed_by"])
	}
	if rec["title"] != "from-meta" {
		t.Errorf("meta should win over source, title = %v", rec["title"])
	}

	rec["nested"].(map[string]any)["k"] = "mutated"
	if src["nested"].(map[string]any)["k"] != "v" {
		t.Error("record shares nested state with the live source")
	}
	if src["title"] != "old" {
		t.Error("live source modified")
	}
}

func TestRecord_MetaOverridesOriginalID(t *testing.T) {
	rec := Record("j1", map[string]any{}, map[string]any{OriginalIDField: "other"})
	if rec[OriginalIDField] != "other" {
		t.Errorf("_original_id = %v, want meta value", rec[OriginalIDField])
	}
}

func TestRecord_NilSource(t *testing.T) {
	rec := Record("j1", nil, nil)
	if len(rec) != 1 || rec[OriginalIDField] != "j1" {
		t.Errorf("rec = %v", rec)
	}
}

func TestOutcome_JSON(t *testing.T) {
	tests := []struct {
		name string
		o    Outcome
		want string
	}{
		{
			name: "updated",
			o:    Updated(),
			want: `{"success":true,"summary":{"updated":1,"failed":0},"errors":null}`,
		},
		{
			name: "refused",
			o:    Refused(StageFetch, domain.ErrDocumentNotFound),
			want: `{"success":false,"summary":{"updated":0,"failed":1},"errors":null}`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.o)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(b) != tc.want {
				t.Errorf("json = %s, want %s", b, tc.want)
			}
		})
	}
}

func TestArchiveError(t *testing.T) {
	notFound := &ArchiveError{Stage: StageFetch, Err: fmt.Errorf("get j1: %w", domain.ErrDocumentNotFound)}
	if !notFound.NotFound() {
		t.Error("expected NotFound() for wrapped ErrDocumentNotFound")
	}
	if !errors.Is(notFound, domain.ErrDocumentNotFound) {
		t.Error("ArchiveError should unwrap to its cause")
	}

	transport := &ArchiveError{Stage: StageArchive, Err: errors.New("connection refused")}
	if transport.NotFound() {
		t.Error("transport failure reported as not found")
	}
	if transport.Error() != "archive stage: connection refused" {
		t.Errorf("Error() = %q", transport.Error())
	}
}
