package flow

import (
	"encoding/json"
	"slices"
	"testing"
)

func ev(id string, tag ModelTag, state any) Event {
	src := map[string]any{FieldModelTag: string(tag)}
	if state != nil {
		src[FieldState] = state
	}
	return Event{ID: id, Index: "historical_claim", Source: src}
}

func ids(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestDedupe_BackToBackRepeats(t *testing.T) {
	in := []Event{
		ev("1", Claim, "A"),
		ev("2", Claim, "A"),
		ev("3", Claim, "B"),
	}
	got := ids(Dedupe(in))
	if !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("Dedupe = %v, want [1 3]", got)
	}
}

func TestDedupe_ScopedPerTag(t *testing.T) {
	in := []Event{
		ev("1", Claim, "A"),
		ev("2", Document, "A"),
		ev("3", Claim, "A"),
		ev("4", Document, "B"),
		ev("5", Claim, "B"),
		ev("6", Claim, "A"),
	}
	got := ids(Dedupe(in))
	if !slices.Equal(got, []string{"1", "2", "4", "5", "6"}) {
		t.Errorf("Dedupe = %v, want [1 2 4 5 6]", got)
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	in := []Event{
		ev("1", Claim, "A"),
		ev("2", Claim, "A"),
		ev("3", DamageRequest, "NEW"),
		ev("4", Claim, "B"),
		ev("5", DamageRequest, "NEW"),
	}
	once := Dedupe(in)
	twice := Dedupe(once)
	if !slices.Equal(ids(once), ids(twice)) {
		t.Errorf("Dedupe not idempotent: %v vs %v", ids(once), ids(twice))
	}
}

func TestDedupe_Empty(t *testing.T) {
	got := Dedupe(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Dedupe(nil) = %v, want empty slice", got)
	}
}

func TestDedupe_NullStatesCollapse(t *testing.T) {
	in := []Event{
		ev("1", Claim, nil),
		ev("2", Claim, nil),
		{ID: "3", Source: map[string]any{}},
		{ID: "4", Source: map[string]any{FieldState: nil}},
	}
	got := ids(Dedupe(in))
	if !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("Dedupe = %v, want [1 3]", got)
	}
}

func TestDedupe_StructuredState(t *testing.T) {
	in := []Event{
		ev("1", Claim, map[string]any{"code": "A"}),
		ev("2", Claim, map[string]any{"code": "A"}),
		ev("3", Claim, map[string]any{"code": "B"}),
	}
	got := ids(Dedupe(in))
	if !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("Dedupe = %v, want [1 3]", got)
	}
}

func TestLinks(t *testing.T) {
	junction := map[string]any{
		"id":                   json.Number("7"),
		"health_insured_claim": json.Number("100"),
		"health_document":      json.Number("200"),
		"eclaim":               nil,
	}
	got := Links(junction)
	want := []Link{
		{Tag: Claim, ID: json.Number("100")},
		{Tag: Document, ID: json.Number("200")},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Links = %v, want %v", got, want)
	}
}

func TestLinks_NonePresent(t *testing.T) {
	junction := map[string]any{
		"health_insured_claim": json.Number("0"),
		"health_document":      "",
	}
	if got := Links(junction); len(got) != 0 {
		t.Errorf("Links = %v, want none", got)
	}
}

func TestPresent(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{"", false},
		{"x", true},
		{false, false},
		{true, true},
		{json.Number("0"), false},
		{json.Number("0.0"), false},
		{json.Number("12"), true},
		{float64(0), false},
		{float64(3), true},
		{0, false},
		{int64(5), true},
		{map[string]any{}, false},
		{[]any{json.Number("1")}, true},
	}
	for _, tc := range tests {
		if got := Present(tc.in); got != tc.want {
			t.Errorf("Present(%#v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
