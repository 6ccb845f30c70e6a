package document

import (
	"fmt"
	"maps"
	"strconv"
)

// Default identifier fields.
const (
	// IngestIDField is read and stripped from ingested documents.
	IngestIDField = "_id"
	// JourneyIDField is read from saved journeys and kept in the source.
	JourneyIDField = "id"
)

// Doc is a stored, schemaless document.
type Doc struct {
	ID     string
	Index  string
	Score  *float64
	Source map[string]any
}

// Page is one page of search results.
type Page struct {
	Total int
	Docs  []Doc
}

// InsertResult is the store acknowledgement of a single write.
type InsertResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	Index   string `json:"index"`
	Version int64  `json:"version"`
	Result  string `json:"result"`
}

// IDPolicy decides which source field supplies the write id and whether it stays in the source.
type IDPolicy struct {
	Field string
	Keep  bool
}

// IngestPolicy reads the id from "_id" and strips it.
func IngestPolicy() IDPolicy { return IDPolicy{Field: IngestIDField} }

// Apply returns the id and the source to write. The input map is never modified;
// when the field is stripped a shallow copy is returned. Missing or null ids yield "",
// letting the store assign one.
func (p IDPolicy) Apply(src map[string]any) (string, map[string]any) {
	if p.Field == "" {
		return "", src
	}
	raw, ok := src[p.Field]
	if !ok {
		return "", src
	}
	if !p.Keep {
		src = maps.Clone(src)
		delete(src, p.Field)
	}
	return FormatID(raw), src
}

// FormatID renders a JSON id value as a string. Numbers keep their literal form.
func FormatID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case fmt.Stringer:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return fmt.Sprint(id)
	}
}

// Clone deep-copies a JSON-like value so that nested maps and slices are not shared.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
