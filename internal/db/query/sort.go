package query

import "strings"

// IndexOrder sorts by the store's internal insertion order. Used as a tiebreaker.
const IndexOrder = "_doc"

// SortField orders search hits by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Asc sorts ascending by field.
func Asc(field string) SortField { return SortField{Field: field} }

// Desc sorts descending by field.
func Desc(field string) SortField { return SortField{Field: field, Desc: true} }

// IsMeta reports whether the field is a store metadata field (leading underscore).
func (s SortField) IsMeta() bool { return strings.HasPrefix(s.Field, "_") }

// Order returns "asc" or "desc".
func (s SortField) Order() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}
