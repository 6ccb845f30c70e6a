// Package query is a small store-agnostic query model. Drivers compile it into their own syntax
// (Elasticsearch DSL, RediSearch query strings), so callers never build driver-specific bodies.
package query

// Kind discriminates query variants.
type Kind int

// Query kinds.
const (
	KindMatchAll Kind = iota
	KindTerm
	KindMatch
	KindBool
)

// Query is one node of a query tree.
type Query interface {
	Kind() Kind
}

// MatchAllQuery matches every document.
type MatchAllQuery struct{}

// Kind implements Query.
func (MatchAllQuery) Kind() Kind { return KindMatchAll }

// MatchAll returns a query matching every document.
func MatchAll() MatchAllQuery { return MatchAllQuery{} }

// TermQuery is an exact-value match on a single field.
type TermQuery struct {
	Field string
	Value any
	Boost float64 // 0 = unset
}

// Kind implements Query.
func (TermQuery) Kind() Kind { return KindTerm }

// Term builds an exact-value query.
func Term(field string, value any) TermQuery {
	return TermQuery{Field: field, Value: value}
}

// WithBoost returns a copy of the term with a relevance boost.
func (t TermQuery) WithBoost(boost float64) TermQuery {
	t.Boost = boost
	return t
}

// MatchQuery is an analyzed full-text match.
type MatchQuery struct {
	Field     string
	Text      string
	Fuzziness string // "" = exact analysis, "AUTO" = edit distance by term length
}

// Kind implements Query.
func (MatchQuery) Kind() Kind { return KindMatch }

// Match builds a full-text query.
func Match(field, text string) MatchQuery {
	return MatchQuery{Field: field, Text: text}
}

// Fuzzy returns a copy of the match with AUTO fuzziness.
func (m MatchQuery) Fuzzy() MatchQuery {
	m.Fuzziness = FuzzinessAuto
	return m
}

// FuzzinessAuto lets the store pick the edit distance from the term length.
const FuzzinessAuto = "AUTO"

// BoolQuery combines clauses. With no Must clauses at least one Should clause has to match;
// with Must clauses present, Should only contributes to relevance unless MinimumShouldMatch > 0.
type BoolQuery struct {
	Must               []Query
	Should             []Query
	MustNot            []Query
	MinimumShouldMatch int // 0 = unset
}

// Kind implements Query.
func (*BoolQuery) Kind() Kind { return KindBool }

// Bool starts an empty boolean query.
func Bool() *BoolQuery { return &BoolQuery{} }

// AddMust appends required clauses.
func (b *BoolQuery) AddMust(q ...Query) *BoolQuery {
	b.Must = append(b.Must, q...)
	return b
}

// AddShould appends optional clauses.
func (b *BoolQuery) AddShould(q ...Query) *BoolQuery {
	b.Should = append(b.Should, q...)
	return b
}

// AddMustNot appends excluding clauses.
func (b *BoolQuery) AddMustNot(q ...Query) *BoolQuery {
	b.MustNot = append(b.MustNot, q...)
	return b
}

// SetMinimumShouldMatch sets how many Should clauses must match.
func (b *BoolQuery) SetMinimumShouldMatch(n int) *BoolQuery {
	b.MinimumShouldMatch = n
	return b
}

// IsEmpty reports whether the query has no clauses at all.
func (b *BoolQuery) IsEmpty() bool {
	return len(b.Must) == 0 && len(b.Should) == 0 && len(b.MustNot) == 0
}

// ShouldRequired reports whether at least one Should clause has to match.
func (b *BoolQuery) ShouldRequired() bool {
	if len(b.Should) == 0 {
		return false
	}
	return b.MinimumShouldMatch > 0 || len(b.Must) == 0
}
