package elastic

import (
	"fmt"

	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/db/query"
)

// searchBody renders a search request as an Elasticsearch request body.
func searchBody(req *db.SearchRequest) (map[string]any, error) {
	q, err := toDSL(req.Query)
	if err != nil {
		return nil, err
	}

	body := map[string]any{"query": q}
	if len(req.Sort) > 0 {
		body["sort"] = sortDSL(req.Sort)
	}
	if req.Size > 0 {
		body["size"] = req.Size
	}
	if req.From > 0 {
		body["from"] = req.From
	}
	return body, nil
}

// toDSL converts a query tree into the Elasticsearch query DSL. A nil query matches everything.
func toDSL(q query.Query) (map[string]any, error) {
	if q == nil {
		return map[string]any{"match_all": map[string]any{}}, nil
	}

	switch v := q.(type) {
	case query.MatchAllQuery:
		return map[string]any{"match_all": map[string]any{}}, nil

	case query.TermQuery:
		if v.Boost > 0 {
			return map[string]any{"term": map[string]any{
				v.Field: map[string]any{"value": v.Value, "boost": v.Boost},
			}}, nil
		}
		return map[string]any{"term": map[string]any{v.Field: v.Value}}, nil

	case query.MatchQuery:
		clause := map[string]any{"query": v.Text}
		if v.Fuzziness != "" {
			clause["fuzziness"] = v.Fuzziness
		}
		return map[string]any{"match": map[string]any{v.Field: clause}}, nil

	case *query.BoolQuery:
		return boolDSL(v)
	}

	return nil, fmt.Errorf("unsupported query kind %d", q.Kind())
}

func boolDSL(b *query.BoolQuery) (map[string]any, error) {
	out := map[string]any{}

	groups := []struct {
		key     string
		clauses []query.Query
	}{
		{"must", b.Must},
		{"should", b.Should},
		{"must_not", b.MustNot},
	}
	for _, g := range groups {
		if len(g.clauses) == 0 {
			continue
		}
		rendered := make([]map[string]any, 0, len(g.clauses))
		for _, c := range g.clauses {
			r, err := toDSL(c)
			if err != nil {
				return nil, err
			}
			rendered = append(rendered, r)
		}
		out[g.key] = rendered
	}

	if b.MinimumShouldMatch > 0 {
		out["minimum_should_match"] = b.MinimumShouldMatch
	}
	return map[string]any{"bool": out}, nil
}

func sortDSL(fields []query.SortField) []map[string]any {
	out := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, map[string]any{f.Field: map[string]any{"order": f.Order()}})
	}
	return out
}
