package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/db/query"
)

// defaultLimit mirrors the default page size of FT.SEARCH.
const defaultLimit = 10

// Search runs a query through FT.SEARCH on the index's FT index.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	c := compiler{schema: s.schema(req.Index)}
	q, err := c.compile(req.Query)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	args := []string{s.ftName(req.Index), q}
	if sf, ok := sortKey(req.Sort); ok {
		args = append(args, "SORTBY", c.field(sf.Field), strings.ToUpper(sf.Order()))
	}
	size := req.Size
	if size <= 0 {
		size = defaultLimit
	}
	args = append(args, "LIMIT", strconv.Itoa(req.From), strconv.Itoa(size), "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, req.Index)}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return s.parseSearchResult(req.Index, raw)
}

// sortKey picks the first sortable field; FT.SEARCH accepts a single SORTBY and has no
// equivalent of metadata sorts such as _doc.
func sortKey(fields []query.SortField) (query.SortField, bool) {
	for _, f := range fields {
		if !f.IsMeta() {
			return f, true
		}
	}
	return query.SortField{}, false
}

// --- Result parsing ---

// parseSearchResult reads [total, key1, [$, json1], key2, [$, json2], ...].
func (s *Store) parseSearchResult(index string, raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse total: %w", err)}
	}

	hits := make([]db.Hit, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		doc, ok := parseFieldPairs(fields)["$"]
		if !ok {
			continue
		}
		source, err := decodeSource(doc)
		if err != nil {
			continue
		}
		hits = append(hits, db.Hit{ID: s.idFromKey(index, key), Index: index, Source: source})
	}

	return &db.SearchResult{Total: int(total), Hits: hits}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query compilation ---

// compiler renders query trees as RediSearch query strings. With a known schema, the field
// type decides the syntax; otherwise the value type does.
type compiler struct {
	schema *db.IndexDefinition
}

func (c compiler) compile(q query.Query) (string, error) {
	if q == nil {
		return "*", nil
	}

	switch v := q.(type) {
	case query.MatchAllQuery:
		return "*", nil
	case query.TermQuery:
		return withWeight(c.term(v), v.Boost), nil
	case query.MatchQuery:
		return c.match(v), nil
	case *query.BoolQuery:
		return c.boolean(v)
	}
	return "", fmt.Errorf("unsupported query kind %d", q.Kind())
}

// field maps a store field name to the FT attribute; ".keyword" sub-fields collapse
// onto their parent.
func (c compiler) field(name string) string {
	return strings.TrimSuffix(name, ".keyword")
}

func (c compiler) fieldType(name string) (db.IndexFieldType, bool) {
	if c.schema == nil {
		return 0, false
	}
	f, ok := c.schema.Field(name)
	if !ok {
		return 0, false
	}
	return f.Type, true
}

func (c compiler) term(t query.TermQuery) string {
	name := c.field(t.Field)
	typ, known := c.fieldType(name)

	num, isNum := numeric(t.Value)
	if str, ok := t.Value.(string); ok && known && typ == db.IndexFieldNumeric {
		if _, err := strconv.ParseFloat(str, 64); err == nil {
			num, isNum = str, true
		}
	}

	switch {
	case known && typ == db.IndexFieldNumeric && isNum:
		return fmt.Sprintf("@%s:[%s %s]", name, num, num)
	case known && typ == db.IndexFieldText:
		return fmt.Sprintf("@%s:\"%s\"", name, escapeQuery(stringify(t.Value)))
	case known && typ == db.IndexFieldTag:
		return fmt.Sprintf("@%s:{%s}", name, tagEscaper.Replace(stringify(t.Value)))
	case isNum:
		return fmt.Sprintf("@%s:[%s %s]", name, num, num)
	default:
		return fmt.Sprintf("@%s:{%s}", name, tagEscaper.Replace(stringify(t.Value)))
	}
}

func (c compiler) match(m query.MatchQuery) string {
	words := strings.Fields(m.Text)
	if len(words) == 0 {
		return "*"
	}
	for i, w := range words {
		w = escapeQuery(w)
		if m.Fuzziness != "" {
			w = "%" + w + "%"
		}
		words[i] = w
	}
	// Any word may match, like the default OR operator of an analyzed match.
	return fmt.Sprintf("@%s:(%s)", c.field(m.Field), strings.Join(words, "|"))
}

func (c compiler) boolean(b *query.BoolQuery) (string, error) {
	if b.IsEmpty() {
		return "*", nil
	}

	var parts []string
	for _, q := range b.Must {
		s, err := c.compile(q)
		if err != nil {
			return "", err
		}
		parts = append(parts, group(q, s))
	}

	if len(b.Should) > 0 {
		should := make([]string, 0, len(b.Should))
		for _, q := range b.Should {
			s, err := c.compile(q)
			if err != nil {
				return "", err
			}
			should = append(should, group(q, s))
		}
		clause := "(" + strings.Join(should, " | ") + ")"
		if !b.ShouldRequired() {
			clause = "~" + clause
		}
		parts = append(parts, clause)
	}

	// A purely negative query needs something to subtract from.
	if len(parts) == 0 {
		parts = append(parts, "*")
	}

	for _, q := range b.MustNot {
		s, err := c.compile(q)
		if err != nil {
			return "", err
		}
		parts = append(parts, "-"+group(q, s))
	}

	return strings.Join(parts, " "), nil
}

// group parenthesizes nested boolean expressions so they bind as one operand.
func group(q query.Query, s string) string {
	if _, ok := q.(*query.BoolQuery); ok {
		return "(" + s + ")"
	}
	return s
}

func withWeight(s string, boost float64) string {
	if boost <= 0 {
		return s
	}
	return fmt.Sprintf("((%s) => { $weight: %s; })", s, strconv.FormatFloat(boost, 'f', -1, 64))
}

// numeric returns the canonical text of numeric values.
func numeric(v any) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		if _, err := n.Float64(); err != nil {
			return "", false
		}
		return n.String(), true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// --- Query helpers ---

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
	"|", "\\|",
)

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`,`, `\,`,
	`.`, `\.`,
)
