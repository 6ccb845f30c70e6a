// Package journey manages journey documents: lookups, fuzzy search, saves and audited updates.
package journey

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/db/query"
	"github.com/kailas-cloud/docflow/internal/domain"
	domaudit "github.com/kailas-cloud/docflow/internal/domain/audit"
	"github.com/kailas-cloud/docflow/internal/domain/bulk"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
	"github.com/kailas-cloud/docflow/internal/domain/document/patch"
)

// Defaults.
const (
	DefaultIndex      = "journey_v3"
	DefaultSearchSize = 10
)

// Search boosts for exact matches.
const (
	titleBoost    = 5
	usernameBoost = 4
)

// Query filters a journey search. Empty fields are ignored.
type Query struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// Doc is a journey with its id.
type Doc struct {
	ID     string         `json:"id"`
	Source map[string]any `json:"source"`
}

// Hit is a scored search result.
type Hit struct {
	ID     string         `json:"id"`
	Score  float64        `json:"score"`
	Source map[string]any `json:"source"`
}

// SearchResponse is a page of hits with the total match count.
type SearchResponse struct {
	Total int   `json:"total"`
	Hits  []Hit `json:"hits"`
}

// PageMeta describes one page of AllPaginated.
type PageMeta struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
}

// Paginated is one page of journey sources.
type Paginated struct {
	Meta    PageMeta         `json:"meta"`
	Results []map[string]any `json:"results"`
}

// Service implements the journey operations.
type Service struct {
	reader    DocumentReader
	writer    DocumentWriter
	updater   Updater
	index     string
	chunkSize int
}

// New creates a journey service over index; an empty index uses DefaultIndex.
func New(reader DocumentReader, writer DocumentWriter, updater Updater, index string) *Service {
	if index == "" {
		index = DefaultIndex
	}
	return &Service{
		reader:    reader,
		writer:    writer,
		updater:   updater,
		index:     index,
		chunkSize: db.DefaultChunkSize,
	}
}

// WithChunkSize configures the number of journeys per bulk request.
func (s *Service) WithChunkSize(n int) *Service {
	if n > 0 {
		s.chunkSize = n
	}
	return s
}

// Index returns the live journey index.
func (s *Service) Index() string { return s.index }

// Get returns the journey with id, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id string) (*Doc, error) {
	d, err := s.reader.Get(ctx, s.index, id)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get journey: %w", err)
	}
	return &Doc{ID: d.ID, Source: d.Source}, nil
}

// Search ranks exact title and username matches above fuzzy ones; a given id must match.
// A missing index yields an empty response.
func (s *Service) Search(ctx context.Context, q Query, size int) (SearchResponse, error) {
	if size <= 0 {
		size = DefaultSearchSize
	}

	page, err := s.reader.Search(ctx, s.index, searchQuery(q), 0, size)
	if errors.Is(err, domain.ErrNotFound) {
		return SearchResponse{Hits: []Hit{}}, nil
	}
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search journeys: %w", err)
	}
	return toResponse(page), nil
}

func searchQuery(q Query) *query.BoolQuery {
	b := query.Bool()
	if q.ID != "" {
		b.AddMust(query.Term("id.keyword", q.ID))
	}
	if q.Title != "" {
		b.AddShould(
			query.Term("title.keyword", q.Title).WithBoost(titleBoost),
			query.Match("title", q.Title).Fuzzy(),
		)
	}
	if q.Username != "" {
		b.AddShould(
			query.Term("username.keyword", q.Username).WithBoost(usernameBoost),
			query.Match("username", q.Username).Fuzzy(),
		)
	}
	return b
}

// Save writes one journey under its "id" field, or a store-assigned id when absent.
func (s *Service) Save(ctx context.Context, doc map[string]any) (bulk.Outcome, error) {
	id, src := domdoc.IDPolicy{Field: domdoc.JourneyIDField, Keep: true}.Apply(doc)
	if _, err := s.writer.Insert(ctx, s.index, id, src); err != nil {
		return bulk.Outcome{}, fmt.Errorf("save journey: %w", err)
	}
	return bulk.Outcome{Success: true, Summary: bulk.Summary{Inserted: 1}}, nil
}

// BulkSave writes journeys keyed by their "_id" field, which stays in the source.
func (s *Service) BulkSave(ctx context.Context, docs []map[string]any) (bulk.Outcome, error) {
	policy := domdoc.IDPolicy{Field: domdoc.IngestIDField, Keep: true}
	out, err := s.writer.Bulk(ctx, s.index, docs, policy, s.chunkSize)
	if err != nil {
		return bulk.Outcome{}, fmt.Errorf("bulk save journeys: %w", err)
	}
	return out, nil
}

// Update applies an audited partial update.
func (s *Service) Update(ctx context.Context, id string, p patch.Patch) (domaudit.Outcome, error) {
	out, err := s.updater.Update(ctx, id, p)
	if err != nil {
		return domaudit.Outcome{}, fmt.Errorf("update journey: %w", err)
	}
	return out, nil
}

// All returns the first page of journeys at the store's default size.
func (s *Service) All(ctx context.Context) (SearchResponse, error) {
	page, err := s.reader.Search(ctx, s.index, query.MatchAll(), 0, 0)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("list journeys: %w", err)
	}
	return toResponse(page), nil
}

// AllPaginated returns page (1-based) of journey sources, size per page.
func (s *Service) AllPaginated(ctx context.Context, page, size int) (Paginated, error) {
	if page < 1 || size < 1 {
		return Paginated{}, fmt.Errorf("page and size must be positive: %w", domain.ErrInvalidInput)
	}

	res, err := s.reader.Search(ctx, s.index, query.MatchAll(), (page-1)*size, size)
	if err != nil {
		return Paginated{}, fmt.Errorf("list journeys: %w", err)
	}

	results := make([]map[string]any, 0, len(res.Docs))
	for _, d := range res.Docs {
		results = append(results, d.Source)
	}
	return Paginated{
		Meta:    PageMeta{Page: page, Size: size, Total: res.Total},
		Results: results,
	}, nil
}

// Schema describes the fields journey search relies on, for stores that need explicit schemas.
func Schema(index string) (*db.IndexDefinition, error) {
	return db.NewIndex(index).
		Tag("id").
		Text("title").
		Text("username").
		Build()
}

func toResponse(page domdoc.Page) SearchResponse {
	hits := make([]Hit, 0, len(page.Docs))
	for _, d := range page.Docs {
		h := Hit{ID: d.ID, Source: d.Source}
		if d.Score != nil {
			h.Score = *d.Score
		}
		hits = append(hits, h)
	}
	return SearchResponse{Total: page.Total, Hits: hits}
}
