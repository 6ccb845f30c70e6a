package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/kailas-cloud/docflow/internal/db"
)

type getResponse struct {
	Index  string         `json:"_index"`
	ID     string         `json:"_id"`
	Found  bool           `json:"found"`
	Source map[string]any `json:"_source"`
}

// Get fetches one document by id.
func (s *Store) Get(ctx context.Context, index, id string) (db.Hit, error) {
	res, err := s.client.Get(index, id, s.client.Get.WithContext(ctx))
	if err != nil {
		return db.Hit{}, &db.Error{Op: db.OpGet, Err: err}
	}
	if res.StatusCode == http.StatusNotFound {
		drain(res)
		return db.Hit{}, db.ErrDocumentNotFound
	}

	var out getResponse
	if err := readResponse(db.OpGet, res, &out); err != nil {
		return db.Hit{}, err
	}
	if !out.Found {
		return db.Hit{}, db.ErrDocumentNotFound
	}
	return db.Hit{ID: out.ID, Index: out.Index, Source: out.Source}, nil
}

type indexResponse struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Version int64  `json:"_version"`
	Result  string `json:"result"`
}

// Index writes doc under id. An empty id lets Elasticsearch assign one.
func (s *Store) Index(ctx context.Context, index, id string, doc map[string]any) (db.IndexResult, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return db.IndexResult{}, &db.Error{Op: db.OpIndex, Err: fmt.Errorf("marshal document: %w", err)}
	}

	opts := []func(*esapi.IndexRequest){s.client.Index.WithContext(ctx)}
	if id != "" {
		opts = append(opts, s.client.Index.WithDocumentID(id))
	}

	res, err := s.client.Index(index, bytes.NewReader(data), opts...)
	if err != nil {
		return db.IndexResult{}, &db.Error{Op: db.OpIndex, Err: err}
	}

	var out indexResponse
	if err := readResponse(db.OpIndex, res, &out); err != nil {
		return db.IndexResult{}, err
	}
	return db.IndexResult{ID: out.ID, Index: out.Index, Version: out.Version, Result: out.Result}, nil
}

// Update merges partial into the existing document.
func (s *Store) Update(ctx context.Context, index, id string, partial map[string]any) error {
	data, err := json.Marshal(map[string]any{"doc": partial})
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: fmt.Errorf("marshal document: %w", err)}
	}

	res, err := s.client.Update(index, id, bytes.NewReader(data), s.client.Update.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}

	err = readResponse(db.OpUpdate, res, nil)
	var re *db.ResponseError
	if errors.As(err, &re) && re.Status == http.StatusNotFound {
		return &db.Error{Op: db.OpUpdate, Err: db.ErrDocumentNotFound}
	}
	return err
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Index  string         `json:"_index"`
			ID     string         `json:"_id"`
			Score  *float64       `json:"_score"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a query against one index.
func (s *Store) Search(ctx context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
	body, err := searchBody(req)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("marshal query: %w", err)}
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(req.Index),
		s.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	var out searchResponse
	if err := readResponse(db.OpSearch, res, &out); err != nil {
		var re *db.ResponseError
		if errors.As(err, &re) && re.Type == "index_not_found_exception" {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: %s", db.ErrIndexNotFound, req.Index)}
		}
		return nil, err
	}

	result := &db.SearchResult{
		Total: out.Hits.Total.Value,
		Hits:  make([]db.Hit, 0, len(out.Hits.Hits)),
	}
	for _, h := range out.Hits.Hits {
		result.Hits = append(result.Hits, db.Hit{ID: h.ID, Index: h.Index, Score: h.Score, Source: h.Source})
	}
	return result, nil
}
