package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docflow/internal/db"
)

// Get fetches one JSON document.
func (s *Store) Get(ctx context.Context, index, id string) (db.Hit, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(s.docKey(index, id)).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return db.Hit{}, db.ErrDocumentNotFound
		}
		return db.Hit{}, &db.Error{Op: db.OpGet, Err: err}
	}
	if raw == "" {
		return db.Hit{}, db.ErrDocumentNotFound
	}

	source, err := decodeSource(raw)
	if err != nil {
		return db.Hit{}, &db.Error{Op: db.OpGet, Err: err}
	}
	return db.Hit{ID: id, Index: index, Source: source}, nil
}

// Index stores doc and bumps its version counter in one round trip.
// An empty id gets a random UUID.
func (s *Store) Index(ctx context.Context, index, id string, doc map[string]any) (db.IndexResult, error) {
	if id == "" {
		id = uuid.NewString()
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return db.IndexResult{}, &db.Error{Op: db.OpIndex, Err: fmt.Errorf("marshal document: %w", err)}
	}

	results := s.client.DoMulti(ctx, s.writeCmds(index, id, data)...)
	version, err := writeResult(results)
	if err != nil {
		return db.IndexResult{}, &db.Error{Op: db.OpIndex, Err: err}
	}
	return db.IndexResult{ID: id, Index: index, Version: version, Result: resultName(version)}, nil
}

// Update merges partial into an existing document (JSON merge patch on the root).
func (s *Store) Update(ctx context.Context, index, id string, partial map[string]any) error {
	key := s.docKey(index, id)

	exists, err := s.do(ctx, s.b().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: err}
	}
	if exists == 0 {
		return &db.Error{Op: db.OpUpdate, Err: db.ErrDocumentNotFound}
	}

	data, err := json.Marshal(partial)
	if err != nil {
		return &db.Error{Op: db.OpUpdate, Err: fmt.Errorf("marshal document: %w", err)}
	}

	results := s.client.DoMulti(ctx,
		s.b().Arbitrary("JSON.MERGE").Keys(key).Args("$", string(data)).Build(),
		s.b().Incr().Key(s.versionKey(index, id)).Build(),
	)
	for _, r := range results {
		if err := r.Error(); err != nil {
			return &db.Error{Op: db.OpUpdate, Err: err}
		}
	}
	return nil
}

// writeCmds returns JSON.SET followed by INCR of the version counter.
func (s *Store) writeCmds(index, id string, data []byte) rueidis.Commands {
	return rueidis.Commands{
		s.b().Arbitrary("JSON.SET").Keys(s.docKey(index, id)).Args("$", string(data)).Build(),
		s.b().Incr().Key(s.versionKey(index, id)).Build(),
	}
}

// writeResult reads the results of writeCmds and returns the new version.
func writeResult(results []rueidis.RedisResult) (int64, error) {
	if len(results) != 2 {
		return 0, fmt.Errorf("expected 2 replies, got %d", len(results))
	}
	if err := results[0].Error(); err != nil {
		return 0, err
	}
	version, err := results[1].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("version counter: %w", err)
	}
	return version, nil
}

func resultName(version int64) string {
	if version <= 1 {
		return "created"
	}
	return "updated"
}

func decodeSource(raw string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	// The JSONPath form ($) wraps the document in a one-element array.
	if arr, ok := v.([]any); ok && len(arr) == 1 {
		v = arr[0]
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decode document: expected object, got %T", v)
	}
	return doc, nil
}
