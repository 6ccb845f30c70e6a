package document

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/db/query"
	"github.com/kailas-cloud/docflow/internal/domain"
	domdoc "github.com/kailas-cloud/docflow/internal/domain/document"
)

// --- Get ---

func TestGet_OK(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getFn = func(_ context.Context, index, id string) (db.Hit, error) {
		if index != "journey_v3" || id != "j1" {
			t.Errorf("unexpected get %s/%s", index, id)
		}
		return db.Hit{ID: "j1", Index: "journey_v3", Source: map[string]any{"title": "t"}}, nil
	}

	doc, err := repo.Get(context.Background(), "journey_v3", "j1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != "j1" || doc.Source["title"] != "t" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.getFn = func(_ context.Context, _, _ string) (db.Hit, error) {
		return db.Hit{}, db.ErrDocumentNotFound
	}

	_, err := repo.Get(context.Background(), "journey_v3", "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected domain.ErrDocumentNotFound, got %v", err)
	}
	if !errors.Is(err, db.ErrDocumentNotFound) {
		t.Error("store error should stay in the chain")
	}
}

// --- Insert ---

func TestInsert_OK(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexFn = func(_ context.Context, index, id string, _ map[string]any) (db.IndexResult, error) {
		return db.IndexResult{ID: "gen-1", Index: index, Version: 1, Result: "created"}, nil
	}

	res, err := repo.Insert(context.Background(), "logs", "", map[string]any{"msg": "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domdoc.InsertResult{Success: true, ID: "gen-1", Index: "logs", Version: 1, Result: "created"}
	if res != want {
		t.Errorf("res = %+v, want %+v", res, want)
	}
}

func TestInsert_BadRequest(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexFn = func(_ context.Context, _, _ string, _ map[string]any) (db.IndexResult, error) {
		return db.IndexResult{}, &db.Error{Op: db.OpIndex, Err: &db.ResponseError{
			Status: 400, Type: "mapper_parsing_exception", Reason: "failed to parse field [age]",
		}}
	}

	_, err := repo.Insert(context.Background(), "logs", "", map[string]any{"age": "x"})
	var invalid *domain.InvalidDocumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidDocumentError, got %v", err)
	}
	if invalid.Reason != "failed to parse field [age]" {
		t.Errorf("reason = %q", invalid.Reason)
	}
	if !errors.Is(err, domain.ErrInvalidDocument) {
		t.Error("expected ErrInvalidDocument in chain")
	}
}

func TestInsert_TransportError(t *testing.T) {
	repo, ms := newTestRepo(t)
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	ms.indexFn = func(_ context.Context, _, _ string, _ map[string]any) (db.IndexResult, error) {
		return db.IndexResult{}, &db.Error{Op: db.OpIndex, Err: refused}
	}

	_, err := repo.Insert(context.Background(), "logs", "", map[string]any{})
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		t.Error("transport cause should stay in the chain")
	}
	if errors.Is(err, domain.ErrInvalidDocument) {
		t.Error("transport failure must not look like a bad request")
	}
}

func TestInsert_StoreServerError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.indexFn = func(_ context.Context, _, _ string, _ map[string]any) (db.IndexResult, error) {
		return db.IndexResult{}, &db.Error{Op: db.OpIndex, Err: &db.ResponseError{Status: 500, Reason: "shard failure"}}
	}

	_, err := repo.Insert(context.Background(), "logs", "", map[string]any{})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, domain.ErrStoreUnavailable) || errors.Is(err, domain.ErrInvalidDocument) {
		t.Errorf("a store-side 500 is neither unavailable nor invalid input: %v", err)
	}
}

func TestBulk_ClosedHandle(t *testing.T) {
	m := db.NewManager(func(context.Context, db.Role, db.Credentials) (db.Store, error) {
		return nil, errors.New("never dialed")
	}, db.Credentials{}, db.Credentials{}, nil)
	repo := New(m.Handle(db.RoleWrite))

	_, err := repo.Bulk(context.Background(), "logs", []map[string]any{{"v": 1}}, domdoc.IngestPolicy(), 0)
	if !errors.Is(err, db.ErrNotInitialized) || !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected an unavailable store, got %v", err)
	}
}

// --- Update ---

func TestUpdate_NotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.updateFn = func(_ context.Context, _, _ string, _ map[string]any) error {
		return &db.Error{Op: db.OpUpdate, Err: db.ErrDocumentNotFound}
	}

	err := repo.Update(context.Background(), "journey_v3", "x", map[string]any{"a": 1})
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

// --- Search ---

func TestSearch_MapsHits(t *testing.T) {
	repo, ms := newTestRepo(t)
	score := 1.5
	ms.searchFn = func(_ context.Context, req *db.SearchRequest) (*db.SearchResult, error) {
		if req.Index != "journey_v3" || req.From != 20 || req.Size != 10 {
			t.Errorf("unexpected request %+v", req)
		}
		return &db.SearchResult{Total: 42, Hits: []db.Hit{
			{ID: "a", Index: "journey_v3", Score: &score, Source: map[string]any{"x": 1}},
			{ID: "b", Index: "journey_v3"},
		}}, nil
	}

	page, err := repo.Search(context.Background(), "journey_v3", query.MatchAll(), 20, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Total != 42 || len(page.Docs) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Docs[0].Score == nil || *page.Docs[0].Score != 1.5 {
		t.Error("score not propagated")
	}
	if page.Docs[1].Source == nil {
		t.Error("nil source should become an empty map")
	}
}

func TestSearch_IndexNotFound(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFn = func(_ context.Context, _ *db.SearchRequest) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	}

	_, err := repo.Search(context.Background(), "nope", nil, 0, 0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Bulk ---

func TestBulk_AllSucceed(t *testing.T) {
	repo, ms := newTestRepo(t)
	docs := []map[string]any{
		{"_id": "a", "v": 1},
		{"_id": "b", "v": 2},
		{"v": 3},
	}

	out, err := repo.Bulk(context.Background(), "logs", docs, domdoc.IngestPolicy(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success || out.Summary.Inserted != 3 || out.Summary.Failed != 0 {
		t.Errorf("outcome = %+v", out)
	}
	if len(out.Errors) != 0 || out.Errors == nil {
		t.Errorf("errors = %#v, want empty slice", out.Errors)
	}

	if len(ms.chunks) != 2 || len(ms.chunks[0]) != 2 || len(ms.chunks[1]) != 1 {
		t.Fatalf("chunks = %v", ms.chunks)
	}
	first := ms.chunks[0][0]
	if first.ID != "a" || first.Index != "logs" || first.Op != db.BulkOpIndex {
		t.Errorf("first action = %+v", first)
	}
	if _, ok := first.Source["_id"]; ok {
		t.Error("_id should be stripped from the source")
	}
	if _, ok := docs[0]["_id"]; !ok {
		t.Error("caller's document modified")
	}
	if ms.chunks[1][0].ID != "" {
		t.Errorf("doc without _id should get empty id, got %q", ms.chunks[1][0].ID)
	}
}

func TestBulk_KeepPolicy(t *testing.T) {
	repo, ms := newTestRepo(t)
	docs := []map[string]any{{"_id": "a", "title": "t"}}

	if _, err := repo.Bulk(context.Background(), "journey_v3", docs, domdoc.IDPolicy{Field: "_id", Keep: true}, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.chunks[0][0].Source["_id"] != "a" {
		t.Error("_id should be kept in the source")
	}
}

func TestBulk_PartialFailure(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.writeFn = func(chunk []db.BulkAction) []db.BulkItem {
		out := make([]db.BulkItem, len(chunk))
		for i, a := range chunk {
			if a.Source["bad"] == true {
				out[i] = db.BulkItem{ID: a.ID, Status: 400, Error: map[string]any{
					"type":      "mapper_parsing_exception",
					"caused_by": map[string]any{"reason": "invalid date"},
				}}
				continue
			}
			out[i] = db.BulkItem{OK: true, ID: a.ID, Status: 201}
		}
		return out
	}
	docs := []map[string]any{
		{"_id": "1"},
		{"_id": "2", "bad": true},
		{"_id": "3"},
	}

	out, err := repo.Bulk(context.Background(), "logs", docs, domdoc.IngestPolicy(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Success {
		t.Error("expected Success=false")
	}
	if out.Summary.Inserted != 2 || out.Summary.Failed != 1 {
		t.Errorf("summary = %+v", out.Summary)
	}
	if len(out.Errors) != 1 || out.Errors[0].ID != "2" || out.Errors[0].Reason != "invalid date" {
		t.Errorf("errors = %+v", out.Errors)
	}
}

func TestBulk_Empty(t *testing.T) {
	repo, ms := newTestRepo(t)

	out, err := repo.Bulk(context.Background(), "logs", nil, domdoc.IngestPolicy(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Success || out.Summary.Inserted != 0 || out.Summary.Failed != 0 || out.Errors == nil {
		t.Errorf("outcome = %+v", out)
	}
	if len(ms.chunks) != 0 {
		t.Error("no chunk should be written for empty input")
	}
}

func TestBulk_Cancelled(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Bulk(ctx, "logs", []map[string]any{{"v": 1}}, domdoc.IngestPolicy(), 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
