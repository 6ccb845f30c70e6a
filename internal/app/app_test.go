package app

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/docflow/internal/config"
	"github.com/kailas-cloud/docflow/internal/db"
	"github.com/kailas-cloud/docflow/internal/db/instrumented"
	"github.com/kailas-cloud/docflow/internal/domain"
)

func testConfig() config.Config {
	var cfg config.Config
	cfg.Store.Host = "localhost"
	cfg.HTTP.Port = 8000
	cfg.ApplyDefaults()
	return cfg
}

func TestDialer_Elasticsearch(t *testing.T) {
	cfg := testConfig()
	dial := Dialer(cfg.Store, zap.NewNop(), zapcore.WarnLevel)

	s, err := dial(context.Background(), db.RoleRead, db.Credentials{Username: "ro"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*instrumented.Store); !ok {
		t.Errorf("expected an instrumented store, got %T", s)
	}
}

func TestDialer_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Driver = "mongo"

	if _, err := Dialer(cfg.Store, zap.NewNop(), zapcore.WarnLevel)(context.Background(), db.RoleWrite, db.Credentials{}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestTransportLevel(t *testing.T) {
	if TransportLevel("debug") != zapcore.DebugLevel {
		t.Error("debug not parsed")
	}
	if TransportLevel("nonsense") != zapcore.WarnLevel {
		t.Error("invalid level should fall back to warn")
	}
}

func TestNew_WiresServices(t *testing.T) {
	cfg := testConfig()
	stores := map[db.Role]*fakeStore{db.RoleRead: {}, db.RoleWrite: {}}
	var creds []db.Credentials
	cfg.Store.Read = config.Credentials{Username: "reader"}
	cfg.Store.Write = config.Credentials{Username: "writer"}

	a, err := New(context.Background(), cfg, func(_ context.Context, role db.Role, c db.Credentials) (db.Store, error) {
		creds = append(creds, c)
		return stores[role], nil
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(creds) != 2 || creds[0].Username != "reader" || creds[1].Username != "writer" {
		t.Errorf("credentials = %+v", creds)
	}
	if a.Journey.Index() != "journey_v3" {
		t.Errorf("journey index = %q", a.Journey.Index())
	}
	if a.Audit.HistoryIndex() != "historical_journey_v3" {
		t.Errorf("history index = %q", a.Audit.HistoryIndex())
	}

	report := a.Health.Check(context.Background())
	if report.Status != "ok" {
		t.Errorf("health = %+v", report)
	}

	a.Close()
	if stores[db.RoleRead].closed != 1 || stores[db.RoleWrite].closed != 1 {
		t.Error("Close should release both handles")
	}
}

func TestNew_EnsuresSchemas(t *testing.T) {
	cfg := testConfig()
	reader := &schemaStore{ensureErr: errors.New("NOPERM")}
	writer := &schemaStore{}

	a, err := New(context.Background(), cfg, func(_ context.Context, role db.Role, _ db.Credentials) (db.Store, error) {
		if role == db.RoleRead {
			return reader, nil
		}
		return writer, nil
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("read handle refusal should be tolerated, got %v", err)
	}
	defer a.Close()

	want := []string{"historical_claim", "journey_v3"}
	if !slices.Equal(writer.ensured, want) {
		t.Errorf("writer ensured %v, want %v", writer.ensured, want)
	}
	if !slices.Equal(reader.ensured, want) {
		t.Errorf("reader ensured %v, want %v", reader.ensured, want)
	}
}

func TestNew_WriterSchemaFailureCloses(t *testing.T) {
	cfg := testConfig()
	reader := &schemaStore{}
	writer := &schemaStore{ensureErr: errors.New("boom")}

	_, err := New(context.Background(), cfg, func(_ context.Context, role db.Role, _ db.Credentials) (db.Store, error) {
		if role == db.RoleRead {
			return reader, nil
		}
		return writer, nil
	}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error")
	}
	if reader.closed != 1 || writer.closed != 1 {
		t.Error("handles should be closed after a failed build")
	}
}

func TestNew_ServicesStopAfterClose(t *testing.T) {
	cfg := testConfig()
	a, err := New(context.Background(), cfg, func(context.Context, db.Role, db.Credentials) (db.Store, error) {
		return &fakeStore{}, nil
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	if _, err := a.Ingest.InsertOne(ctx, "logs", map[string]any{"_id": "a"}); err != nil {
		t.Fatalf("InsertOne while open: %v", err)
	}

	a.Close()

	_, err = a.Ingest.InsertOne(ctx, "logs", map[string]any{"_id": "a"})
	if !errors.Is(err, db.ErrClosed) {
		t.Errorf("InsertOne after Close: expected ErrClosed, got %v", err)
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("InsertOne after Close should report the store unavailable, got %v", err)
	}
	if _, err := a.Journey.Get(ctx, "j1"); !errors.Is(err, db.ErrClosed) {
		t.Errorf("journey Get after Close: expected ErrClosed, got %v", err)
	}
	if _, err := a.Flow.ByClaimID(ctx, 100); !errors.Is(err, db.ErrClosed) {
		t.Errorf("flow after Close: expected ErrClosed, got %v", err)
	}
}

func TestNew_OpenFailure(t *testing.T) {
	cfg := testConfig()
	_, err := New(context.Background(), cfg, func(context.Context, db.Role, db.Credentials) (db.Store, error) {
		return nil, errors.New("dial refused")
	}, zap.NewNop())
	if err == nil {
		t.Fatal("expected error")
	}
}

// --- Fakes ---

type fakeStore struct {
	closed int
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Info(context.Context) (db.ClusterInfo, error) {
	return db.ClusterInfo{Name: "test", Version: "8.15.0"}, nil
}
func (f *fakeStore) Get(context.Context, string, string) (db.Hit, error) {
	return db.Hit{}, db.ErrDocumentNotFound
}
func (f *fakeStore) Search(context.Context, *db.SearchRequest) (*db.SearchResult, error) {
	return &db.SearchResult{}, nil
}
func (f *fakeStore) Index(_ context.Context, index, id string, _ map[string]any) (db.IndexResult, error) {
	return db.IndexResult{ID: id, Index: index}, nil
}
func (f *fakeStore) Update(context.Context, string, string, map[string]any) error { return nil }
func (f *fakeStore) Bulk(context.Context, iter.Seq[db.BulkAction], int) iter.Seq2[db.BulkItem, error] {
	return func(func(db.BulkItem, error) bool) {}
}
func (f *fakeStore) Close() { f.closed++ }

type schemaStore struct {
	fakeStore
	ensureErr error
	ensured   []string
}

func (s *schemaStore) EnsureIndex(_ context.Context, def *db.IndexDefinition) error {
	s.ensured = append(s.ensured, def.Name)
	return s.ensureErr
}
