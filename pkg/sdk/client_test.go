package docflow

import (
	"context"
	"testing"

	"github.com/kailas-cloud/docflow/internal/config"
)

func TestNew_NoStore(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no store is configured")
	}
}

func TestNew_BadURL(t *testing.T) {
	for _, raw := range []string{"://nope", "localhost-without-scheme", "http://host:port"} {
		if _, err := New(context.Background(), WithElasticsearch(raw)); err == nil {
			t.Errorf("%q: expected error", raw)
		}
	}
}

func TestNew_RedisWithoutAddrs(t *testing.T) {
	if _, err := New(context.Background(), WithRedis("docflow:")); err == nil {
		t.Fatal("expected error when redis has no address")
	}
}

func TestAppConfig_Elasticsearch(t *testing.T) {
	cc := &clientConfig{}
	for _, o := range []Option{
		WithElasticsearch("https://es.internal:9243"),
		WithCredentials(Credentials{Username: "ro", Password: "a"}, Credentials{Username: "rw", Password: "b"}),
		WithIndices("claims_v2", ""),
		WithChunkSize(250),
	} {
		o.apply(cc)
	}

	cfg, err := cc.appConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != config.DriverElasticsearch {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
	if got := cfg.Store.Address(); got != "https://es.internal:9243" {
		t.Errorf("address = %q", got)
	}
	if cfg.Store.Read.Username != "ro" || cfg.Store.Write.Password != "b" {
		t.Errorf("credentials = %+v / %+v", cfg.Store.Read, cfg.Store.Write)
	}
	if cfg.Indices.HistoricalClaim != "claims_v2" {
		t.Errorf("historical claim index = %q", cfg.Indices.HistoricalClaim)
	}
	if cfg.Indices.Journey != "journey_v3" {
		t.Errorf("journey index should default, got %q", cfg.Indices.Journey)
	}
	if cfg.Indices.JourneyHistoryIndex() != "historical_journey_v3" {
		t.Errorf("history index = %q", cfg.Indices.JourneyHistoryIndex())
	}
	if cfg.Ingest.ChunkSize != 250 {
		t.Errorf("chunk size = %d", cfg.Ingest.ChunkSize)
	}
}

func TestAppConfig_DefaultPort(t *testing.T) {
	cc := &clientConfig{}
	WithElasticsearch("http://localhost").apply(cc)

	cfg, err := cc.appConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.Store.Address(); got != "http://localhost:9200" {
		t.Errorf("address = %q", got)
	}
}

func TestAppConfig_Redis(t *testing.T) {
	cc := &clientConfig{}
	WithElasticsearch("http://localhost:9200").apply(cc)
	WithRedis("app:", "r1:6379", "r2:6379").apply(cc)
	WithJourneyHistory("journey_audit").apply(cc)

	cfg, err := cc.appConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != config.DriverRedis {
		t.Errorf("last store option should win, driver = %q", cfg.Store.Driver)
	}
	if len(cfg.Store.Redis.Addrs) != 2 || cfg.Store.Redis.KeyPrefix != "app:" {
		t.Errorf("redis = %+v", cfg.Store.Redis)
	}
	if cfg.Indices.JourneyHistoryIndex() != "journey_audit" {
		t.Errorf("history index = %q", cfg.Indices.JourneyHistoryIndex())
	}
}

func TestAppConfig_NegativeChunkSize(t *testing.T) {
	cc := &clientConfig{}
	WithRedis("", "localhost:6379").apply(cc)
	WithChunkSize(-1).apply(cc)

	if _, err := cc.appConfig(); err == nil {
		t.Fatal("expected error for negative chunk size")
	}
}

func TestClient_Close(t *testing.T) {
	closed := 0
	c := &Client{closer: func() { closed++ }}
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed != 1 {
		t.Errorf("closer called %d times", closed)
	}

	if err := (&Client{}).Close(); err != nil {
		t.Fatalf("Close without handles: %v", err)
	}
}
