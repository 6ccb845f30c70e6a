package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Store: StoreConfig{Host: "localhost"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingHost(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Host = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing store host")
	}
	if err.Error() != "store.host is required" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_InvalidScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Scheme = "ftp"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid scheme")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = "mongodb"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `store.driver must be "elasticsearch" or "redis", got "mongodb"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_RedisDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Store.Driver = DriverRedis
	cfg.Store.Host = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing redis addrs")
	}

	cfg.Store.Redis.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NegativeChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.Ingest.ChunkSize = -5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative chunk size")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Store.Driver != DriverElasticsearch {
		t.Errorf("expected Driver=elasticsearch, got %q", cfg.Store.Driver)
	}
	if cfg.Store.Port != 9200 {
		t.Errorf("expected Port=9200, got %d", cfg.Store.Port)
	}
	if cfg.Store.ConnectionsPerNode != 10 {
		t.Errorf("expected ConnectionsPerNode=10, got %d", cfg.Store.ConnectionsPerNode)
	}
	if cfg.Store.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.Store.MaxRetries)
	}
	if cfg.Store.Timeout() != 30*time.Second {
		t.Errorf("expected Timeout=30s, got %s", cfg.Store.Timeout())
	}
	if cfg.Store.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Store.ReadinessTimeout)
	}
	if cfg.Store.Redis.KeyPrefix != "docflow:" {
		t.Errorf("expected KeyPrefix='docflow:', got %q", cfg.Store.Redis.KeyPrefix)
	}
	if cfg.Indices.HistoricalClaim != "historical_claim" {
		t.Errorf("expected HistoricalClaim=historical_claim, got %q", cfg.Indices.HistoricalClaim)
	}
	if cfg.Indices.Journey != "journey_v3" {
		t.Errorf("expected Journey=journey_v3, got %q", cfg.Indices.Journey)
	}
	if cfg.Indices.JourneyHistoryIndex() != "historical_journey_v3" {
		t.Errorf("expected journey history historical_journey_v3, got %q", cfg.Indices.JourneyHistoryIndex())
	}
	if cfg.Ingest.ChunkSize != 1000 {
		t.Errorf("expected ChunkSize=1000, got %d", cfg.Ingest.ChunkSize)
	}
	if cfg.Ingest.FlowMaxEvents != 300 {
		t.Errorf("expected FlowMaxEvents=300, got %d", cfg.Ingest.FlowMaxEvents)
	}
	if cfg.Logging.TransportLevel != "warn" {
		t.Errorf("expected TransportLevel=warn, got %q", cfg.Logging.TransportLevel)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Store:   StoreConfig{Scheme: "https", Port: 9243, ReadinessTimeout: 15},
		Indices: IndicesConfig{Journey: "journey_v4", JourneyHistory: "historical_journey_v1"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Store.Scheme != "https" || cfg.Store.Port != 9243 {
		t.Errorf("expected https:9243, got %s:%d", cfg.Store.Scheme, cfg.Store.Port)
	}
	if cfg.Indices.JourneyHistoryIndex() != "historical_journey_v1" {
		t.Errorf("expected override, got %q", cfg.Indices.JourneyHistoryIndex())
	}
}

func TestAddress(t *testing.T) {
	s := StoreConfig{Scheme: "https", Host: "es.internal", Port: 9243}
	if got := s.Address(); got != "https://es.internal:9243" {
		t.Errorf("Address() = %q", got)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("DOCFLOW_TEST_ES_HOST", "es.test")
	t.Setenv("DOCFLOW_TEST_RO_PASSWORD", "s3cret")

	data := []byte(`
http:
  port: 8081
store:
  host: ${DOCFLOW_TEST_ES_HOST}
  port: ${DOCFLOW_TEST_ES_PORT:-9201}
  read:
    username: reader
    password: ${DOCFLOW_TEST_RO_PASSWORD}
auth:
  api_keys: ["k1"]
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Host != "es.test" || cfg.Store.Port != 9201 {
		t.Errorf("store = %s:%d", cfg.Store.Host, cfg.Store.Port)
	}
	if cfg.Store.Read.Password != "s3cret" || cfg.Store.Read.Username != "reader" {
		t.Errorf("read creds = %+v", cfg.Store.Read)
	}
	if len(cfg.Auth.APIKeys) != 1 {
		t.Errorf("api keys = %v", cfg.Auth.APIKeys)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected validation error for missing host")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte("http:\n  port: 9000\nstore:\n  host: localhost\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9000 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_Local(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store.Driver != DriverElasticsearch {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("GetEnv() = %q, want local", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("GetEnv() = %q, want prod", GetEnv())
	}
}
