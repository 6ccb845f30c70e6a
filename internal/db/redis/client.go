// Package redis implements db.Store on Redis 8+ with RedisJSON documents and RediSearch indexes.
package redis

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docflow/internal/db"
)

// Compile-time checks.
var (
	_ db.Store        = (*Store)(nil)
	_ db.IndexManager = (*Store)(nil)
)

// DefaultKeyPrefix namespaces every key the store writes.
const DefaultKeyPrefix = "docflow:"

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store implements db.Store via rueidis.
// Documents live at <prefix><index>:<id> as JSON; each index has an FT index <prefix><index>:idx.
type Store struct {
	client rueidis.Client
	prefix string

	mu      sync.RWMutex
	schemas map[string]*db.IndexDefinition
}

// NewStore creates a Redis store via rueidis.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newStore(client, cfg.KeyPrefix), nil
}

func newStore(c rueidis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: c, prefix: prefix, schemas: make(map[string]*db.IndexDefinition)}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.b().Ping().Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Info reports the server version from INFO server.
func (s *Store) Info(ctx context.Context) (db.ClusterInfo, error) {
	cmd := s.b().Arbitrary("INFO").Args("server").Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		return db.ClusterInfo{}, &db.Error{Op: db.OpInfo, Err: err}
	}

	info := db.ClusterInfo{Name: "redis"}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "redis_version:"); ok {
			info.Version = v
		}
		if v, ok := strings.CutPrefix(line, "redis_mode:"); ok && v != "" {
			info.Name = "redis-" + v
		}
	}
	return info, nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// KeyPrefix returns the namespace prefix applied to every key.
func (s *Store) KeyPrefix() string { return s.prefix }

func (s *Store) docKey(index, id string) string { return s.prefix + index + ":" + id }

func (s *Store) versionKey(index, id string) string { return s.prefix + "_version:" + index + ":" + id }

func (s *Store) ftName(index string) string { return s.prefix + index + ":idx" }

// idFromKey strips <prefix><index>: from a document key.
func (s *Store) idFromKey(index, key string) string {
	return strings.TrimPrefix(key, s.prefix+index+":")
}

func (s *Store) schema(index string) *db.IndexDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schemas[index]
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
