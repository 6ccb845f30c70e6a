package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverElasticsearch = "elasticsearch"
	DriverRedis         = "redis"
)

// Config holds the docflow service configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Store   StoreConfig   `yaml:"store"`
	Indices IndicesConfig `yaml:"indices"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level          string `yaml:"level"`           // debug, info, warn, error (default: determined by env)
	TransportLevel string `yaml:"transport_level"` // store client round trips (default: warn)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Credentials authenticate one store handle.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// StoreConfig holds document store connection settings.
type StoreConfig struct {
	Driver             string      `yaml:"driver"` // elasticsearch, redis (default: elasticsearch)
	Scheme             string      `yaml:"scheme"` // http, https (default: http)
	Host               string      `yaml:"host"`
	Port               int         `yaml:"port"`
	Read               Credentials `yaml:"read"`
	Write              Credentials `yaml:"write"`
	ConnectionsPerNode int         `yaml:"connections_per_node"`
	TimeoutSec         int         `yaml:"timeout_sec"`
	MaxRetries         int         `yaml:"max_retries"`
	InsecureSkipVerify bool        `yaml:"insecure_skip_verify"`
	ReadinessTimeout   int         `yaml:"readiness_timeout_sec"`
	Redis              RedisConfig `yaml:"redis"`
}

// RedisConfig holds settings specific to the redis driver.
type RedisConfig struct {
	Addrs     []string `yaml:"addrs"`
	KeyPrefix string   `yaml:"key_prefix"`
	DB        int      `yaml:"db"`
}

// IndicesConfig names the indices the services operate on.
type IndicesConfig struct {
	HistoricalClaim string `yaml:"historical_claim"`
	Journey         string `yaml:"journey"`
	JourneyHistory  string `yaml:"journey_history"` // empty = historical_<journey>
}

// IngestConfig holds bulk and flow limits.
type IngestConfig struct {
	ChunkSize     int `yaml:"chunk_size"`
	FlowMaxEvents int `yaml:"flow_max_events"`
}

// JourneyHistoryIndex returns the archive index of journeys.
func (i IndicesConfig) JourneyHistoryIndex() string {
	if i.JourneyHistory != "" {
		return i.JourneyHistory
	}
	return "historical_" + i.Journey
}

// Address returns scheme://host:port for the elasticsearch driver.
func (s StoreConfig) Address() string {
	return s.Scheme + "://" + s.Host + ":" + strconv.Itoa(s.Port)
}

// Timeout returns the per-request store timeout.
func (s StoreConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding environment variables, applying defaults
// and validating the result.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverElasticsearch
	}
	if c.Store.Scheme == "" {
		c.Store.Scheme = "http"
	}
	if c.Store.Port <= 0 {
		c.Store.Port = 9200
	}
	if c.Store.ConnectionsPerNode <= 0 {
		c.Store.ConnectionsPerNode = 10
	}
	if c.Store.TimeoutSec <= 0 {
		c.Store.TimeoutSec = 30
	}
	if c.Store.MaxRetries <= 0 {
		c.Store.MaxRetries = 3
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Store.Redis.KeyPrefix == "" {
		c.Store.Redis.KeyPrefix = "docflow:"
	}
	if c.Indices.HistoricalClaim == "" {
		c.Indices.HistoricalClaim = "historical_claim"
	}
	if c.Indices.Journey == "" {
		c.Indices.Journey = "journey_v3"
	}
	if c.Ingest.ChunkSize == 0 {
		c.Ingest.ChunkSize = 1000
	}
	if c.Ingest.FlowMaxEvents <= 0 {
		c.Ingest.FlowMaxEvents = 300
	}
	if c.Logging.TransportLevel == "" {
		c.Logging.TransportLevel = "warn"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Store.Driver {
	case DriverElasticsearch:
		if c.Store.Host == "" {
			return fmt.Errorf("store.host is required")
		}
		if c.Store.Port > 65535 {
			return fmt.Errorf("store.port must be between 1 and 65535, got %d", c.Store.Port)
		}
		switch c.Store.Scheme {
		case "http", "https":
			// ok
		default:
			return fmt.Errorf("store.scheme must be \"http\" or \"https\", got %q", c.Store.Scheme)
		}
	case DriverRedis:
		if len(c.Store.Redis.Addrs) == 0 {
			return fmt.Errorf("store.redis.addrs is required")
		}
	default:
		return fmt.Errorf(
			"store.driver must be %q or %q, got %q", DriverElasticsearch, DriverRedis, c.Store.Driver,
		)
	}
	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be positive, got %d", c.Ingest.ChunkSize)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
