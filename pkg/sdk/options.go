package docflow

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docflow/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// Credentials authenticate one store handle.
type Credentials struct {
	Username string
	Password string
}

type clientConfig struct {
	driver    string
	esURL     string
	addrs     []string
	keyPrefix string

	read, write Credentials

	historicalClaim string
	journey         string
	journeyHistory  string

	chunkSize        int
	flowMaxEvents    int
	readinessTimeout int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch connects to an Elasticsearch cluster at rawURL (scheme://host:port).
func WithElasticsearch(rawURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverElasticsearch
		c.esURL = rawURL
		c.addrs = nil
	})
}

// WithRedis connects to Redis Stack nodes. Documents are stored as JSON under keyPrefix.
func WithRedis(keyPrefix string, addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverRedis
		c.addrs = addrs
		c.keyPrefix = keyPrefix
		c.esURL = ""
	})
}

// WithCredentials sets the read-only and read-write credentials.
func WithCredentials(read, write Credentials) Option {
	return optionFunc(func(c *clientConfig) {
		c.read, c.write = read, write
	})
}

// WithIndices overrides the claim event index and the live journey index.
// Empty values keep the defaults.
func WithIndices(historicalClaim, journey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.historicalClaim = historicalClaim
		c.journey = journey
	})
}

// WithJourneyHistory overrides the index journey snapshots are archived to.
// Default: historical_<journey index>.
func WithJourneyHistory(index string) Option {
	return optionFunc(func(c *clientConfig) {
		c.journeyHistory = index
	})
}

// WithChunkSize sets the number of documents per bulk request. Default: 1000.
func WithChunkSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkSize = n
	})
}

// WithFlowMaxEvents caps the events fetched per flow reconstruction. Default: 300.
func WithFlowMaxEvents(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.flowMaxEvents = n
	})
}

// WithReadinessTimeout makes New wait up to sec seconds for the store to answer.
func WithReadinessTimeout(sec int) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = sec
	})
}

// WithLogger enables structured logging. Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// appConfig translates the options into service configuration with defaults applied.
func (c *clientConfig) appConfig() (config.Config, error) {
	var cfg config.Config
	cfg.Store.Driver = c.driver
	cfg.Store.Read = config.Credentials(c.read)
	cfg.Store.Write = config.Credentials(c.write)
	cfg.Store.ReadinessTimeout = c.readinessTimeout
	cfg.Indices.HistoricalClaim = c.historicalClaim
	cfg.Indices.Journey = c.journey
	cfg.Indices.JourneyHistory = c.journeyHistory
	cfg.Ingest.ChunkSize = c.chunkSize
	cfg.Ingest.FlowMaxEvents = c.flowMaxEvents

	switch c.driver {
	case config.DriverElasticsearch:
		u, err := url.Parse(c.esURL)
		if err != nil {
			return config.Config{}, fmt.Errorf("docflow: elasticsearch url: %w", err)
		}
		if u.Hostname() == "" {
			return config.Config{}, fmt.Errorf("docflow: elasticsearch url %q has no host", c.esURL)
		}
		cfg.Store.Scheme = u.Scheme
		cfg.Store.Host = u.Hostname()
		if p := u.Port(); p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return config.Config{}, fmt.Errorf("docflow: elasticsearch port: %w", err)
			}
			cfg.Store.Port = port
		}
	case config.DriverRedis:
		if len(c.addrs) == 0 {
			return config.Config{}, fmt.Errorf("docflow: redis address required")
		}
		cfg.Store.Redis.Addrs = c.addrs
		cfg.Store.Redis.KeyPrefix = c.keyPrefix
	default:
		return config.Config{}, fmt.Errorf("docflow: store required (use WithElasticsearch or WithRedis)")
	}

	cfg.ApplyDefaults()
	if cfg.Ingest.ChunkSize < 0 {
		return config.Config{}, fmt.Errorf("docflow: chunk size must be positive, got %d", c.chunkSize)
	}
	return cfg, nil
}
