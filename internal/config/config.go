package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

const defaultUserAgent = "climate-graph/1.0 (https://github.com/couchcryptid/climate-graph)"

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// MediaWiki API configuration.
	WikiAPIURL    string
	WikiUserAgent string
	WikiTimeout   time.Duration
	WikiRateLimit float64 // requests per second, 0 disables limiting

	// Page cache configuration.
	CacheEnabled bool
	CacheDir     string
	CacheTTL     time.Duration
	CacheSize    int

	// Kafka pipeline configuration.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string

	BatchSize          int
	BatchFlushInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	wikiTimeout, err := parsePositiveDuration("WIKI_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "168h")
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("WIKI_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit < 0 {
		return nil, errors.New("invalid WIKI_RATE_LIMIT")
	}

	// Kafka is opt-in: an explicit broker list turns it on unless disabled.
	kafkaEnabled := os.Getenv("KAFKA_BROKERS") != ""
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WikiAPIURL:    sharedcfg.EnvOrDefault("WIKI_API_URL", "https://en.wikipedia.org/w/api.php"),
		WikiUserAgent: sharedcfg.EnvOrDefault("WIKI_USER_AGENT", defaultUserAgent),
		WikiTimeout:   wikiTimeout,
		WikiRateLimit: rateLimit,

		CacheEnabled: sharedcfg.EnvOrDefault("CACHE_ENABLED", "true") == "true",
		CacheDir:     sharedcfg.EnvOrDefault("CACHE_DIR", ".cache/climate"),
		CacheTTL:     cacheTTL,
		CacheSize:    parseCacheSize(),

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "climate-queries"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "climate-records"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "climate-etl"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,
	}

	if cfg.WikiAPIURL == "" {
		return nil, errors.New("WIKI_API_URL is required")
	}
	if cfg.CacheEnabled && cfg.CacheDir == "" {
		return nil, errors.New("CACHE_DIR is required when CACHE_ENABLED is true")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
