package config

import (
	"fmt"

	pkgconfig "github.com/bafoyewv/SupplyChainLite-sub000/pkg/config"
	"github.com/bafoyewv/SupplyChainLite-sub000/pkg/tracing"
)

// Config holds all configuration for the draft order service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"DRAFT_HTTP_PORT" envDefault:"8004"`

	// Redis
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Draft TTL in hours (default: 7 days)
	DraftTTL int `env:"DRAFT_TTL_HOURS" envDefault:"168"`

	// Catalog snapshot cache TTL in seconds
	CatalogCacheTTL int `env:"CATALOG_CACHE_TTL_SECONDS" envDefault:"30"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Downstream services
	ProductServiceURL string `env:"PRODUCT_SERVICE_URL" envDefault:"http://localhost:8002"`
	OrderServiceURL   string `env:"ORDER_SERVICE_URL" envDefault:"http://localhost:8005"`

	// CORS allowed origins for browser clients
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// CIDRs allowed to reach the pprof endpoints
	PprofCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.0/8" envSeparator:","`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load draft config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.DraftTTL < 1 {
		return fmt.Errorf("draft TTL must be at least 1 hour, got %d", c.DraftTTL)
	}
	if c.ProductServiceURL == "" {
		return fmt.Errorf("product service URL is required")
	}
	if c.OrderServiceURL == "" {
		return fmt.Errorf("order service URL is required")
	}
	return nil
}

// Tracing returns the tracing configuration for this service.
func (c *Config) Tracing() tracing.Config {
	return tracing.Config{
		Enabled:        c.TracingEnabled,
		ServiceName:    "draft-order-service",
		ServiceVersion: "0.1.0",
		OTLPEndpoint:   c.TracingEndpoint,
		Environment:    c.Environment,
		SampleRate:     c.TracingSampleRate,
	}
}
