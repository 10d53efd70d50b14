package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/EcommerceGo/storefront/pkg/config"
)

// Token store kinds.
const (
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// Config holds all configuration for the storefront core.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Remote API
	APIURL         string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:5000/api"`
	APITimeout     time.Duration `env:"STOREFRONT_API_TIMEOUT" envDefault:"15s"`
	APIMaxRetries  int           `env:"STOREFRONT_API_MAX_RETRIES" envDefault:"0"`
	RateLimitRPS   float64       `env:"STOREFRONT_RATE_LIMIT_RPS" envDefault:"20"`
	RateLimitBurst int           `env:"STOREFRONT_RATE_LIMIT_BURST" envDefault:"10"`

	// Circuit breaker
	CBMaxRequests  uint32        `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     time.Duration `env:"CB_INTERVAL" envDefault:"60s"`
	CBTimeout      time.Duration `env:"CB_TIMEOUT" envDefault:"30s"`
	CBFailureRatio float64       `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32        `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Session token persistence
	TokenStore     string        `env:"STOREFRONT_TOKEN_STORE" envDefault:"memory"`
	RedisHost      string        `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int           `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string        `env:"STOREFRONT_REDIS_PREFIX" envDefault:"storefront:session:"`
	TokenTTL       time.Duration `env:"STOREFRONT_TOKEN_TTL" envDefault:"0s"`

	// Lifecycle
	StaleGuard bool `env:"STOREFRONT_STALE_GUARD" envDefault:"false"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load(opts ...pkgconfig.Option) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg, opts...); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid STOREFRONT_API_URL: %q", c.APIURL)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("STOREFRONT_API_TIMEOUT must be positive, got %s", c.APITimeout)
	}
	if c.APIMaxRetries < 0 {
		return fmt.Errorf("STOREFRONT_API_MAX_RETRIES must not be negative, got %d", c.APIMaxRetries)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("STOREFRONT_RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.CBFailureRatio)
	}
	switch c.TokenStore {
	case TokenStoreMemory:
	case TokenStoreRedis:
		if c.RedisPort < 1 || c.RedisPort > 65535 {
			return fmt.Errorf("invalid REDIS_PORT: %d", c.RedisPort)
		}
	default:
		return fmt.Errorf("STOREFRONT_TOKEN_STORE must be %q or %q, got %q", TokenStoreMemory, TokenStoreRedis, c.TokenStore)
	}
	if c.TokenTTL < 0 {
		return fmt.Errorf("STOREFRONT_TOKEN_TTL must not be negative, got %s", c.TokenTTL)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}
