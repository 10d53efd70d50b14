package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/utafrali/EcommerceGo/storefront/internal/config"
	"github.com/utafrali/EcommerceGo/storefront/internal/lifecycle"
	"github.com/utafrali/EcommerceGo/storefront/internal/remote"
	"github.com/utafrali/EcommerceGo/storefront/internal/storefront"
	"github.com/utafrali/EcommerceGo/storefront/internal/tokenstore"
	"github.com/utafrali/EcommerceGo/storefront/pkg/health"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httpclient"
	"github.com/utafrali/EcommerceGo/storefront/pkg/tracing"
)

// App wires together all dependencies of a storefront process.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	rdb            *redis.Client
	tracerShutdown tracing.ShutdownFunc
	storefront     *storefront.Storefront
	health         *health.Registry
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Initialize tracing.
	tracerShutdown, err := tracing.InitTracer(initCtx, tracing.Config{
		ServiceName:    "storefront",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		tracerShutdown: tracerShutdown,
		health:         health.NewRegistry(5 * time.Second),
	}

	// Session token persistence.
	var store tokenstore.Store
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		redisCfg := tokenstore.RedisConfig{
			Host:      cfg.RedisHost,
			Port:      cfg.RedisPort,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
			TTL:       cfg.TokenTTL,
		}
		rdb, err := tokenstore.NewRedisClient(initCtx, redisCfg)
		if err != nil {
			_ = tracerShutdown(ctx)
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", redisCfg.Addr()),
			slog.Int("db", redisCfg.DB),
		)
		a.rdb = rdb
		store = tokenstore.NewRedis(rdb, redisCfg.KeyPrefix, redisCfg.TTL)
		a.health.Register("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	default:
		store = tokenstore.NewMemory()
	}
	tokens := tokenstore.NewToken(store)

	// Remote API client with retries and circuit breaker.
	baseClient := httpclient.New(httpclient.Config{
		Timeout:         cfg.APITimeout,
		MaxRetries:      cfg.APIMaxRetries,
		RetryWaitMin:    200 * time.Millisecond,
		RetryWaitMax:    2 * time.Second,
		MaxConnsPerHost: 16,
	})
	cbCfg := httpclient.CircuitBreakerConfig{
		Name:         "storefront-api",
		MaxRequests:  cfg.CBMaxRequests,
		Interval:     cfg.CBInterval,
		Timeout:      cfg.CBTimeout,
		FailureRatio: cfg.CBFailureRatio,
		MinRequests:  cfg.CBMinRequests,
	}
	cbClient := httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger)
	logger.Info("circuit breaker initialized",
		slog.String("name", cbCfg.Name),
		slog.Float64("failure_ratio", cbCfg.FailureRatio),
	)

	a.health.Register("api", func(ctx context.Context) error {
		if cbClient.State() == gobreaker.StateOpen {
			return fmt.Errorf("circuit breaker %s is open", cbClient.Name())
		}
		return nil
	})

	api := remote.NewClient(cfg.APIURL, cbClient, logger,
		remote.WithTokenSource(tokens),
		remote.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	sf, err := storefront.New(api, tokens, logger, storefront.Options{
		Executor: []lifecycle.Option{lifecycle.WithStaleGuard(cfg.StaleGuard)},
	})
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.storefront = sf

	logger.Info("storefront initialized",
		slog.String("api_url", cfg.APIURL),
		slog.String("token_store", cfg.TokenStore),
		slog.Bool("stale_guard", cfg.StaleGuard),
	)

	return a, nil
}

// Storefront returns the wired storefront.
func (a *App) Storefront() *storefront.Storefront {
	return a.storefront
}

// Health runs the dependency checks registered during wiring.
func (a *App) Health(ctx context.Context) health.Report {
	return a.health.Check(ctx)
}

// Close releases every component. It is safe to call more than once.
func (a *App) Close(ctx context.Context) {
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
		a.tracerShutdown = nil
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
		a.rdb = nil
	}
}
