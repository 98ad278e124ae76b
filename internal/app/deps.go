package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"study-match/internal/cache"
	"study-match/internal/config"
	"study-match/internal/logger"
	"study-match/internal/queue"
	"study-match/internal/service"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config  config.Config
	Log     *slog.Logger
	Cache   cache.Cache
	Queue   queue.Queue // nil when QUEUE_PROVIDER=none
	Service *service.Service

	nc *nats.Conn
}

// Close drains the NATS connection, if any, and closes the cache.
func (d Deps) Close() error {
	var errs []error
	if d.nc != nil {
		if err := d.nc.Drain(); err != nil {
			errs = append(errs, fmt.Errorf("drain nats: %w", err))
		}
	}
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Build loads env, config, and shared components. A missing .env file is
// not an error.
func Build() (Deps, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Deps{}, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return Deps{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Deps{}, fmt.Errorf("invalid configuration: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	c, err := buildCache(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return newDeps(cfg, log, c)
}

// newDeps attaches the queue to an already built cache. The cache is closed
// if the queue cannot be set up.
func newDeps(cfg config.Config, log *slog.Logger, c cache.Cache) (Deps, error) {
	q, nc, err := buildQueue(cfg, log)
	if err != nil {
		if cerr := c.Close(); cerr != nil {
			log.Warn("failed to close cache", "err", cerr)
		}
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	return Deps{
		Config:  cfg,
		Log:     log,
		Cache:   c,
		Queue:   q,
		Service: service.New(log, c, cfg.CacheTTLDuration(), cfg.MatchOptions()),
		nc:      nc,
	}, nil
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	switch cfg.CacheProvider {
	case "none", "":
		return cache.NewNoOpCache(), nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required when CACHE_PROVIDER=redis")
		}
		rc, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			// Results are cheap to recompute, so run uncached rather than fail.
			log.Warn("redis unavailable, caching disabled", "err", err)
			return cache.NewNoOpCache(), nil
		}
		log.Info("using Redis cache", "addr", cfg.RedisAddr, "ttl_seconds", cfg.CacheTTL)
		return rc, nil
	default:
		return nil, fmt.Errorf("invalid CACHE_PROVIDER: %s (valid options: none, redis)", cfg.CacheProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, *nats.Conn, error) {
	switch cfg.QueueProvider {
	case "none", "":
		return nil, nil, nil
	case "nats":
		if cfg.QueueURL == "" {
			return nil, nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL, nats.Name("study-match"))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nc, nil
	default:
		return nil, nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid options: none, nats)", cfg.QueueProvider)
	}
}
