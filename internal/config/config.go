package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"

	"study-match/internal/matcher"
)

// Config holds runtime configuration read from the environment.
type Config struct {
	// Server
	Port         int    `env:"PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"` // "json" or "text"
	MaxBodyBytes int64  `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// Matching
	MatchThreshold float64 `env:"MATCH_THRESHOLD" envDefault:"0.5"`
	MatchLimit     int     `env:"MATCH_LIMIT" envDefault:"5"`
	ClampAge       bool    `env:"CLAMP_AGE" envDefault:"false"`

	// Cache
	CacheProvider string `env:"CACHE_PROVIDER" envDefault:"none"` // "none" or "redis"
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"300"` // seconds

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"none"` // "none" or "nats"
	QueueURL      string `env:"QUEUE_URL"`
}

// Load reads configuration from environment variables with defaults. A
// value that is set but cannot be parsed is an error rather than a silent
// zero.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate rejects matching settings the matcher cannot honor.
func (c Config) Validate() error {
	if c.MatchThreshold < 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("MATCH_THRESHOLD must be within [0,1], got %v", c.MatchThreshold)
	}
	if c.MatchLimit < 1 {
		return fmt.Errorf("MATCH_LIMIT must be at least 1, got %d", c.MatchLimit)
	}
	return nil
}

// MatchOptions returns the configured matcher defaults.
func (c Config) MatchOptions() matcher.Options {
	return matcher.Options{
		Threshold: c.MatchThreshold,
		Limit:     c.MatchLimit,
		ClampAge:  c.ClampAge,
	}
}

// CacheTTLDuration converts CacheTTL to a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}
