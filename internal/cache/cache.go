package cache

import (
	"context"
	"time"

	"study-match/internal/matcher"
)

// Cache stores ranked match results keyed by request fingerprint.
type Cache interface {
	// GetResult retrieves a cached result by key.
	// Returns nil if not found
	GetResult(ctx context.Context, key string) (*Result, error)

	// SetResult stores a result with TTL
	SetResult(ctx context.Context, key string, result *Result, ttl time.Duration) error

	Close() error
}

// Result is a cached ranking.
type Result struct {
	Matches    []matcher.Match `json:"matches"`
	ComputedAt time.Time       `json:"computed_at"`
}
