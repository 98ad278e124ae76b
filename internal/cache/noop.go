package cache

import (
	"context"
	"time"
)

// NoOpCache is a cache implementation that does nothing.
// Used when caching is disabled or Redis is unavailable: every lookup misses.
type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetResult(ctx context.Context, key string) (*Result, error) {
	return nil, nil
}

func (c *NoOpCache) SetResult(ctx context.Context, key string, result *Result, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
