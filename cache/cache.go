package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

// Cache is the process-wide TTL cache behind the breakdown endpoints.
// Invalidate removes every key with the given prefix; InvalidateAll wipes
// the cache (used when commissions are bulk-deleted).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
	InvalidateAll(ctx context.Context) error
}
