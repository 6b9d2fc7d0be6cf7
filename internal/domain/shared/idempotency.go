package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys already acted on: payment submissions and
// delivered events. Redis backs it in production, a map in development.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. False means another caller holds it.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release drops a claim after the guarded work failed
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig tunes deduplication of event delivery
type IdempotencyConfig struct {
	TTL     time.Duration
	Enabled bool
}

// DefaultIdempotencyConfig keeps keys for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{TTL: 24 * time.Hour, Enabled: true}
}
