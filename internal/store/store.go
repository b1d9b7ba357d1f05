// Package store caches raw upstream documents between runs.
package store

import (
	"context"
	"time"
)

// Cache is a keyed byte store with per-entry expiry. It never holds
// analysis results, only upstream documents that are static within a day.
type Cache interface {
	// GetCached returns the entry for key, or (nil, nil) on a miss or when
	// the entry has expired.
	GetCached(ctx context.Context, key string) ([]byte, error)
	SetCached(ctx context.Context, key string, data []byte, ttl time.Duration) error
	DeleteExpired(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
