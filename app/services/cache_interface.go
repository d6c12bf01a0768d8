package services

import (
	"context"
	"time"

	"github.com/address-resolver/app/models"
)

// CacheStats summarizes cache effectiveness for the admin surface.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService caches resolved addresses keyed by their raw text.
type ICacheService interface {
	// Get fetches a resolved address from the cache.
	Get(ctx context.Context, key string) (*models.UniqueAddress, bool, error)

	// Set stores a resolved address.
	Set(ctx context.Context, key string, result *models.UniqueAddress) error

	// Delete removes one key.
	Delete(ctx context.Context, key string) error

	// Clear removes every cached resolution.
	Clear(ctx context.Context) error

	// GetStats reports hit/miss counters and item count.
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists reports whether a key is cached.
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL reports the remaining TTL of a key.
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close releases the underlying connection.
	Close() error
}
