package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer.
// It allows swapping the implementation (Redis, no-op).
type Cache interface {
	// Get reads key and unmarshals it into dest.
	// found=false on a cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error
}
