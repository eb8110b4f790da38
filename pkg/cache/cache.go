// Package cache defines the byte-oriented cache used by the resolution
// service to share computed results between requests and instances.
//
// Backends: [FileCache] for single-host use, [RedisCache] for multi-
// instance deployments, and [NullCache] to disable caching in tests.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with per-entry TTLs.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
