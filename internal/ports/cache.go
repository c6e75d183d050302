package ports

import (
	"context"
	"time"
)

// CacheRepository is a byte-oriented key/value cache with expiry.
type CacheRepository interface {
	// Get returns nil, nil when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete reports whether a key was removed.
	Delete(ctx context.Context, key string) (bool, error)
}
