// Package kvstore is the durable key-value port the client persists local
// flags through (driver online state, resolved-rating sets, geocode cache).
// Backends: in-memory, JSON file, and Redis.
package kvstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key does not exist or has expired.
var ErrNotFound = errors.New("kvstore: key not found")

// Store is the persistence port. Values are opaque strings; callers encode
// structured data as JSON. A zero ttl means no expiry.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
