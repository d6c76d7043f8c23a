// Package cache is the byte-oriented key/value cache used to hold the
// assembled knowledge list. Backends are interchangeable; callers treat
// every error as a miss.
package cache

import (
	"context"
	"errors"
	"time"
)

// Driver names accepted by configuration.
const (
	DriverMemory = "memory"
	DriverBadger = "badger"
	DriverRedis  = "redis"
)

// ErrValueTooLarge is returned by Put when a backend refuses an entry for size.
var ErrValueTooLarge = errors.New("cache value too large")

// Cache stores opaque values under string keys with a time-to-live.
type Cache interface {
	// Get returns the value and true on a hit, or false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put stores value under key for ttl.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
