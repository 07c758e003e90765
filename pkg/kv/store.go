// Package kv provides the key-value store abstraction backing the gateway's
// rate-limit counters and response cache. The gateway itself is stateless;
// every piece of cross-request state goes through a Store.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested key does not exist in the store.
var ErrNotFound = errors.New("key not found")

// Store is the minimal contract the gateway requires from a backing store:
// get, put-with-TTL, and an atomic counter increment. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores value under key. A positive ttl sets an expiration after
	// which the key is evicted; zero means no expiration.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Incr atomically increments the integer counter under key and returns
	// the new value. A missing key counts as zero. The ttl is applied when
	// the increment creates the key.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
