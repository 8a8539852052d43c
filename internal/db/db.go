// Package db defines the key-value storage contract backing the
// suggestion cache.
package db

import (
	"context"
	"time"
)

// Store is the key-value storage facade. Consumers depend on narrow
// subsets of it (ISP).
type Store interface {
	KVStore
	Pinger
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
