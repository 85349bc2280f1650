package redis

import (
	"context"
	"time"
)

// Locker defines the interface for distributed locking.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

// ResponseStore defines the interface for idempotent response replay.
type ResponseStore interface {
	Get(ctx context.Context, key string) (*CachedResponse, error)
	Set(ctx context.Context, key string, resp *CachedResponse) error
}

// Ensure concrete types implement interfaces.
var (
	_ Locker        = (*LockStore)(nil)
	_ ResponseStore = (*ResponseCache)(nil)
)
