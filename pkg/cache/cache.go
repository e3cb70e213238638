package cache

import (
	"context"
	"time"
)

// Cache defines the interface for caching services. Values are stored as
// JSON; Get decodes into dst and reports whether the key was present.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments the integer at key and returns the new value.
	// A missing key counts as 0.
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}

// Observer receives cache events (hit, miss, set, del, incr, error).
type Observer interface {
	ObserveCache(cache, event string)
}

// Noop is a Cache that stores nothing; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error               { return nil }
func (Noop) Incr(context.Context, string) (int64, error)           { return 0, nil }
func (Noop) Close() error                                          { return nil }

var (
	_ Cache = Noop{}
	_ Cache = (*RedisCache)(nil)
)
