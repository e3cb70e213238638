package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisCacheName = "redis"

// RedisCache is an implementation of the Cache interface using Redis.
type RedisCache struct {
	client   *redis.Client
	observer Observer
}

// NewRedisCacheConfig contains options for creating a new RedisCache.
type NewRedisCacheConfig struct {
	Address  string
	Password string
	DB       int
	Observer Observer // optional
}

// NewRedisCache creates a new RedisCache and pings the server.
func NewRedisCache(ctx context.Context, cfg NewRedisCacheConfig) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Address, err)
	}
	return &RedisCache{client: rdb, observer: cfg.Observer}, nil
}

func (r *RedisCache) observe(event string) {
	if r.observer != nil {
		r.observer.ObserveCache(redisCacheName, event)
	}
}

// Get retrieves a value from Redis and decodes it into dst.
func (r *RedisCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		r.observe("miss")
		return false, nil
	}
	if err != nil {
		r.observe("error")
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(v, dst); err != nil {
		r.observe("error")
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	r.observe("hit")
	return true, nil
}

// Set stores value as JSON in Redis.
func (r *RedisCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", key, err)
	}
	if err := r.client.Set(ctx, key, b, expiration).Err(); err != nil {
		r.observe("error")
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	r.observe("set")
	return nil
}

// Delete removes keys from Redis.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		r.observe("error")
		return fmt.Errorf("redis del: %w", err)
	}
	r.observe("del")
	return nil
}

// Incr increments the integer counter at key.
func (r *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		r.observe("error")
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	r.observe("incr")
	return n, nil
}

// Close closes the Redis client.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
