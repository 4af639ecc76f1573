package authstate

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache persists the cached pair outside the process so a restart can
// still take the bootstrap fast path, the way the browser build of this app
// kept the profile cache in local storage.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// RedisCacheOption configures a RedisCache.
type RedisCacheOption func(*RedisCache)

// WithCacheKey overrides the Redis key. Deployments that share one Redis
// between clients must scope the key per client.
func WithCacheKey(key string) RedisCacheOption {
	return func(c *RedisCache) {
		if key != "" {
			c.key = key
		}
	}
}

// WithCacheTTL bounds how long a cached pair survives without re-resolution.
func WithCacheTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewRedisCache creates a Redis-backed session cache.
func NewRedisCache(client *redis.Client, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		client: client,
		key:    "authstate:session_cache",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Load(ctx context.Context) (*CachedSession, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var cs CachedSession
	if err := json.Unmarshal(raw, &cs); err != nil {
		// A corrupt entry behaves like a miss; the bounded check will rebuild it.
		_ = c.client.Del(ctx, c.key).Err()
		return nil, nil
	}
	return &cs, nil
}

func (c *RedisCache) Save(ctx context.Context, cs CachedSession) error {
	raw, err := json.Marshal(cs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *RedisCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
