package cache

import (
	"context"
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisCache stores JSON-marshaled entities in redis with a TTL. Cache
// trouble is logged and swallowed on the read/fill side; Invalidate returns
// its error because a failed invalidation means readers could see stale
// availability.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *logrus.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func (c *RedisCache) Get(ctx context.Context, kind Kind, id uint, dest any) bool {
	payload, err := c.client.Get(ctx, Key(kind, id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.WithError(err).WithField("key", Key(kind, id)).Warn("cache get failed")
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		c.log.WithError(err).WithField("key", Key(kind, id)).Warn("cache entry corrupt, dropping")
		_ = c.client.Del(ctx, Key(kind, id)).Err()
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, kind Kind, id uint, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.log.WithError(err).WithField("key", Key(kind, id)).Warn("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, Key(kind, id), payload, c.ttl).Err(); err != nil {
		c.log.WithError(err).WithField("key", Key(kind, id)).Warn("cache set failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, kind Kind, id uint) error {
	return c.client.Del(ctx, Key(kind, id)).Err()
}
