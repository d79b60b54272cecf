// internal/report/cache.go
package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"sentinel-assessment/internal/common/database"
)

const cacheKeyPrefix = "report:pdf:"

// Cache stores rendered documents under keys built by CacheKey.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, pdf []byte) error
}

// CacheKey derives the cache key from the report content and the renderer
// fingerprint, so a font or layout config change never serves stale bytes.
func CacheKey(rep Report, fingerprint string) string {
	sum := sha256.Sum256([]byte(string(rep.Tier) + "\x00" + rep.Explanation + "\x00" + fingerprint))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// RedisCache is a Cache backed by redis with a fixed TTL.
type RedisCache struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewRedisCache(client *database.RedisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns (nil, false, nil) on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.GetBytes(ctx, key)
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, pdf []byte) error {
	return c.client.Set(ctx, key, pdf, c.ttl)
}
