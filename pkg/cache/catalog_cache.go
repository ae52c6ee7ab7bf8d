package cache

import (
	"context"
	"strconv"
	"time"

	"property-service/pkg/config"
	"property-service/pkg/logger"

	"github.com/karlseguin/ccache/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "catalog:"

// CatalogCache maps catalog names to ids in two levels: an in-process LRU and
// an optional shared redis. Only hits are ever stored, so a stale entry can
// never make an unknown name resolve.
type CatalogCache struct {
	local  *ccache.Cache[uint]
	remote *redis.Client
	ttl    time.Duration
}

// NewCatalogCache builds the cache; the redis level is skipped when no address is configured
func NewCatalogCache(cfg config.CacheConfig) *CatalogCache {
	size := cfg.LocalSize
	if size <= 0 {
		size = 1000
	}

	c := &CatalogCache{
		local: ccache.New(ccache.Configure[uint]().MaxSize(size)),
		ttl:   cfg.TTL,
	}

	if cfg.RedisAddr != "" {
		c.remote = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
	}

	return c
}

// Key builds the cache key for a name within a catalog
func Key(catalog, name string) string {
	return keyPrefix + catalog + ":" + name
}

// Get looks the key up locally first, then in redis. Redis hits are promoted
// to the local level.
func (c *CatalogCache) Get(ctx context.Context, key string) (uint, bool) {
	if item := c.local.Get(key); item != nil && !item.Expired() {
		return item.Value(), true
	}

	if c.remote == nil {
		return 0, false
	}

	val, err := c.remote.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Ctx(ctx).Warn("Catalog cache redis lookup failed", zap.String("key", key), zap.Error(err))
		}
		return 0, false
	}

	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		logger.Ctx(ctx).Warn("Catalog cache holds a malformed id", zap.String("key", key), zap.String("value", val))
		return 0, false
	}

	c.local.Set(key, uint(id), c.ttl)
	return uint(id), true
}

// Set stores a resolved name in both levels
func (c *CatalogCache) Set(ctx context.Context, key string, id uint) {
	c.local.Set(key, id, c.ttl)

	if c.remote == nil {
		return
	}
	if err := c.remote.Set(ctx, key, strconv.FormatUint(uint64(id), 10), c.ttl).Err(); err != nil {
		logger.Ctx(ctx).Warn("Catalog cache redis write failed", zap.String("key", key), zap.Error(err))
	}
}

// Close stops the local cache's background worker and the redis client
func (c *CatalogCache) Close() error {
	c.local.Stop()
	if c.remote != nil {
		return c.remote.Close()
	}
	return nil
}
