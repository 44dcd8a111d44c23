package leaderboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PageKeyPrefix is shared by every cached page so one pattern delete
// invalidates all page/size combinations at once.
const PageKeyPrefix = "leaderboard:page:"

// DefaultTTL bounds how stale a cached page can get even if no write ever
// invalidates it.
const DefaultTTL = time.Hour

// CacheStore is the key-value surface the cache layer needs. Implemented by
// pkg/redis.Client.
type CacheStore interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// Cache fronts paginated leaderboard reads. It owns only derived, disposable
// views: every failure here degrades to a slower read from the authoritative
// store, never to an incorrect one.
type Cache struct {
	store  CacheStore
	logger *zap.Logger
	ttl    time.Duration
}

// NewCache returns a page cache over store. A nil store disables caching:
// every Get misses and writes are dropped, matching a total cache outage.
func NewCache(store CacheStore, logger *zap.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logger,
		ttl:    DefaultTTL,
	}
}

// PageKey builds the composite cache key for one page/size combination.
func PageKey(pageIndex, pageSize int) string {
	return fmt.Sprintf("%s%d:size:%d", PageKeyPrefix, pageIndex, pageSize)
}

// Get returns the cached page, or (nil, false) on a miss. A transport failure
// is treated identically to a miss so reads always fall back to the store.
func (c *Cache) Get(ctx context.Context, pageIndex, pageSize int) (*Page, bool) {
	if c.store == nil {
		return nil, false
	}

	key := PageKey(pageIndex, pageSize)
	var page Page
	found, err := c.store.GetJSON(ctx, key, &page)
	if err != nil {
		c.logger.Warn("Cache read failed, treating as miss",
			zap.String("key", key),
			zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	return &page, true
}

// Set stores the page under the page/size key of the request that produced
// it (the served page may be shorter than the requested size on the last
// page). Best-effort: a write failure is logged and swallowed because the
// cache is non-authoritative.
func (c *Cache) Set(ctx context.Context, pageIndex, pageSize int, page *Page) {
	if c.store == nil {
		return
	}

	key := PageKey(pageIndex, pageSize)
	if err := c.store.SetJSON(ctx, key, page, c.ttl); err != nil {
		c.logger.Warn("Cache write failed, dropping entry",
			zap.String("key", key),
			zap.Error(err))
	}
}

// InvalidateAll deletes every cached page. Safe to call when no entries
// exist. Best-effort: failures are logged and swallowed - a stale entry
// expires via TTL at worst.
func (c *Cache) InvalidateAll(ctx context.Context) {
	if c.store == nil {
		return
	}

	if err := c.store.DeleteByPattern(ctx, PageKeyPrefix+"*"); err != nil {
		c.logger.Warn("Cache invalidation failed, entries expire via TTL",
			zap.Error(err))
	}
}
