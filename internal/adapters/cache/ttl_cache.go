package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const (
	ttlCacheCapacity     = 50_000
	ttlCachePollInterval = 50 * time.Millisecond
)

type ttlCacheEntry[T any] struct {
	data  T
	valid bool
}

type ttlCache[T any] struct {
	cache *ttlcache.Cache[string, ttlCacheEntry[T]]
}

func (c *ttlCache[T]) getOrClaim(key string) hitResult[T] {
	invalid := ttlCacheEntry[T]{valid: false}
	item, existed := c.cache.GetOrSet(key, invalid)

	return hitResult[T]{
		data:    item.Value().data,
		valid:   item.Value().valid,
		claimed: !existed,
	}
}

func (c *ttlCache[T]) set(key string, data T) {
	c.cache.Set(key, ttlCacheEntry[T]{data: data, valid: true}, ttlcache.DefaultTTL)
}

func (c *ttlCache[T]) delete(key string) {
	c.cache.Delete(key)
}

// ttlcache has no way to be notified of a single entry changing, so waiters poll
func (c *ttlCache[T]) wait(ctx context.Context, key string) error {
	timer := time.NewTimer(ttlCachePollInterval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewTTLCache returns a bounded cache where entries expire ttl after being set.
// Pending entries expire as well, so an abandoned claim cannot block a key forever.
func NewTTLCache[T any](ttl time.Duration) Cache[T] {
	cache := ttlcache.New[string, ttlCacheEntry[T]](
		ttlcache.WithTTL[string, ttlCacheEntry[T]](ttl),
		ttlcache.WithCapacity[string, ttlCacheEntry[T]](ttlCacheCapacity),
		ttlcache.WithDisableTouchOnHit[string, ttlCacheEntry[T]](),
	)
	go cache.Start()
	return &ttlCache[T]{cache: cache}
}
