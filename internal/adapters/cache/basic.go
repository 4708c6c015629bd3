package cache

import (
	"context"
	"sync"
)

type basicCacheEntry[T any] struct {
	data  T
	valid bool
	// Closed when a pending entry is set or abandoned
	ready chan struct{}
}

// basicCache never evicts. Used by short lived processes and tests.
type basicCache[T any] struct {
	entries map[string]basicCacheEntry[T]
	mu      sync.Mutex
}

func (c *basicCache[T]) getOrClaim(key string) hitResult[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if ok {
		return hitResult[T]{
			data:    entry.data,
			valid:   entry.valid,
			claimed: false,
		}
	}

	c.entries[key] = basicCacheEntry[T]{valid: false, ready: make(chan struct{})}
	return hitResult[T]{
		valid:   false,
		claimed: true,
	}
}

// release wakes everyone waiting on a pending entry. c.mu must be held.
func (c *basicCache[T]) release(key string) {
	entry, ok := c.entries[key]
	if ok && !entry.valid {
		close(entry.ready)
	}
}

func (c *basicCache[T]) set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release(key)
	c.entries[key] = basicCacheEntry[T]{data: data, valid: true}
}

func (c *basicCache[T]) delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.release(key)
	delete(c.entries, key)
}

func (c *basicCache[T]) wait(ctx context.Context, key string) error {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()

	if !ok || entry.valid {
		return nil
	}

	select {
	case <-entry.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func NewBasicCache[T any]() Cache[T] {
	return &basicCache[T]{
		entries: make(map[string]basicCacheEntry[T]),
	}
}
