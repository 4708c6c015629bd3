package cache

import "context"

type hitResult[T any] struct {
	data    T
	valid   bool
	claimed bool
}

// Cache coalesces concurrent creation of the same key. See GetOrCreate.
type Cache[T any] interface {
	getOrClaim(key string) hitResult[T]
	set(key string, data T)
	delete(key string)
	// wait blocks until the pending entry for key may have been resolved
	wait(ctx context.Context, key string) error
}
