package cache

import (
	"context"
	"fmt"

	"github.com/Amund211/riftlight/internal/logging"
)

// GetOrCreate returns the cached value for key, or calls create once while concurrent
// callers for the same key wait for its result.
//
// Waiting callers give up when ctx is done.
//
// Returns data, created, error
func GetOrCreate[T any](ctx context.Context, cache Cache[T], key string, create func() (T, error)) (T, bool, error) {
	// Clean up the cache if we claim an entry, but don't set it
	// This allows other callers to try again
	claimed := false
	set := false
	defer func() {
		if claimed && !set {
			cache.delete(key)
		}
	}()

	logger := logging.FromContext(ctx)

	for {
		result := cache.getOrClaim(key)

		if result.claimed {
			claimed = true

			logger.InfoContext(ctx, "Resolving entry", "cache", "miss", "key", key)

			data, err := create()
			if err != nil {
				var empty T
				return empty, false, fmt.Errorf("failed to create cache entry: %w", err)
			}

			cache.set(key, data)
			set = true

			return data, true, nil
		}

		if result.valid {
			logger.InfoContext(ctx, "Resolving entry", "cache", "hit", "key", key)
			return result.data, false, nil
		}

		logger.InfoContext(ctx, "Waiting for cache", "key", key)
		err := cache.wait(ctx, key)
		if err != nil {
			var empty T
			return empty, false, fmt.Errorf("gave up waiting for cache entry: %w", err)
		}
	}
}

// Put replaces the entry for key. Callers waiting on a pending entry receive data.
func Put[T any](cache Cache[T], key string, data T) {
	cache.set(key, data)
}
