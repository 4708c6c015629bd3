package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Amund211/riftlight/internal/adapters/cache"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/logging"
)

const (
	upstreamTimeout = 5 * time.Second
	storeTimeout    = 1 * time.Second
)

// Source tells where a resolved entity came from
type Source string

const (
	SourceStore      Source = "store"
	SourceUpstream   Source = "upstream"
	SourceStaleStore Source = "stale_store"
	// Served from the in-process cache, no store or upstream call was made
	SourceCache Source = "cache"
)

// Resolved wraps an entity returned by a resolver.
//
// Persisted is false when a freshly fetched entity could not be written to the store.
// The entity is still valid in that case, and PersistErr holds the reason.
type Resolved[T any] struct {
	Data       T
	Source     Source
	Persisted  bool
	PersistErr error
}

func fromStore[T any](data T) Resolved[T] {
	return Resolved[T]{Data: data, Source: SourceStore, Persisted: true}
}

// fromCache relabels a cached result for a caller that did not resolve it.
// The persistence outcome belongs to the caller that created the entry.
func fromCache[T any](data T) Resolved[T] {
	return Resolved[T]{Data: data, Source: SourceCache, Persisted: true}
}

func fromStaleStore[T any](data T) Resolved[T] {
	return Resolved[T]{Data: data, Source: SourceStaleStore, Persisted: true}
}

// persist writes freshly fetched data to the store without failing the request
func persist(ctx context.Context, what string, timeout time.Duration, save func(ctx context.Context) error) (bool, error) {
	// Ignore cancellations from the request context and try to store the data anyway
	// Bounded by timeout to not block the request for too long
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	err := save(storeCtx)
	if err != nil {
		// NOTE: Repository implementations handle their own error reporting
		logging.FromContext(ctx).ErrorContext(ctx, "failed to store "+what, "error", err.Error())

		// NOTE: We still return the data to fulfill the request even though storing failed
		return false, fmt.Errorf("%w: failed to store %s: %w", domain.ErrPersistence, what, err)
	}

	return true, nil
}

// coalesced runs resolve through the cache unless a refresh is forced.
// A forced refresh that reached upstream replaces the cached entry.
func coalesced[T any](
	ctx context.Context,
	resolvedCache cache.Cache[Resolved[T]],
	key string,
	forceRefresh bool,
	resolve func(ctx context.Context, forceRefresh bool) (Resolved[T], error),
) (Resolved[T], error) {
	if forceRefresh {
		resolved, err := resolve(ctx, true)
		if err != nil {
			return Resolved[T]{}, err
		}
		if resolved.Source == SourceUpstream {
			cache.Put(resolvedCache, key, resolved)
		}
		return resolved, nil
	}

	resolved, created, err := cache.GetOrCreate(ctx, resolvedCache, key, func() (Resolved[T], error) {
		return resolve(ctx, false)
	})
	if err != nil {
		// NOTE: GetOrCreate only returns an error if create() fails or ctx is done.
		// resolve handles its own error reporting
		return Resolved[T]{}, fmt.Errorf("failed to cache.GetOrCreate %s: %w", key, err)
	}

	if !created {
		return fromCache(resolved.Data), nil
	}

	return resolved, nil
}
