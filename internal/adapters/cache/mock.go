package cache

import (
	"context"
	"runtime"
	"sync"
)

// The mock cache steps every client through shared ticks. Waiting on an entry
// costs a client one tick, which makes the interleaving of concurrent callers
// deterministic in tests.

type mockCacheServerEntry[T any] struct {
	data       T
	valid      bool
	insertedAt int
}

type mockCacheServer[T any] struct {
	entries           map[string]mockCacheServerEntry[T]
	entriesLock       sync.Mutex
	tickLock          sync.Mutex
	currentTick       int
	maxTicks          int
	numGoroutines     int
	completedThisTick int
}

type mockCacheClient[T any] struct {
	server      *mockCacheServer[T]
	desiredTick int
	waits       int
}

func (client *mockCacheClient[T]) getOrClaim(key string) hitResult[T] {
	client.server.entriesLock.Lock()
	defer client.server.entriesLock.Unlock()

	entry, ok := client.server.entries[key]
	if ok {
		return hitResult[T]{
			data:    entry.data,
			valid:   entry.valid,
			claimed: false,
		}
	}

	client.server.entries[key] = mockCacheServerEntry[T]{
		valid:      false,
		insertedAt: client.server.currentTick,
	}
	return hitResult[T]{
		valid:   false,
		claimed: true,
	}
}

func (client *mockCacheClient[T]) set(key string, data T) {
	client.server.entriesLock.Lock()
	defer client.server.entriesLock.Unlock()

	client.server.entries[key] = mockCacheServerEntry[T]{
		data:       data,
		valid:      true,
		insertedAt: client.server.currentTick,
	}
}

func (client *mockCacheClient[T]) delete(key string) {
	client.server.entriesLock.Lock()
	defer client.server.entriesLock.Unlock()

	delete(client.server.entries, key)
}

func (client *mockCacheClient[T]) wait(ctx context.Context, key string) error {
	client.waits++
	client.tick()
	return ctx.Err()
}

// tick blocks until every client has finished the current tick
func (client *mockCacheClient[T]) tick() {
	if client.server.isDone() {
		panic("tick() called on a client that is already done")
	}

	client.server.tickLock.Lock()
	client.server.completedThisTick++
	client.server.tickLock.Unlock()

	client.desiredTick++

	for client.server.getCurrentTick() < client.desiredTick {
		runtime.Gosched()
	}
}

func (client *mockCacheClient[T]) tickUntilDone() {
	for !client.server.isDone() {
		client.tick()
	}
}

func (server *mockCacheServer[T]) getCurrentTick() int {
	server.tickLock.Lock()
	defer server.tickLock.Unlock()
	return server.currentTick
}

func (server *mockCacheServer[T]) isDone() bool {
	return server.getCurrentTick() >= server.maxTicks
}

func (server *mockCacheServer[T]) processTicks() {
	for !server.isDone() {
		server.tickLock.Lock()
		if server.completedThisTick != server.numGoroutines {
			server.tickLock.Unlock()
			runtime.Gosched()
			continue
		}

		server.completedThisTick = 0
		server.currentTick++
		server.tickLock.Unlock()
	}
}

func NewMockCacheServer[T any](numGoroutines int, maxTicks int) (*mockCacheServer[T], []*mockCacheClient[T]) {
	server := &mockCacheServer[T]{
		entries:       make(map[string]mockCacheServerEntry[T]),
		maxTicks:      maxTicks,
		numGoroutines: numGoroutines,
	}

	clients := make([]*mockCacheClient[T], numGoroutines)
	for i := range numGoroutines {
		clients[i] = &mockCacheClient[T]{server: server}
	}

	return server, clients
}
