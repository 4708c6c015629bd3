package ratelimiting

import (
	"context"
	"slices"
	"sync"
	"time"
)

// WindowLimiter allows at most limit operations to finish within any window
//
// Riot enforces limits such as 100 requests per two minutes per key. Operations wait for a slot
// instead of being rejected, unless the wait would outlast the deadline of the context.
type WindowLimiter struct {
	limit     int
	window    time.Duration
	nowFunc   func() time.Time
	afterFunc func(time.Duration) <-chan time.Time

	availableSlots   chan struct{}
	finishedRequests []time.Time
	mutex            sync.Mutex
}

func NewWindowLimiter(
	limit int,
	window time.Duration,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) *WindowLimiter {
	availableSlots := make(chan struct{}, limit)
	for range limit {
		availableSlots <- struct{}{}
	}

	// Pretend every slot finished a full window ago so the first operations run immediately
	finishedRequests := make([]time.Time, limit)
	longAgo := nowFunc().Add(-window)
	for i := range finishedRequests {
		finishedRequests[i] = longAgo
	}

	return &WindowLimiter{
		limit:     limit,
		window:    window,
		nowFunc:   nowFunc,
		afterFunc: afterFunc,

		availableSlots:   availableSlots,
		finishedRequests: finishedRequests,
		mutex:            sync.Mutex{},
	}
}

func insertSorted(arr []time.Time, t time.Time) []time.Time {
	i, _ := slices.BinarySearchFunc(arr, t, func(a, b time.Time) int {
		return a.Compare(b)
	})
	return slices.Insert(arr, i, t)
}

// Limit runs operation once a slot is available. Returns false if the operation did not run.
func (l *WindowLimiter) Limit(ctx context.Context, maxOperationTime time.Duration, operation func()) bool {
	return l.LimitCancelable(ctx, maxOperationTime, func() bool {
		operation()
		return true
	})
}

// LimitCancelable is like Limit, but operation may report that it did not run, giving the slot back
//
// The limiter refuses to wait when waiting plus maxOperationTime would pass the deadline of ctx.
func (l *WindowLimiter) LimitCancelable(ctx context.Context, maxOperationTime time.Duration, operation func() bool) bool {
	select {
	case <-l.availableSlots:
		defer func() {
			l.availableSlots <- struct{}{}
		}()
	case <-ctx.Done():
		return false
	}

	oldest, ok := l.takeOldest(ctx, maxOperationTime)
	if !ok {
		return false
	}
	// Reinserted unchanged if the operation never runs
	finished := oldest
	defer func() {
		l.insertFinished(finished)
	}()

	if wait := l.computeWait(oldest); wait > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-l.afterFunc(wait):
		}
	}

	if !operation() {
		return false
	}

	finished = l.nowFunc()
	return true
}

func (l *WindowLimiter) computeWait(finishedAt time.Time) time.Duration {
	return l.window - l.nowFunc().Sub(finishedAt)
}

func (l *WindowLimiter) insertFinished(finishedAt time.Time) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.finishedRequests = insertSorted(l.finishedRequests, finishedAt)
}

func (l *WindowLimiter) takeOldest(ctx context.Context, maxOperationTime time.Duration) (time.Time, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	oldest := l.finishedRequests[0]

	if deadline, ok := ctx.Deadline(); ok {
		wait := max(l.computeWait(oldest), 0)
		if wait+maxOperationTime > deadline.Sub(l.nowFunc()) {
			return time.Time{}, false
		}
	}

	l.finishedRequests = l.finishedRequests[1:]
	return oldest, true
}
