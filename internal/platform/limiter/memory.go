// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/quill/internal/platform/constants"
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Memory keeps one token bucket per key. Idle keys are evicted in the background.
type Memory struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
}

// NewMemory creates an in-process limiter refilling at limit tokens per second
// with capacity burst. The eviction loop stops when ctx is cancelled.
func NewMemory(ctx context.Context, limit rate.Limit, burst int) *Memory {
	memory := &Memory{
		limit:   limit,
		burst:   burst,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}

	go memory.evictLoop(ctx)

	return memory
}

// PerWindow converts "max hits per window" into a bucket with the same budget.
// A max below one allows a single hit, and a non-positive window never refills.
func PerWindow(ctx context.Context, max int, window time.Duration) *Memory {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		return NewMemory(ctx, 0, max)
	}
	return NewMemory(ctx, rate.Every(window/time.Duration(max)), max)
}

// Allow implements [Limiter]. It never fails.
func (memory *Memory) Allow(_ context.Context, key string) (Decision, error) {
	memory.mu.Lock()
	defer memory.mu.Unlock()

	now := memory.now()

	entry, found := memory.buckets[key]
	if !found {
		entry = &bucket{limiter: rate.NewLimiter(memory.limit, memory.burst)}
		memory.buckets[key] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return Decision{Allowed: false, RetryAfter: time.Second}, nil
	}

	delay := reservation.DelayFrom(now)
	if delay == 0 {
		return Decision{Allowed: true}, nil
	}

	// Rejected hits do not consume tokens.
	reservation.CancelAt(now)
	return Decision{Allowed: false, RetryAfter: delay}, nil
}

func (memory *Memory) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			memory.evict(constants.RateLimitClientTTL)
		case <-ctx.Done():
			return
		}
	}
}

func (memory *Memory) evict(ttl time.Duration) {
	memory.mu.Lock()
	defer memory.mu.Unlock()

	now := memory.now()
	for key, entry := range memory.buckets {
		if now.Sub(entry.lastSeen) > ttl {
			delete(memory.buckets, key)
		}
	}
}
