// Package ratelimit guards the record-creation endpoints with a fixed-window
// request limiter. Redis backs the window in multi-instance deployments; a
// mutex-guarded map serves single-instance and test runs.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a caller may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a fixed-window limiter over an in-process map.
type MemoryLimiter struct {
	mu      sync.Mutex
	counts  map[string]int
	started map[string]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		counts:  make(map[string]int),
		started: make(map[string]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// WithClock overrides the time source for tests.
func (l *MemoryLimiter) WithClock(now func() time.Time) *MemoryLimiter {
	l.now = now
	return l
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if started, ok := l.started[key]; !ok || now.Sub(started) >= l.window {
		l.started[key] = now
		l.counts[key] = 0
	}
	l.counts[key]++
	return l.counts[key] <= l.limit, nil
}
