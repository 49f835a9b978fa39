package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryLimiter keeps one sliding window of timestamps per key in process
// memory. State is lost on restart and not shared between instances; use
// RedisLimiter when running more than one replica.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	limit   int
	window  time.Duration
	now     func() time.Time
}

// slidingWindow holds the admission times still inside the window, oldest first.
type slidingWindow struct {
	timestamps []time.Time
}

// Option configures a MemoryLimiter.
type Option func(*MemoryLimiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *MemoryLimiter) {
		l.now = now
	}
}

// NewMemoryLimiter admits limit operations per key per window.
func NewMemoryLimiter(limit int, window time.Duration, opts ...Option) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	l := &MemoryLimiter{
		windows: make(map[string]*slidingWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TryAcquire records an operation for key if the window has room.
func (l *MemoryLimiter) TryAcquire(_ context.Context, key string) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	sw := l.windows[key]
	if sw == nil {
		sw = &slidingWindow{}
		l.windows[key] = sw
	}
	sw.cleanup(now, l.window)

	if len(sw.timestamps) >= l.limit {
		resetAt := sw.timestamps[0].Add(l.window)
		return Result{
			Allowed:    false,
			Limit:      l.limit,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(now, resetAt),
		}, nil
	}

	sw.timestamps = append(sw.timestamps, now)
	return Result{
		Allowed:   true,
		Limit:     l.limit,
		Remaining: l.limit - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(l.window),
	}, nil
}

// Count returns the number of operations currently inside key's window.
func (l *MemoryLimiter) Count(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	sw := l.windows[key]
	if sw == nil {
		return 0
	}
	sw.cleanup(l.now(), l.window)
	return len(sw.timestamps)
}

// Reset forgets key.
func (l *MemoryLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// Sweep drops keys whose windows have fully expired and returns how many
// were removed.
func (l *MemoryLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, sw := range l.windows {
		sw.cleanup(now, l.window)
		if len(sw.timestamps) == 0 {
			delete(l.windows, key)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (l *MemoryLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = l.window
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := l.Sweep(); n > 0 {
				slog.Debug("rate limiter swept idle keys", "removed", n)
			}
		}
	}
}

// cleanup drops timestamps at or before now-window.
func (sw *slidingWindow) cleanup(now time.Time, window time.Duration) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}
