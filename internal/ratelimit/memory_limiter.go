package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type window struct {
	hits []time.Time
}

// MemoryLimiter is the in-process fallback used when redis is unreachable.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	log     *slog.Logger
}

// NewMemoryLimiter returns an in-memory limiter implementation.
func NewMemoryLimiter(log *slog.Logger) *MemoryLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &MemoryLimiter{
		windows: make(map[string]*window),
		log:     log,
	}
}

var _ Limiter = (*MemoryLimiter)(nil)

// Check enforces a sliding-window limit for the provided key.
func (m *MemoryLimiter) Check(ctx context.Context, key string, limit int, windowSize time.Duration) (*Result, error) {
	now := time.Now()
	start := now.Add(-windowSize)

	m.mu.Lock()
	defer m.mu.Unlock()

	win, ok := m.windows[key]
	if !ok {
		win = &window{hits: make([]time.Time, 0, 8)}
		m.windows[key] = win
	}

	win.hits = dropExpired(win.hits, start)
	count := len(win.hits)

	allowed := count < limit
	if allowed {
		win.hits = append(win.hits, now)
		count++
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	result := &Result{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   start.Add(windowSize),
	}

	if !allowed {
		return result, ErrLimitExceeded
	}

	return result, nil
}

// Cleanup removes windows that have been inactive for more than maxAge.
func (m *MemoryLimiter) Cleanup(maxAge time.Duration) {
	if maxAge <= 0 {
		return
	}

	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	for key, win := range m.windows {
		if len(win.hits) == 0 || win.hits[len(win.hits)-1].Before(cutoff) {
			delete(m.windows, key)
		}
	}
}

func dropExpired(hits []time.Time, start time.Time) []time.Time {
	idx := 0
	for idx < len(hits) && hits[idx].Before(start) {
		idx++
	}

	switch {
	case idx == 0:
		return hits
	case idx >= len(hits):
		return hits[:0]
	default:
		copy(hits, hits[idx:])
		return hits[:len(hits)-idx]
	}
}
