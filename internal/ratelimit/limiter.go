package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	count int
	start time.Time
}

// Limiter is a fixed-window request counter keyed by client. Each key gets
// its own window; counters reset when the window elapses, never mid-window.
type Limiter struct {
	mutex   sync.Mutex
	windows map[string]*window
	window  time.Duration
	max     int
}

func NewLimiter(windowDuration time.Duration, maxRequests int) *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
		window:  windowDuration,
		max:     maxRequests,
	}
}

// Admit records one request for the given key and reports whether it is
// allowed under the configured limit. A single clock read decides both the
// window boundary and the reset, so concurrent requests arriving exactly at
// the boundary cannot double-reset the counter.
func (l *Limiter) Admit(key string) bool {
	now := time.Now()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.windows[key] = &window{count: 1, start: now}
		return true
	}

	w.count++
	return w.count <= l.max
}

// Limit returns the maximum number of requests admitted per window.
func (l *Limiter) Limit() int {
	return l.max
}

// Window returns the window duration.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// RetryAfter returns how long the given key must wait until its current
// window expires. Returns 0 if the key has no active window.
func (l *Limiter) RetryAfter(key string) time.Duration {
	now := time.Now()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	w, ok := l.windows[key]
	if !ok {
		return 0
	}

	remaining := l.window - now.Sub(w.start)
	if remaining < 0 {
		return 0
	}
	return remaining
}
