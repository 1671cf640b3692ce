// Package ratelimit provides a fixed-window per-minute request counter
// keyed independently by user and by client address.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed bool

	// RetryAfter is how long the caller should wait before retrying.
	// Only meaningful when Allowed is false.
	RetryAfter time.Duration
}

// window tracks request counts for one key within the current minute.
type window struct {
	start time.Time
	count int
}

// Limiter counts requests per key per minute. It is owned by its creator
// and injected where needed; there is no package-level state. All methods
// are safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	limits  map[string]int
	windows map[string]window
	now     func() time.Time
}

// DefaultPerMinute is the limit applied to kinds without an explicit limit.
const DefaultPerMinute = 10

// New creates a Limiter with per-kind per-minute limits. Kinds absent from
// the map fall back to DefaultPerMinute.
func New(limits map[string]int) *Limiter {
	return &Limiter{
		limits:  limits,
		windows: make(map[string]window),
		now:     time.Now,
	}
}

// NewWithClock creates a Limiter with an injected clock for tests.
func NewWithClock(limits map[string]int, now func() time.Time) *Limiter {
	l := New(limits)
	l.now = now
	return l
}

// Check records one request of the given kind against both the user key and
// the client-address key, and reports whether it is allowed. Either key
// exceeding its window denies the request.
func (l *Limiter) Check(kind, userKey, ipKey string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	limit := l.limits[kind]
	if limit <= 0 {
		limit = DefaultPerMinute
	}

	now := l.now()
	user := l.bump(kind+"|u|"+userKey, now)
	ip := l.bump(kind+"|ip|"+ipKey, now)

	if user.count > limit || ip.count > limit {
		oldest := user.start
		if ip.start.Before(oldest) {
			oldest = ip.start
		}
		retry := time.Minute - now.Sub(oldest)
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, RetryAfter: retry}
	}

	return Decision{Allowed: true}
}

// bump increments the window for a key, rolling it over when the minute has
// elapsed, and returns the updated window.
func (l *Limiter) bump(key string, now time.Time) window {
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= time.Minute {
		w = window{start: now}
	}
	w.count++
	l.windows[key] = w
	return w
}
