// Package ratelimit applies a per-caller request budget at the HTTP
// boundary. Each caller gets a token bucket sized to the configured budget,
// refilled over the window, which approximates a fixed request-count window.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type Limiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
}

// New builds a limiter allowing at most requests per window for each key.
func New(requests int, window time.Duration) *Limiter {
	if requests <= 0 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Every(window / time.Duration(requests)),
		burst:     requests,
		window:    window,
		lastSweep: time.Now(),
	}
}

// Allow reports whether the caller identified by key may proceed.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	l.sweep(now)

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	l.mu.Unlock()

	return v.limiter.Allow()
}

// sweep drops visitors idle for a full window; their bucket would be
// completely refilled by now, so eviction never grants extra budget. Runs at
// most once per window, with l.mu held.
func (l *Limiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) <= l.window {
		return
	}
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.window {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}
