// Package ratelimit implements per-user sliding-window admission control.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks message timestamps per user within a sliding window.
// This is a sliding-window counter, not a token bucket: bursts within the
// window are capped by count, not smoothed.
type Limiter struct {
	mu      sync.Mutex
	windows map[int64][]time.Time
	max     int
	window  time.Duration
}

// NewLimiter creates a Limiter allowing max messages per window.
func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[int64][]time.Time),
		max:     max,
		window:  window,
	}
}

// Admit prunes expired timestamps for the user, then admits the message if
// fewer than max remain. A rejected message leaves the window unchanged.
func (l *Limiter) Admit(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamps := l.windows[userID]
	valid := timestamps[:0]
	for _, t := range timestamps {
		if now.Sub(t) < l.window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= l.max {
		l.windows[userID] = valid
		return false
	}

	l.windows[userID] = append(valid, now)
	return true
}

// Pending reports how many admitted timestamps remain in the user's window.
func (l *Limiter) Pending(userID int64, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, t := range l.windows[userID] {
		if now.Sub(t) < l.window {
			count++
		}
	}
	return count
}
