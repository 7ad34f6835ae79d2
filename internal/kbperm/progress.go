package kbperm

import (
	"sync"
	"time"
)

// ProgressFunc is a status callback invoked periodically during a search.
type ProgressFunc func(completed, total uint64)

// Throttle wraps fn so that underlying calls are admitted at most once
// per minDuration; a forced call always fires, waiting out the
// remainder of the current window if necessary. Not on any
// correctness path: used only to rate-limit status emission.
type Throttle struct {
	mu          sync.Mutex
	fn          ProgressFunc
	minDuration time.Duration
	last        time.Time
}

// NewThrottle builds a Throttle around fn with the given minimum gap
// between admitted calls.
func NewThrottle(fn ProgressFunc, minDuration time.Duration) *Throttle {
	return &Throttle{fn: fn, minDuration: minDuration}
}

// Call admits fn(completed, total) if minDuration has elapsed since
// the last admitted call, or unconditionally when forced is true
// (waiting out the remainder of the window first).
func (t *Throttle) Call(completed, total uint64, forced bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(t.last)
	if !forced && !t.last.IsZero() && elapsed < t.minDuration {
		return
	}
	if forced && !t.last.IsZero() && elapsed < t.minDuration {
		time.Sleep(t.minDuration - elapsed)
		now = time.Now()
	}
	t.last = now
	t.fn(completed, total)
}
