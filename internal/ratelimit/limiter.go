// Package ratelimit provides process-local admission control for generation
// calls. This is advisory throughput control against accidental overuse, not
// a security boundary: counters live in one process and are not correct
// across multiple instances. A deployment that needs a real boundary must
// back this with a shared external counter.
package ratelimit

import (
	"sync"
	"time"
)

// Result reports one admission decision.
type Result struct {
	Allowed      bool  `json:"allowed"`
	Remaining    int   `json:"remaining"`
	ResetEpochMS int64 `json:"reset_epoch_ms"`
}

type window struct {
	count  int
	expiry time.Time
}

// Limiter is a per-user fixed-window counter. It is an explicit object
// constructed once at process start and passed to every call site; there is
// no package-level state.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	max     int
	length  time.Duration
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once
}

// New creates a limiter admitting max calls per window and starts the
// background sweep that evicts expired per-user entries.
func New(max int, length time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		max:     max,
		length:  length,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Check admits or rejects one call for the user. The first call after an
// uninitialized or expired window resets the count to 1 and opens a new
// window; otherwise the count increments until the cap, after which calls
// are rejected until the window expires.
func (l *Limiter) Check(userID string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[userID]
	if !ok || now.After(w.expiry) {
		w = &window{count: 1, expiry: now.Add(l.length)}
		l.windows[userID] = w
		return Result{Allowed: true, Remaining: l.max - 1, ResetEpochMS: w.expiry.UnixMilli()}
	}

	if w.count >= l.max {
		return Result{Allowed: false, Remaining: 0, ResetEpochMS: w.expiry.UnixMilli()}
	}

	w.count++
	return Result{Allowed: true, Remaining: l.max - w.count, ResetEpochMS: w.expiry.UnixMilli()}
}

// Stop terminates the background sweep.
func (l *Limiter) Stop() {
	l.stopped.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.length)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for userID, w := range l.windows {
				if now.After(w.expiry) {
					delete(l.windows, userID)
				}
			}
			l.mu.Unlock()
		}
	}
}
