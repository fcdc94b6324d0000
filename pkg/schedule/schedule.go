// Package schedule implements the cooperative timer facility (C5) the
// discovery subsystem uses for periodic resends and lease watchdogs.
// Callbacks run on their own goroutine per fire rather than a single event
// loop thread, since the commit-phase lock (§5 of the design notes) is what
// actually serializes state mutation; the scheduler only needs to guarantee
// a cancel can never observe a partially-run callback.
package schedule

import (
	"sync"
	"time"
)

// Handle controls one scheduled, repeatable timer.
type Handle struct {
	mu      sync.Mutex
	timer   *time.Timer
	running sync.WaitGroup
	cancelled bool
	callback func()
}

// Schedule arms callback to run once after duration elapses. The returned
// handle can be restarted (to implement "resend every N seconds") or
// cancelled.
func Schedule(duration time.Duration, callback func()) *Handle {
	h := &Handle{callback: callback}
	h.arm(duration)
	return h
}

func (h *Handle) arm(duration time.Duration) {
	h.timer = time.AfterFunc(duration, h.fire)
}

func (h *Handle) fire() {
	h.mu.Lock()
	if h.cancelled {
		h.mu.Unlock()
		return
	}
	h.running.Add(1)
	h.mu.Unlock()

	defer h.running.Done()
	h.callback()
}

// Restart resets the timer to fire duration from now, replacing any
// in-flight wait. It does not affect a callback that is already executing.
func (h *Handle) Restart(duration time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	h.timer = time.AfterFunc(duration, h.fire)
}

// Cancel stops future fires. If a callback is already running, Cancel
// blocks until it finishes, so the caller never observes state the
// callback only partially updated.
func (h *Handle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	if h.timer != nil {
		h.timer.Stop()
	}
	h.mu.Unlock()

	h.running.Wait()
}
