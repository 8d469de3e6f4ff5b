// Package debounce coalesces bursts of triggers into single invocations.
package debounce

import (
	"sync"
	"time"
)

// Debouncer fires fn once the quiet period has elapsed since the most recent
// Trigger. Last write wins: a new trigger discards any pending invocation, so
// a burst of triggers produces exactly one call.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

// New creates a Debouncer that invokes fn after delay of quiet.
func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{
		delay: delay,
		fn:    fn,
	}
}

// Trigger schedules fn, cancelling any previously scheduled invocation.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels any pending invocation.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
