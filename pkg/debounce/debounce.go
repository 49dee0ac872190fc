// Package debounce coalesces bursts of calls into one trailing call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the most recently submitted function once no new call has arrived for
// the configured delay.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	fn      func()
	gen     uint64
	stopped bool
}

// New returns a Debouncer. A non-positive delay runs calls on the next timer tick.
func New(delay time.Duration) *Debouncer {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{delay: delay}
}

// Call schedules fn, replacing any call still waiting.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.fn = fn
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.fn == nil {
		d.mu.Unlock()
		return
	}
	fn := d.fn
	d.fn = nil
	d.mu.Unlock()
	fn()
}

// Flush runs the waiting call immediately on the calling goroutine.
// It reports whether anything was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.fn
	d.fn = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Stop drops any waiting call and ignores every later Call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.fn = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
	}
}
