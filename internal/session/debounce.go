package session

import (
	"sync"
	"time"
)

// Timer is the subset of time.Timer the debouncer needs. Tests inject
// manual timers to fire deterministically.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn after d and returns a handle to cancel it.
type TimerFactory func(d time.Duration, fn func()) Timer

func realTimer(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Debouncer coalesces bursts of triggers into a single callback
// invocation after a quiet period.
type Debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	newTimer TimerFactory
	fn       func()
	timer    Timer
	pending  bool
}

// NewDebouncer builds a debouncer that runs fn once delay has elapsed
// since the last Trigger. A nil factory uses real timers.
func NewDebouncer(delay time.Duration, fn func(), factory TimerFactory) *Debouncer {
	if factory == nil {
		factory = realTimer
	}
	return &Debouncer{
		delay:    delay,
		newTimer: factory,
		fn:       fn,
	}
}

// Trigger restarts the quiet-period countdown.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = true
	d.timer = d.newTimer(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

// Flush runs the callback immediately if a trigger is pending.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
	d.mu.Unlock()

	d.fn()
}

// Cancel drops any pending trigger without running the callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = false
}

// Pending reports whether a trigger is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
