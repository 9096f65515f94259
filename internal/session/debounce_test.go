package session

import (
	"testing"
	"time"
)

// manualTimer is a timer that only fires when the test says so.
type manualTimer struct {
	fn      func()
	stopped bool
}

func (m *manualTimer) Stop() bool {
	if m.stopped {
		return false
	}
	m.stopped = true
	return true
}

func (m *manualTimer) fire() {
	if !m.stopped {
		m.stopped = true
		m.fn()
	}
}

// manualClock hands out manual timers and remembers the latest one.
type manualClock struct {
	timers []*manualTimer
}

func (c *manualClock) factory(_ time.Duration, fn func()) Timer {
	t := &manualTimer{fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *manualClock) fireLast() {
	if len(c.timers) > 0 {
		c.timers[len(c.timers)-1].fire()
	}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	clock := &manualClock{}
	calls := 0
	d := NewDebouncer(time.Second, func() { calls++ }, clock.factory)

	for i := 0; i < 5; i++ {
		d.Trigger()
	}
	if calls != 0 {
		t.Fatalf("callback ran before quiet period, calls = %d", calls)
	}

	clock.fireLast()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if d.Pending() {
		t.Error("Pending() = true after fire")
	}
}

func TestDebouncer_EarlierTimersStopped(t *testing.T) {
	clock := &manualClock{}
	calls := 0
	d := NewDebouncer(time.Second, func() { calls++ }, clock.factory)

	d.Trigger()
	d.Trigger()

	// A stale timer firing must not run the callback twice.
	clock.timers[0].fire()
	clock.timers[1].fire()
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDebouncer_Flush(t *testing.T) {
	clock := &manualClock{}
	calls := 0
	d := NewDebouncer(time.Second, func() { calls++ }, clock.factory)

	d.Trigger()
	d.Flush()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	// Flush with nothing pending is a no-op.
	d.Flush()
	if calls != 1 {
		t.Errorf("calls = %d after idle flush, want 1", calls)
	}

	// The cancelled timer must stay dead.
	clock.fireLast()
	if calls != 1 {
		t.Errorf("calls = %d after stale fire, want 1", calls)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := &manualClock{}
	calls := 0
	d := NewDebouncer(time.Second, func() { calls++ }, clock.factory)

	d.Trigger()
	d.Cancel()
	clock.fireLast()
	if calls != 0 {
		t.Errorf("calls = %d after cancel, want 0", calls)
	}
	if d.Pending() {
		t.Error("Pending() = true after cancel")
	}
}

func TestDebouncer_RealTimer(t *testing.T) {
	done := make(chan struct{})
	d := NewDebouncer(5*time.Millisecond, func() { close(done) }, nil)

	d.Trigger()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced callback never fired")
	}
}
