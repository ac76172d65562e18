// Package debounce collapses bursts of calls into a single invocation after a
// quiet period.
package debounce

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// FireMsg is delivered by the command returned from Tick. Hand it back to
// Fire from the model's Update.
type FireMsg[T any] struct {
	seq   uint64
	owner *Debouncer[T]
	Value T
}

// Debouncer invokes its callback once per burst, with the last value passed.
// The callback is read when the timer fires, so SetFunc always wins over a
// schedule made before it.
type Debouncer[T any] struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func(T)
	seq   uint64
	done  uint64
	timer *time.Timer
}

// New returns a Debouncer that calls fn after delay of quiet. A negative
// delay is treated as zero.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// SetFunc replaces the callback for all pending and future invocations.
func (d *Debouncer[T]) SetFunc(fn func(T)) {
	d.mu.Lock()
	d.fn = fn
	d.mu.Unlock()
}

// Delay reports the quiet period.
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// Call schedules fn(v) after the quiet period, cancelling any pending call.
// It never runs the callback on the calling goroutine, even with zero delay.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(seq, v)
	})
}

// Tick is Call for Bubble Tea: instead of running on a timer goroutine the
// callback runs inside Update when the returned FireMsg is passed to Fire.
func (d *Debouncer[T]) Tick(v T) tea.Cmd {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	return tea.Tick(d.delay, func(time.Time) tea.Msg {
		return FireMsg[T]{seq: seq, owner: d, Value: v}
	})
}

// Fire runs the callback if msg belongs to the latest Tick of this debouncer.
// It reports whether the callback ran.
func (d *Debouncer[T]) Fire(msg FireMsg[T]) bool {
	if msg.owner != d {
		return false
	}
	return d.fire(msg.seq, msg.Value)
}

// Stop cancels any pending invocation. Ticks already in flight are ignored
// when they arrive.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(seq uint64, v T) bool {
	d.mu.Lock()
	if seq != d.seq || seq == d.done {
		d.mu.Unlock()
		return false
	}
	d.done = seq
	fn := d.fn
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn(v)
	}
	return true
}
