// Package debounce delays a single-argument action until calls have stopped
// arriving for a quiet period.
package debounce

import (
	"sync"
	"time"
)

// Func is a trailing-edge debounced action. Each Call restarts the quiet
// period and replaces the pending argument; the action runs once with the
// latest argument after the period elapses. Func is safe for concurrent use.
type Func[T any] struct {
	wait time.Duration
	fn   func(T)

	mu      sync.Mutex
	timer   *time.Timer
	arg     T
	pending bool
	// gen identifies the latest scheduled call. A timer whose generation is
	// stale when it fires has been superseded or cancelled.
	gen uint64
}

// New wraps fn so that it runs wait after the last call
func New[T any](wait time.Duration, fn func(T)) *Func[T] {
	return &Func[T]{
		wait: wait,
		fn:   fn,
	}
}

// Call schedules fn with arg, discarding any earlier pending argument
func (d *Func[T]) Call(arg T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.arg = arg
	d.pending = true

	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
}

func (d *Func[T]) fire(gen uint64) {
	d.mu.Lock()
	if !d.pending || gen != d.gen {
		d.mu.Unlock()
		return
	}
	arg := d.take()
	d.mu.Unlock()

	d.fn(arg)
}

// take clears the pending call and returns its argument. d.mu must be held.
func (d *Func[T]) take() T {
	arg := d.arg
	var zero T
	d.arg = zero
	d.pending = false
	d.timer = nil
	return arg
}

// Cancel discards the pending call without running it. It is safe to call
// when nothing is pending and to call more than once.
func (d *Func[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.take()
}

// Flush runs the pending call immediately on the calling goroutine.
// It reports whether there was anything to run.
func (d *Func[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	arg := d.take()
	d.mu.Unlock()

	d.fn(arg)
	return true
}

// Pending reports whether a call is scheduled
func (d *Func[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
