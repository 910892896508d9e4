// Package debounce delays propagation of a rapidly-changing value
// until it has settled, collapsing a burst of updates into one.
package debounce

import (
	"sync"
	"time"
)

// Debouncer emits the most recent value passed to Set once no new
// value has arrived for the configured delay. Each Set restarts the
// timer and discards the previously pending value. A zero delay still
// defers emission to the timer goroutine, never the calling one.
type Debouncer[T any] struct {
	delay time.Duration
	emit  func(T)

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// New returns a Debouncer that calls emit with the settled value. The
// callback runs on the timer's goroutine.
func New[T any](delay time.Duration, emit func(T)) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{delay: delay, emit: emit}
}

// Set records a new value, restarting the settle timer. Values set
// before the delay elapses are never emitted.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
		d.emit(value)
	})
}

// Stop cancels any pending emission. The Debouncer must not be used
// after Stop.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
