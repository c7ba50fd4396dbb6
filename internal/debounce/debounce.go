// Package debounce runs a task once a burst of Schedule calls has gone quiet.
//
// A Debouncer holds at most one pending task. Scheduling a new task replaces
// the pending one and restarts the delay (trailing edge).
package debounce

import (
	"sync"
	"time"
)

// Debouncer owns a single pending-task slot.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	task    func()
	seq     uint64
	stopped bool
}

// New returns a Debouncer that waits delay after the last Schedule call.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule replaces any pending task with fn and restarts the delay.
// It is a no-op after Stop.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.cancelLocked()
	d.seq++
	seq := d.seq
	d.task = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Cancel drops the pending task without running it. It reports whether a task
// was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

// Pending reports whether a task is waiting to run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.task != nil
}

// Stop cancels the pending task and rejects further scheduling.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	// A timer that lost the race with Schedule or Cancel is stale.
	if seq != d.seq || d.task == nil {
		d.mu.Unlock()
		return
	}
	task := d.task
	d.task = nil
	d.timer = nil
	d.mu.Unlock()

	task()
}

func (d *Debouncer) cancelLocked() bool {
	pending := d.task != nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.task = nil
	d.seq++
	return pending
}
