package search

import (
	"sync"
	"time"
)

// Debouncer runs at most one pending task. Scheduling a task cancels the
// pending one before arming the new timer.
type Debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	stopped bool
}

// Schedule runs fn after delay unless another Schedule, Cancel or Stop
// happens first.
func (d *Debouncer) Schedule(delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked()

	d.seq++
	seq := d.seq
	d.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		current := seq == d.seq && !d.stopped
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops the pending task, if any
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Pending reports whether a task is armed
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending task and rejects future ones
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}

func (d *Debouncer) cancelLocked() {
	// a timer that already fired sees the bumped seq and does nothing
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
