package client

import (
	"sync"
	"time"
)

// Debouncer runs at most one pending task per key. Scheduling a key again
// before its quiet period ends replaces the earlier task and restarts the wait.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	idle    *sync.Cond // signalled when running drops to zero
	pending map[string]*debounced
	running int
	stopped bool
}

type debounced struct {
	timer *time.Timer
	fn    func()
}

func NewDebouncer(delay time.Duration) *Debouncer {
	d := &Debouncer{delay: delay, pending: make(map[string]*debounced)}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Schedule reports false once the debouncer is stopped.
func (d *Debouncer) Schedule(key string, fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	e := &debounced{fn: fn}
	e.timer = time.AfterFunc(d.delay, func() { d.fire(key, e) })
	d.pending[key] = e
	return true
}

func (d *Debouncer) fire(key string, e *debounced) {
	d.mu.Lock()
	// a newer Schedule, Cancel or Flush already took this slot
	if d.pending[key] != e {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.running++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running--
		if d.running == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}()
	e.fn()
}

// Cancel drops the pending task for key and reports whether there was one.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(d.pending, key)
	return true
}

func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Flush runs every pending task now, on the calling goroutine, and waits for
// tasks whose timers already fired.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	tasks := make([]func(), 0, len(d.pending))
	for key, e := range d.pending {
		e.timer.Stop()
		tasks = append(tasks, e.fn)
		delete(d.pending, key)
	}
	d.mu.Unlock()

	for _, fn := range tasks {
		fn()
	}

	d.mu.Lock()
	for d.running > 0 {
		d.idle.Wait()
	}
	d.mu.Unlock()
}

// Stop cancels everything pending and rejects later schedules.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
	}
}
