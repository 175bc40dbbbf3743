// internal/preview/debounce.go
//
// Cancellable trailing-edge debouncer.
//
// Context
// -------
// Every keystroke in the field editor calls Trigger(key, fn).  A pending
// call for the same key is reset, not queued, so only the last fn of a
// burst runs, Delay after the final keystroke.  Different keys debounce
// independently; typing in "headline" never swallows a pending "price"
// update.
//
// Lifecycle
// ---------
//   - CancelAll  – drop every pending call (editor rebinds to a new section).
//   - Stop       – CancelAll and refuse future Triggers (editor closes).
//
// Notes
// -----
//   - A sequence number guards the race where a timer fires while Trigger
//     or Cancel holds the lock; a superseded fire becomes a no-op.
//   - fn runs on the timer goroutine, never under the debouncer lock.
package preview

import (
	"sync"
	"time"
)

// DefaultDelay matches the editor's preview cadence.
const DefaultDelay = 300 * time.Millisecond

// Timer is the subset of *time.Timer the debouncer needs.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.  Tests swap in a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock is backed by time.AfterFunc.
var RealClock Clock = realClock{}

type pending struct {
	timer Timer
	seq   uint64
}

// Debouncer is safe for concurrent use.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	clock   Clock
	seq     uint64
	timers  map[string]pending
	stopped bool
}

// NewDebouncer returns a debouncer; delay <= 0 uses DefaultDelay and a nil
// clock uses RealClock.
func NewDebouncer(delay time.Duration, clock Clock) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if clock == nil {
		clock = RealClock
	}
	return &Debouncer{delay: delay, clock: clock, timers: make(map[string]pending)}
}

// Delay reports the configured interval.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger starts or resets the timer for key.
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if p, ok := d.timers[key]; ok {
		p.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.timers[key] = pending{
		timer: d.clock.AfterFunc(d.delay, func() { d.fire(key, seq, fn) }),
		seq:   seq,
	}
}

func (d *Debouncer) fire(key string, seq uint64, fn func()) {
	d.mu.Lock()
	p, ok := d.timers[key]
	if !ok || p.seq != seq {
		d.mu.Unlock()
		return
	}
	delete(d.timers, key)
	d.mu.Unlock()
	fn()
}

// Cancel drops the pending call for key, if any.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	if p, ok := d.timers[key]; ok {
		p.timer.Stop()
		delete(d.timers, key)
	}
	d.mu.Unlock()
}

// CancelAll drops every pending call.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	for k, p := range d.timers {
		p.timer.Stop()
		delete(d.timers, k)
	}
	d.mu.Unlock()
}

// Stop cancels everything and makes later Triggers no-ops.
func (d *Debouncer) Stop() {
	d.CancelAll()
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

// Pending reports how many keys have a timer running.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}
