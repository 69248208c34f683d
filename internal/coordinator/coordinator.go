// Package coordinator serializes the display of transient snackbar widgets
// so that at most one is visible at a time. Later requests queue in FIFO
// order and are promoted once the visible widget has fully dismissed.
package coordinator

import (
	"container/list"
	"log/slog"
	"sync"
	"time"
)

// Coordinator owns the current-snackbar slot and the pending queue, and
// drives every transition between "nothing visible", "one showing" and
// "showing + N queued". One instance serves the whole process; widgets
// reach it through their Callback surface and the lifecycle hooks below.
//
// Invariants, all maintained under one exclusive lock:
//   - the visibility flag is set only while the current slot holds a record
//   - a record is either current or queued, never both
//   - at most one auto-dismiss timer is armed, and only for the current record
//   - queue order is arrival order; there is no priority promotion
type Coordinator struct {
	logger *slog.Logger
	timers *timerSet

	mu           sync.Mutex
	current      *Record
	queue        *list.List // of *Record, FIFO
	anyVisible   bool
	shortTimeout time.Duration
	longTimeout  time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeouts overrides the Short and Long timeout defaults.
func WithTimeouts(short, long time.Duration) Option {
	return func(c *Coordinator) {
		if short > 0 {
			c.shortTimeout = short
		}
		if long > 0 {
			c.longTimeout = long
		}
	}
}

// New creates a Coordinator and starts its timer dispatcher. Call Close
// when the coordinator is no longer needed.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		logger:       slog.Default(),
		timers:       newTimerSet(),
		queue:        list.New(),
		shortTimeout: DefaultShortTimeout,
		longTimeout:  DefaultLongTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.timers.run(c.handleTimeout)

	return c
}

// Default returns the shared process-wide Coordinator, created on first
// use and never closed.
var Default = sync.OnceValue(func() *Coordinator {
	return New()
})

// Close stops the timer dispatcher and disarms any outstanding timeout.
// Queued records are left where they are.
func (c *Coordinator) Close() {
	c.timers.close()
}

// SetTimeouts retunes the Short and Long defaults, e.g. on a config
// reload. An already armed timer keeps its previously resolved duration.
func (c *Coordinator) SetTimeouts(short, long time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if short > 0 {
		c.shortTimeout = short
	}
	if long > 0 {
		c.longTimeout = long
	}
}

// Show displays the widget behind ref immediately if nothing is visible,
// otherwise appends it to the queue. The visibility check and the routing
// happen under a single lock acquisition, so two racing callers can never
// both claim the free slot.
func (c *Coordinator) Show(d Duration, ref Ref) {
	rec := newRecord(d, ref)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.anyVisible {
		c.queue.PushBack(rec)
		c.logger.Debug("snackbar queued",
			"record_id", rec.ID(),
			"duration", int(d),
			"queue_len", c.queue.Len(),
		)
		return
	}
	c.showLocked(rec)
}

// showLocked promotes rec into the current slot and begins its enter
// transition. A record whose widget has already been collected is dropped
// silently: not shown, not queued, not dismissed.
func (c *Coordinator) showLocked(rec *Record) bool {
	cb := rec.ref.Get()
	if cb == nil {
		c.logger.Debug("dropping request for collected widget", "record_id", rec.ID())
		return false
	}

	c.anyVisible = true
	c.current = rec
	cb.Show()

	c.logger.Debug("snackbar showing", "record_id", rec.ID())
	return true
}

// OnShown is called by the widget once its enter transition has completed
// and it is actually on screen. It arms the auto-dismiss timeout for the
// current record; reports from any other widget are ignored.
func (c *Coordinator) OnShown(cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCurrentLocked(cb) {
		c.scheduleTimeoutLocked(c.current)
	}
}

// Dismiss begins the exit transition for the widget behind cb, wherever it
// is. Dismissing the current widget clears the visibility flag; a queued
// widget is removed from the queue without affecting the current one.
// Every queued match is removed, and unknown callbacks are a no-op.
func (c *Coordinator) Dismiss(cb Callback, event DismissEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCurrentLocked(cb) {
		c.dismissRecordLocked(c.current, event)
		return
	}

	for e := c.queue.Front(); e != nil; {
		next := e.Next()
		rec := e.Value.(*Record)
		if rec.is(cb) {
			c.queue.Remove(e)
			c.dismissRecordLocked(rec, event)
		}
		e = next
	}
}

// dismissRecordLocked begins rec's exit transition. It is the single place
// a Dismiss hook is invoked, shared by the public path and the timeout
// path. Disarming the record's timer here keeps a stale timer from firing
// for a record that is no longer current.
func (c *Coordinator) dismissRecordLocked(rec *Record, event DismissEvent) bool {
	c.timers.cancel(rec)

	if rec == c.current {
		c.anyVisible = false
	}

	cb := rec.ref.Get()
	if cb == nil {
		// The widget is already gone, so no exit transition will ever
		// report back. Treat it as fully dismissed.
		if rec == c.current {
			c.current = nil
			c.promoteLocked()
		}
		return false
	}

	cb.Dismiss(event)
	c.logger.Debug("snackbar dismissing",
		"record_id", rec.ID(),
		"event", event.String(),
	)
	return true
}

// OnDismissed is called by the widget once its exit transition has fully
// completed. It frees the current slot if cb owned it, then promotes the
// next queued record. Promotion happens only here, never from Dismiss.
func (c *Coordinator) OnDismissed(cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCurrentLocked(cb) {
		c.timers.cancel(c.current)
		c.current = nil
		c.anyVisible = false
	}
	c.promoteLocked()
}

// promoteLocked moves the queue head into the free slot, skipping records
// whose widget was collected while waiting. A stale completion report
// while another widget is visible promotes nothing, preserving FIFO order.
func (c *Coordinator) promoteLocked() {
	if c.anyVisible {
		return
	}

	for e := c.queue.Front(); e != nil; e = c.queue.Front() {
		rec := e.Value.(*Record)
		c.queue.Remove(e)
		if c.showLocked(rec) {
			return
		}
	}
}

// IsCurrent reports whether cb is the record currently on screen.
func (c *Coordinator) IsCurrent(cb Callback) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCurrentLocked(cb)
}

// IsCurrentOrNext reports whether cb is on screen or waiting in the queue.
func (c *Coordinator) IsCurrentOrNext(cb Callback) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isCurrentLocked(cb) || c.isQueuedLocked(cb)
}

// IsShowing reports whether any snackbar is currently visible.
func (c *Coordinator) IsShowing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anyVisible
}

// QueuedCount returns the number of records waiting behind the current one.
func (c *Coordinator) QueuedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.Len()
}

func (c *Coordinator) isCurrentLocked(cb Callback) bool {
	return c.current != nil && c.current.is(cb)
}

func (c *Coordinator) isQueuedLocked(cb Callback) bool {
	for e := c.queue.Front(); e != nil; e = e.Next() {
		if e.Value.(*Record).is(cb) {
			return true
		}
	}
	return false
}

// CancelTimeout disarms the current widget's auto-dismiss timer, e.g.
// while the host UI is in the background. No effect unless cb is current.
func (c *Coordinator) CancelTimeout(cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCurrentLocked(cb) {
		c.timers.cancel(c.current)
	}
}

// RestoreTimeout re-arms the current widget's auto-dismiss timer with its
// original duration semantics. No effect unless cb is current.
func (c *Coordinator) RestoreTimeout(cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isCurrentLocked(cb) {
		c.scheduleTimeoutLocked(c.current)
	}
}

// resolveTimeout maps a requested duration onto a concrete timeout.
func (c *Coordinator) resolveTimeout(d Duration) time.Duration {
	switch {
	case d > 0:
		return time.Duration(d) * time.Millisecond
	case d == Short:
		return c.shortTimeout
	default:
		return c.longTimeout
	}
}

// scheduleTimeoutLocked arms the one-shot auto-dismiss timer for rec.
// Indefinite records never time out; re-arming replaces rather than stacks.
func (c *Coordinator) scheduleTimeoutLocked(rec *Record) {
	if rec.duration == Indefinite {
		return
	}

	d := c.resolveTimeout(rec.duration)
	c.timers.schedule(rec, d)

	c.logger.Debug("timeout armed", "record_id", rec.ID(), "timeout", d)
}

// handleTimeout runs on the timer dispatch goroutine when rec's timer
// fires. It acts on the record directly instead of matching through the
// public surface; the timer was armed for exactly this record.
func (c *Coordinator) handleTimeout(rec *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dismissRecordLocked(rec, EventTimeout)
}
