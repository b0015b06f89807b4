// Package visibility coordinates elements that must stay hidden until
// their parent has laid out.
package visibility

import (
	"time"

	"github.com/roach88/tetra/internal/bus"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/timing"
)

// DefaultSettleDelay is the pause between a node's attachment notification
// and the moment it shows.
const DefaultSettleDelay = 100 * time.Millisecond

// Scheduler runs a callback later on the UI loop. *uiloop.Loop satisfies it.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) timing.Timer
}

// Waiter holds one element hidden until it settles.
//
// The element starts waiting. Its first "<label>_added" notification
// schedules a single settle timer; when the timer fires the waiter stops
// waiting and calls onSettle, which is where the element re-resolves its
// position and becomes visible. Later notifications are no-ops.
//
// All methods must be called on the UI loop.
type Waiter struct {
	waiting  bool
	timer    timing.Timer
	sub      *bus.Subscription
	delay    time.Duration
	sched    Scheduler
	onSettle func()
}

// NewWaiter creates a waiting Waiter for id. A non-positive delay means
// DefaultSettleDelay.
func NewWaiter(b *bus.Bus, sched Scheduler, id ir.ElementID, delay time.Duration, onSettle func()) *Waiter {
	if delay <= 0 {
		delay = DefaultSettleDelay
	}
	w := &Waiter{waiting: true, delay: delay, sched: sched, onSettle: onSettle}
	w.sub = b.Subscribe(bus.AddedTopic(id), func(bus.Topic) { w.attached() })
	return w
}

// Waiting reports whether the element is still hidden.
func (w *Waiter) Waiting() bool { return w.waiting }

// Scheduled reports whether the settle timer has been started.
func (w *Waiter) Scheduled() bool { return w.timer != nil }

func (w *Waiter) attached() {
	if !w.waiting || w.timer != nil {
		return
	}
	w.timer = w.sched.AfterFunc(w.delay, w.settle)
}

func (w *Waiter) settle() {
	if !w.waiting {
		return
	}
	w.waiting = false
	w.sub.Dispose()
	if w.onSettle != nil {
		w.onSettle()
	}
}

// Close cancels a pending settle and drops the subscription. The element
// stays hidden.
func (w *Waiter) Close() {
	if w.timer != nil {
		w.timer.Stop()
	}
	w.sub.Dispose()
	w.onSettle = nil
}
