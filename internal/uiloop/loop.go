// Package uiloop is the single UI thread.
//
// Every piece of scene state (node positions, visibility, subscriptions) is
// touched only from tasks run by one Loop. Asset completions, timer callbacks
// and HTTP handlers never mutate the scene directly; they Post a task.
package uiloop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/tetra/internal/queue"
	"github.com/roach88/tetra/internal/timing"
)

// Loop runs posted tasks one at a time, in posting order.
type Loop struct {
	tasks  *queue.Queue[func()]
	clock  timing.Clock
	logger *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock sets the clock used by AfterFunc. Defaults to timing.Real.
func WithClock(c timing.Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithLogger sets the logger for recovered task panics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// New creates an idle loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		tasks:  queue.New[func()](),
		clock:  timing.Real{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Clock returns the loop's clock.
func (l *Loop) Clock() timing.Clock {
	return l.clock
}

// Post queues fn. Safe from any goroutine. Returns false once closed.
func (l *Loop) Post(fn func()) bool {
	return l.tasks.Enqueue(fn)
}

// Run executes tasks until ctx is cancelled or the loop is closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.RunPending()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-l.tasks.Wait():
			if !ok {
				l.RunPending()
				return nil
			}
		}
	}
}

// RunPending synchronously runs queued tasks, including tasks they post,
// until the queue is empty. Returns the number of tasks run.
//
// Tests and the scenario harness use this instead of Run.
func (l *Loop) RunPending() int {
	n := 0
	for {
		fn, ok := l.tasks.TryDequeue()
		if !ok {
			return n
		}
		l.exec(fn)
		n++
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	return l.tasks.Len()
}

// Call posts fn and blocks until it has run on the loop or ctx is done.
// Must not be called from a loop task.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	ok := l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("task panicked: %v", r)
			}
		}()
		done <- fn()
	})
	if !ok {
		return fmt.Errorf("ui loop closed")
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// AfterFunc schedules fn to be posted to the loop after d.
//
// Stop reports true as long as fn has not started, even if the underlying
// clock timer already fired and the task is sitting in the queue; a stopped
// task is skipped when dequeued.
func (l *Loop) AfterFunc(d time.Duration, fn func()) timing.Timer {
	t := &loopTimer{}
	t.inner = l.clock.AfterFunc(d, func() {
		l.Post(func() {
			if t.begin() {
				fn()
			}
		})
	})
	return t
}

// Close stops accepting tasks. Queued tasks still run.
func (l *Loop) Close() {
	l.tasks.Close()
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("ui task panicked", "panic", r)
		}
	}()
	fn()
}

type loopTimer struct {
	mu      sync.Mutex
	inner   timing.Timer
	stopped bool
	started bool
}

func (t *loopTimer) begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.started = true
	return true
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.started {
		return false
	}
	t.stopped = true
	t.inner.Stop()
	return true
}
