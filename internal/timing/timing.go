// Package timing abstracts wall-clock scheduling and provides the logical
// sequence counter stamped on journal entries.
package timing

import (
	"sync/atomic"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped the timer
	// before it fired.
	Stop() bool
}

// Clock schedules callbacks. Production code uses Real; tests drive a
// manual clock so settle delays and load-screen timeouts are deterministic.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Real is the wall clock.
type Real struct{}

// Now returns time.Now.
func (Real) Now() time.Time { return time.Now() }

// AfterFunc wraps time.AfterFunc. fn runs on its own goroutine.
func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Seq is a monotonic logical counter for event ordering.
//
// Every journalled event is stamped with a strictly increasing value, so a
// trace sorts identically no matter how wall-clock timestamps interleave.
//
// Safe for concurrent use, although the actor's single-writer loop is the
// only caller in practice.
type Seq struct {
	n atomic.Int64
}

// NewSeqAt creates a counter whose next value is start+1.
// Used to resume numbering after the last journalled entry.
func NewSeqAt(start int64) *Seq {
	s := &Seq{}
	s.n.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Seq) Next() int64 {
	return s.n.Add(1)
}

// Current returns the last issued sequence number.
func (s *Seq) Current() int64 {
	return s.n.Load()
}
