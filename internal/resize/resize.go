// Package resize fans viewport changes out to every subscribed element.
//
// One Dispatcher is created per app and injected wherever it is needed.
// It holds nothing but the listener list; listeners read the new size from
// the Viewport when called.
package resize

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/roach88/tetra/internal/ir"
)

// Listener is notified after the viewport changes.
//
// Implementations with a comparable dynamic type (pointers, most structs)
// are deduplicated on Subscribe. Function adapters are not comparable and
// are never deduplicated.
type Listener interface {
	OnResize() error
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func() error

// OnResize calls f.
func (f ListenerFunc) OnResize() error { return f() }

// Dispatcher broadcasts resize events to listeners in registration order.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []*Subscription
	logger    *slog.Logger
}

// Subscription is a handle to one registered listener.
type Subscription struct {
	d        *Dispatcher
	listener Listener
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for listener failures.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// NewDispatcher creates a dispatcher with no listeners.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe registers l. Subscribing a listener that is already registered
// returns the existing subscription, so it is still called once per
// broadcast.
func (d *Dispatcher) Subscribe(l Listener) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	if isComparable(l) {
		for _, s := range d.listeners {
			if sameListener(s.listener, l) {
				return s
			}
		}
	}

	s := &Subscription{d: d, listener: l}
	d.listeners = append(d.listeners, s)
	return s
}

// Len returns the number of registered listeners.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

// Broadcast calls every listener registered at the moment of the call.
//
// Listeners added or removed during the broadcast take effect from the next
// one. A listener that returns an error or panics is logged and skipped; the
// rest still run. The failures are joined into the returned error.
func (d *Dispatcher) Broadcast() error {
	d.mu.RLock()
	snapshot := make([]*Subscription, len(d.listeners))
	copy(snapshot, d.listeners)
	d.mu.RUnlock()

	var errs []error
	for i, s := range snapshot {
		if err := call(s.listener); err != nil {
			d.logger.Warn("resize listener failed", "index", i, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispose removes the listener. Safe to call more than once.
func (s *Subscription) Dispose() {
	if s == nil || s.d == nil {
		return
	}
	d := s.d
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, other := range d.listeners {
		if other == s {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			break
		}
	}
	s.d = nil
}

func call(l Listener) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("listener panicked: %v", r)
		}
	}()
	return l.OnResize()
}

func isComparable(l Listener) bool {
	return l != nil && reflect.TypeOf(l).Comparable()
}

// sameListener compares two listeners by identity. A comparable struct can
// still hold an incomparable value in an interface field, which makes ==
// panic; such listeners are treated as distinct.
func sameListener(a, b Listener) (same bool) {
	if !isComparable(a) || reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

// Viewport is the shared viewport handle.
//
// Size is read by elements while positioning; Resize is called by the host
// (window, HTTP surface, harness) on the UI loop.
type Viewport struct {
	mu   sync.RWMutex
	size ir.Size
	d    *Dispatcher
}

// NewViewport creates a viewport of the given size that broadcasts through d.
func NewViewport(size ir.Size, d *Dispatcher) *Viewport {
	return &Viewport{size: size, d: d}
}

// Size returns the current size.
func (v *Viewport) Size() ir.Size {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.size
}

// Resize records the new size and broadcasts once. There is no debounce:
// every call produces one broadcast. A size that is not positive and finite
// is rejected and nothing is broadcast.
func (v *Viewport) Resize(width, height float64) error {
	size := ir.Size{Width: width, Height: height}
	if !size.Valid() {
		return fmt.Errorf("resize: invalid viewport %gx%g", width, height)
	}
	v.mu.Lock()
	v.size = size
	v.mu.Unlock()
	return v.d.Broadcast()
}
