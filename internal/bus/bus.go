// Package bus is the named notification channel between scene nodes.
//
// The builder publishes "<label>_added" once a node is attached to its
// parent, and buttons publish "<label>_clicked". Delivery is synchronous, in
// subscription order, on the caller's goroutine (the UI loop).
package bus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/tetra/internal/ir"
)

// Kind is the notification kind carried by a topic.
type Kind string

const (
	// Added fires after a node has been attached to its parent.
	Added Kind = "added"
	// Clicked fires when a button is activated.
	Clicked Kind = "clicked"
)

// Topic names one notification.
type Topic struct {
	ID   ir.ElementID
	Kind Kind
}

// AddedTopic returns the attachment topic of id.
func AddedTopic(id ir.ElementID) Topic { return Topic{ID: id, Kind: Added} }

// ClickedTopic returns the click topic of id.
func ClickedTopic(id ir.ElementID) Topic { return Topic{ID: id, Kind: Clicked} }

// String returns the wire name, e.g. "reel_added".
func (t Topic) String() string {
	return fmt.Sprintf("%s_%s", t.ID, t.Kind)
}

// Handler receives a published topic.
type Handler func(Topic)

// Bus routes published topics to subscribers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[Topic][]*Subscription
	taps   []*Subscription
	logger *slog.Logger
}

// Subscription is a handle to one handler.
type Subscription struct {
	bus     *Bus
	topic   Topic
	tap     bool
	handler Handler
}

// New creates an empty bus. A nil logger means slog.Default().
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{subs: make(map[Topic][]*Subscription), logger: logger}
}

// Subscribe registers h for topic.
func (b *Bus) Subscribe(topic Topic, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &Subscription{bus: b, topic: topic, handler: h}
	b.subs[topic] = append(b.subs[topic], s)
	return s
}

// Tap registers h for every published topic. Taps run after the topic's
// own subscribers. The harness uses a tap to record notification order.
func (b *Bus) Tap(h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &Subscription{bus: b, tap: true, handler: h}
	b.taps = append(b.taps, s)
	return s
}

// Publish delivers topic and returns the number of topic subscribers that
// received it. A panicking handler is logged and does not stop delivery.
func (b *Bus) Publish(topic Topic) int {
	b.mu.RLock()
	subs := append([]*Subscription(nil), b.subs[topic]...)
	taps := append([]*Subscription(nil), b.taps...)
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s, topic)
	}
	for _, s := range taps {
		b.deliver(s, topic)
	}
	return len(subs)
}

func (b *Bus) deliver(s *Subscription, topic Topic) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("notification handler panicked", "topic", topic.String(), "panic", r)
		}
	}()
	s.handler(topic)
}

// Dispose removes the handler. Safe to call more than once.
func (s *Subscription) Dispose() {
	if s == nil || s.bus == nil {
		return
	}
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.tap {
		b.taps = remove(b.taps, s)
	} else {
		b.subs[s.topic] = remove(b.subs[s.topic], s)
		if len(b.subs[s.topic]) == 0 {
			delete(b.subs, s.topic)
		}
	}
	s.bus = nil
}

func remove(list []*Subscription, s *Subscription) []*Subscription {
	for i, other := range list {
		if other == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
