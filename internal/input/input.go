// Package input routes keyboard and pointer events to scene consumers.
//
// Hosts (the HTTP surface, the scenario harness) dispatch on the UI loop;
// handlers run synchronously in registration order.
package input

import (
	"strings"
	"sync"
)

// Key is a normalised key name.
type Key string

const (
	KeySpace Key = "Space"
	KeyEnter Key = "Enter"
)

// ParseKey normalises a key name or code ("space", " ", "Return", "Enter").
// Unrecognised names are returned with an upper-case first letter.
func ParseKey(raw string) Key {
	switch strings.ToLower(strings.TrimPrefix(raw, "Key")) {
	case " ", "space", "spacebar":
		return KeySpace
	case "enter", "return", "numpadenter":
		return KeyEnter
	}
	if raw == "" {
		return ""
	}
	return Key(strings.ToUpper(raw[:1]) + raw[1:])
}

// Pointer is a pointer-down event in viewport coordinates.
type Pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hub holds the registered handlers.
type Hub struct {
	mu       sync.Mutex
	keys     []*Handle
	pointers []*Handle
}

// Handle removes one handler.
type Handle struct {
	hub     *Hub
	key     func(Key)
	pointer func(Pointer)
}

// NewHub creates an empty hub.
func NewHub() *Hub { return &Hub{} }

// OnKey registers fn for key events.
func (h *Hub) OnKey(fn func(Key)) *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	hd := &Handle{hub: h, key: fn}
	h.keys = append(h.keys, hd)
	return hd
}

// OnPointer registers fn for pointer events.
func (h *Hub) OnPointer(fn func(Pointer)) *Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	hd := &Handle{hub: h, pointer: fn}
	h.pointers = append(h.pointers, hd)
	return hd
}

// DispatchKey delivers k and returns the number of handlers called.
func (h *Hub) DispatchKey(k Key) int {
	h.mu.Lock()
	handlers := append([]*Handle(nil), h.keys...)
	h.mu.Unlock()
	for _, hd := range handlers {
		hd.key(k)
	}
	return len(handlers)
}

// DispatchPointer delivers p and returns the number of handlers called.
func (h *Hub) DispatchPointer(p Pointer) int {
	h.mu.Lock()
	handlers := append([]*Handle(nil), h.pointers...)
	h.mu.Unlock()
	for _, hd := range handlers {
		hd.pointer(p)
	}
	return len(handlers)
}

// Remove unregisters the handler. Safe to call more than once.
func (hd *Handle) Remove() {
	if hd == nil {
		return
	}
	h := hd.hub
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = without(h.keys, hd)
	h.pointers = without(h.pointers, hd)
	hd.hub = nil
}

func without(list []*Handle, hd *Handle) []*Handle {
	for i, other := range list {
		if other == hd {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
