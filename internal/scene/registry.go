package scene

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/assets"
	"github.com/roach88/tetra/internal/bus"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/loadstatus"
	"github.com/roach88/tetra/internal/resize"
	"github.com/roach88/tetra/internal/uiloop"
)

// Env is the shared context handed to every factory.
type Env struct {
	Viewport *resize.Viewport
	Resize   *resize.Dispatcher
	Actor    *actor.Actor
	Common   ir.CommonData
	Bus      *bus.Bus
	Loop     *uiloop.Loop
	Assets   assets.Loader
	Loads    *loadstatus.Reporter
	Logger   *slog.Logger
	// SettleDelay is how long dependent containers wait after their
	// attachment notification before they show.
	SettleDelay time.Duration
}

// Props is the input of a factory.
type Props struct {
	Config *ir.LayoutNode
	Env    *Env
}

// Factory builds one element. It must not attach children; the builder
// does that.
type Factory func(Props) (Element, error)

// Registry maps element types to factories.
//
// Registration happens once at startup; after Seal the registry is
// read-only and safe for concurrent lookups.
type Registry struct {
	mu        sync.RWMutex
	factories map[ir.ElementType]Factory
	sealed    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[ir.ElementType]Factory)}
}

// Register installs f for t. Unknown types, duplicates and registration
// after Seal are rejected.
func (r *Registry) Register(t ir.ElementType, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return &Error{Code: ErrCodeRegistrySealed, Type: t, Message: "registry is sealed"}
	}
	if !t.Known() {
		return &Error{Code: ErrCodeUnknownElementType, Type: t, Message: "cannot register unknown element type"}
	}
	if _, ok := r.factories[t]; ok {
		return &Error{Code: ErrCodeDuplicateFactory, Type: t, Message: "factory already registered"}
	}
	if f == nil {
		return fmt.Errorf("register %s: nil factory", t)
	}
	r.factories[t] = f
	return nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Lookup returns the factory for t.
func (r *Registry) Lookup(t ir.ElementType) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[t]
	if !ok {
		return nil, &Error{Code: ErrCodeUnknownElementType, Type: t, Message: "Unknown element type"}
	}
	return f, nil
}

// Types returns the registered types in ir.ElementTypes order.
func (r *Registry) Types() []ir.ElementType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []ir.ElementType
	for _, t := range ir.ElementTypes {
		if _, ok := r.factories[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
