// Package loadscreen implements the splash shown while the scene loads.
//
// The screen follows the actor's load progress. When every element has
// loaded (or the load timeout forces it) it swaps the progress bar for a
// click tip and waits for the player: a pointer press anywhere, Space or
// Enter, or the auto-enter timer. Entering sends the matching INIT event
// and tears the screen down.
//
// Every method must run on the UI loop.
package loadscreen

import (
	"log/slog"
	"time"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/assets"
	"github.com/roach88/tetra/internal/input"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/loadstatus"
	"github.com/roach88/tetra/internal/locale"
	"github.com/roach88/tetra/internal/resize"
	"github.com/roach88/tetra/internal/scene"
	"github.com/roach88/tetra/internal/style"
	"github.com/roach88/tetra/internal/timing"
	"github.com/roach88/tetra/internal/visibility"
)

const (
	// AutoEnterDelay is how long the ready screen waits before entering
	// on its own.
	AutoEnterDelay = 5 * time.Second
	// LoadTimeout is how long loading may take before the screen forces
	// the actor ready.
	LoadTimeout = 9 * time.Second
	// ZIndex keeps the screen above the scene.
	ZIndex = 9999
	// Label is the node label of the screen.
	Label ir.ElementID = "LoadScreen"
)

// Screen is the load screen.
type Screen struct {
	env     *scene.Env
	hub     *input.Hub
	catalog *locale.Catalog
	sched   visibility.Scheduler
	logger  *slog.Logger

	autoEnter   time.Duration
	loadTimeout time.Duration
	language    string

	node    *scene.Node
	tracker loadstatus.Tracker

	tip       string
	ready     bool
	entered   bool
	torn      bool
	orient    ir.Orientation
	sub       *actor.Subscription
	resizeSub *resize.Subscription
	timeout   timing.Timer
	autoTimer timing.Timer
	keyHandle *input.Handle
	ptrHandle *input.Handle
	onEntered []func(actor.EventType)
}

// Option configures a Screen.
type Option func(*Screen)

// WithAutoEnterDelay overrides AutoEnterDelay.
func WithAutoEnterDelay(d time.Duration) Option {
	return func(s *Screen) { s.autoEnter = d }
}

// WithLoadTimeout overrides LoadTimeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Screen) { s.loadTimeout = d }
}

// WithLanguage sets the preferred language of the click tip, as a BCP 47
// tag or an Accept-Language value. Defaults to the layout locale.
func WithLanguage(lang string) Option {
	return func(s *Screen) { s.language = lang }
}

// New creates a load screen. Nothing happens until Start.
func New(env *scene.Env, hub *input.Hub, opts ...Option) *Screen {
	s := &Screen{
		env:         env,
		hub:         hub,
		sched:       env.Loop,
		logger:      env.Logger,
		autoEnter:   AutoEnterDelay,
		loadTimeout: LoadTimeout,
		language:    env.Common.Locale,
		node:        scene.NewNode(&ir.LayoutNode{Type: ir.TypeRoot, Label: Label, ZIndex: ZIndex}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.catalog = locale.NewCatalog(env.Common.Strings, env.Common.Locale)
	return s
}

// Start shows the screen, subscribes to the actor and resizes and arms the
// load timeout.
func (s *Screen) Start() {
	s.layout()
	s.resizeSub = s.env.Resize.Subscribe(resize.ListenerFunc(s.onResize))
	s.sub = s.env.Actor.Subscribe(s.onSnapshot)
	s.timeout = s.sched.AfterFunc(s.loadTimeout, s.onTimeout)
	s.onSnapshot(s.env.Actor.Snapshot())
}

// OnEntered registers fn to run once the player enters, with the event
// that was sent.
func (s *Screen) OnEntered(fn func(actor.EventType)) {
	s.onEntered = append(s.onEntered, fn)
}

// Node returns the screen's node.
func (s *Screen) Node() *scene.Node { return s.node }

// Ready reports whether the screen is waiting for the player.
func (s *Screen) Ready() bool { return s.ready }

// Entered reports whether the player has entered.
func (s *Screen) Entered() bool { return s.entered }

// Progress returns the last observed load progress.
func (s *Screen) Progress() float64 { return s.tracker.Progress() }

// Enter leaves the load screen. It only acts when the actor is in one of
// the ready states and returns whether it did. Later calls are no-ops.
func (s *Screen) Enter() bool {
	if s.entered || s.torn {
		return false
	}
	var ev actor.EventType
	switch s.env.Actor.Snapshot().State {
	case actor.StateReadyToEnterNormalSpin:
		ev = actor.EventInitToNormalSpinIdle
	case actor.StateReadyToEnterFreeSpin:
		ev = actor.EventInitToFreeSpinIdle
	default:
		s.logger.Debug("load screen enter ignored: not ready", "state", s.env.Actor.Snapshot().State)
		return false
	}

	s.entered = true
	s.env.Actor.Send(actor.Event{Type: ev})
	s.logger.Info("load screen entered", "event", ev)
	s.Close()
	for _, fn := range s.onEntered {
		fn(ev)
	}
	return true
}

// Close tears the screen down without entering. Idempotent.
func (s *Screen) Close() {
	if s.torn {
		return
	}
	s.torn = true
	s.node.Visible = false
	s.sub.Dispose()
	s.resizeSub.Dispose()
	if s.timeout != nil {
		s.timeout.Stop()
	}
	if s.autoTimer != nil {
		s.autoTimer.Stop()
	}
	s.keyHandle.Remove()
	s.ptrHandle.Remove()
}

// State is a serialisable view of the screen.
type State struct {
	Visible    bool    `json:"visible" yaml:"visible"`
	Progress   float64 `json:"progress" yaml:"progress"`
	BarVisible bool    `json:"bar_visible" yaml:"bar_visible"`
	Tip        string  `json:"tip,omitempty" yaml:"tip,omitempty"`
	Texture    string  `json:"texture,omitempty" yaml:"texture,omitempty"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	Scale      float64 `json:"scale" yaml:"scale"`
	Entered    bool    `json:"entered" yaml:"entered"`
}

// State returns the current view of the screen.
func (s *Screen) State() State {
	return State{
		Visible:    s.node.Visible,
		Progress:   s.tracker.Progress(),
		BarVisible: !s.ready && !s.torn,
		Tip:        s.tip,
		Texture:    s.node.Texture,
		X:          s.node.X,
		Y:          s.node.Y,
		Scale:      s.node.Scale,
		Entered:    s.entered,
	}
}

func (s *Screen) onSnapshot(snap actor.Snapshot) {
	if s.torn {
		return
	}
	_, complete := s.tracker.Observe(snap.Context.ElementLoadStatus)
	if complete || snap.State.Ready() {
		s.becomeReady()
	}
}

func (s *Screen) onTimeout() {
	if s.ready || s.torn {
		return
	}
	s.logger.Warn("loading timed out, forcing ready",
		"after", s.loadTimeout,
		"pending", s.env.Actor.Snapshot().Context.ElementLoadStatus.Pending(),
	)
	s.env.Actor.Send(actor.Event{Type: actor.EventForceReady})
	s.becomeReady()
}

// becomeReady shows the click tip and arms the enter triggers. Once only.
func (s *Screen) becomeReady() {
	if s.ready {
		return
	}
	s.ready = true
	if s.timeout != nil {
		s.timeout.Stop()
	}
	s.tip = s.catalog.Lookup(s.language, locale.KeyClickToStart)

	s.keyHandle = s.hub.OnKey(func(k input.Key) {
		if k == input.KeySpace || k == input.KeyEnter {
			s.Enter()
		}
	})
	s.ptrHandle = s.hub.OnPointer(func(input.Pointer) { s.Enter() })
	s.autoTimer = s.sched.AfterFunc(s.autoEnter, func() {
		if !s.Enter() && !s.torn {
			s.logger.Warn("auto-enter skipped: actor not ready", "state", s.env.Actor.Snapshot().State)
		}
	})
	s.logger.Info("load screen ready", "progress", s.tracker.Progress())
}

func (s *Screen) onResize() error {
	if s.torn {
		return nil
	}
	s.layout()
	return nil
}

// layout picks the texture for the current orientation and positions it.
func (s *Screen) layout() {
	vp := s.env.Viewport.Size()
	orient := ir.OrientationLandscape
	tex := s.env.Common.LoadingTexture.Landscape
	if style.IsPortrait(vp, s.env.Common) {
		orient = ir.OrientationPortrait
		tex = s.env.Common.LoadingTexture.Portrait
	}
	if orient != s.orient {
		s.orient = orient
		s.loadTexture(tex)
	}

	p, err := style.ResolveTable(vp, s.env.Common, Label, s.env.Common.LoadScreen)
	if err != nil {
		s.logger.Warn("load screen placement failed, centring", "error", err)
		s.node.Apply(style.Transform{X: vp.Width / 2, Y: vp.Height / 2, Scale: 1})
		return
	}
	s.node.Apply(p.Transform(vp))
}

func (s *Screen) loadTexture(name string) {
	if name == "" || s.env.Assets == nil {
		return
	}
	s.env.Assets.Load(name, func(_ *assets.Resource, err error) {
		if s.torn {
			return
		}
		if err != nil {
			s.logger.Warn("load screen texture failed", "texture", name, "error", err)
			return
		}
		// A resize may have switched orientation while this was loading.
		if name == s.textureFor(s.orient) {
			s.node.Texture = name
		}
	})
}

func (s *Screen) textureFor(o ir.Orientation) string {
	if o == ir.OrientationPortrait {
		return s.env.Common.LoadingTexture.Portrait
	}
	return s.env.Common.LoadingTexture.Landscape
}
