// Package app wires the layout engine into one runnable game view: the UI
// loop, the actor, the viewport, the scene and the load screen.
//
// Scene state belongs to the UI loop. Headless hosts call Run and reach the
// scene through Do; the scenario harness drives the loop itself with
// Settle and calls the scene methods directly.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/assets"
	"github.com/roach88/tetra/internal/bus"
	"github.com/roach88/tetra/internal/elements"
	"github.com/roach88/tetra/internal/input"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/loadscreen"
	"github.com/roach88/tetra/internal/loadstatus"
	"github.com/roach88/tetra/internal/resize"
	"github.com/roach88/tetra/internal/scene"
	"github.com/roach88/tetra/internal/style"
	"github.com/roach88/tetra/internal/timing"
	"github.com/roach88/tetra/internal/uiloop"
)

// DefaultViewport is the initial viewport when none is configured.
var DefaultViewport = ir.Size{Width: 1920, Height: 1080}

// ErrNotStarted is returned by scene operations before Start.
var ErrNotStarted = errors.New("app not started")

// Config holds the tunables of an App.
type Config struct {
	Viewport       ir.Size
	FreeSpin       bool
	Language       string
	SettleDelay    time.Duration
	AutoEnterDelay time.Duration
	LoadTimeout    time.Duration
}

// Option configures an App.
type Option func(*options)

type options struct {
	cfg     Config
	clock   timing.Clock
	loader  assets.Loader
	source  assets.Source
	journal actor.Journal
	session actor.SessionGenerator
	logger  *slog.Logger
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithViewport sets the initial viewport.
func WithViewport(size ir.Size) Option {
	return func(o *options) { o.cfg.Viewport = size }
}

// WithFreeSpin starts the game in free-spin mode.
func WithFreeSpin(on bool) Option {
	return func(o *options) { o.cfg.FreeSpin = on }
}

// WithLanguage sets the preferred language of on-screen strings.
func WithLanguage(lang string) Option {
	return func(o *options) { o.cfg.Language = lang }
}

// WithClock sets the clock behind every timer. Defaults to timing.Real.
func WithClock(c timing.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithLoader sets the asset loader. Without one, textures are skipped and
// count as loaded at once.
func WithLoader(l assets.Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithSource loads assets from src on background goroutines, completing
// on the UI loop. Ignored when WithLoader is also given.
func WithSource(src assets.Source) Option {
	return func(o *options) { o.source = src }
}

// WithJournal records every accepted actor event.
func WithJournal(j actor.Journal) Option {
	return func(o *options) { o.journal = j }
}

// WithSession sets the actor's session generator.
func WithSession(gen actor.SessionGenerator) Option {
	return func(o *options) { o.session = gen }
}

// WithLogger sets the logger of every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// App is one game view.
type App struct {
	doc    *ir.LayoutDocument
	cfg    Config
	logger *slog.Logger

	Loop     *uiloop.Loop
	Actor    *actor.Actor
	Viewport *resize.Viewport
	Bus      *bus.Bus
	Input    *input.Hub

	env     *scene.Env
	builder *scene.Builder
	tree    *scene.Tree
	screen  *loadscreen.Screen
	// cancel stops in-flight asset fetches.
	cancel  context.CancelFunc

	closeOnce sync.Once
}

// New wires an App for doc. Nothing is built until Start.
func New(doc *ir.LayoutDocument, opts ...Option) (*App, error) {
	o := &options{cfg: Config{Viewport: DefaultViewport}, clock: timing.Real{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if !o.cfg.Viewport.Valid() {
		o.cfg.Viewport = DefaultViewport
	}

	hash, err := ir.DocumentHash(doc)
	if err != nil {
		return nil, fmt.Errorf("new app: %w", err)
	}

	loop := uiloop.New(uiloop.WithClock(o.clock), uiloop.WithLogger(o.logger))
	actorOpts := []actor.Option{
		actor.WithDispatch(loop.Post),
		actor.WithDocumentHash(hash),
		actor.WithFreeSpin(o.cfg.FreeSpin),
		actor.WithLogger(o.logger),
	}
	if o.journal != nil {
		actorOpts = append(actorOpts, actor.WithJournal(o.journal))
	}
	if o.session != nil {
		actorOpts = append(actorOpts, actor.WithSession(o.session))
	}
	a := actor.New(actorOpts...)

	fetchCtx, cancel := context.WithCancel(context.Background())
	if o.loader == nil && o.source != nil {
		o.loader = assets.NewAsync(fetchCtx, o.source, loop.Post, o.logger)
	}

	disp := resize.NewDispatcher(resize.WithLogger(o.logger))
	b := bus.New(o.logger)
	env := &scene.Env{
		Viewport:    resize.NewViewport(o.cfg.Viewport, disp),
		Resize:      disp,
		Actor:       a,
		Common:      doc.Common,
		Bus:         b,
		Loop:        loop,
		Assets:      o.loader,
		Loads:       loadstatus.NewReporter(a, o.logger),
		Logger:      o.logger,
		SettleDelay: o.cfg.SettleDelay,
	}

	reg := scene.NewRegistry()
	if err := elements.Register(reg); err != nil {
		cancel()
		return nil, fmt.Errorf("new app: %w", err)
	}

	app := &App{
		doc:      doc,
		cfg:      o.cfg,
		logger:   o.logger,
		Loop:     loop,
		Actor:    a,
		Viewport: env.Viewport,
		Bus:      b,
		Input:    input.NewHub(),
		env:      env,
		builder:  scene.NewBuilder(reg, env),
		cancel:   cancel,
	}

	var screenOpts []loadscreen.Option
	if o.cfg.AutoEnterDelay > 0 {
		screenOpts = append(screenOpts, loadscreen.WithAutoEnterDelay(o.cfg.AutoEnterDelay))
	}
	if o.cfg.LoadTimeout > 0 {
		screenOpts = append(screenOpts, loadscreen.WithLoadTimeout(o.cfg.LoadTimeout))
	}
	if o.cfg.Language != "" {
		screenOpts = append(screenOpts, loadscreen.WithLanguage(o.cfg.Language))
	}
	app.screen = loadscreen.New(env, app.Input, screenOpts...)

	return app, nil
}

// Start builds the scene and shows the load screen. Must run on the UI
// loop (or before Run, in a harness).
func (a *App) Start(ctx context.Context) error {
	if a.tree != nil {
		return errors.New("app already started")
	}
	tree, err := a.builder.Build(ctx, a.doc)
	if err != nil {
		return fmt.Errorf("start: %w", err)
	}
	a.tree = tree
	a.screen.Start()
	a.logger.Info("app started",
		"session", a.Actor.Session(),
		"nodes", tree.Len(),
		"viewport", fmt.Sprintf("%gx%g", a.Viewport.Size().Width, a.Viewport.Size().Height),
	)
	return nil
}

// Run drives the UI loop and the actor until ctx is cancelled or Close is
// called. Start must be issued through Do or before Run.
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	var actorErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		actorErr = a.Actor.Run(ctx)
	}()

	loopErr := a.Loop.Run(ctx)
	a.Actor.Stop()
	wg.Wait()

	return errors.Join(ignoreCanceled(loopErr), ignoreCanceled(actorErr))
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Do runs fn on the UI loop while Run is active and waits for it.
func (a *App) Do(ctx context.Context, fn func() error) error {
	return a.Loop.Call(ctx, fn)
}

// Settle runs the loop and the actor synchronously until neither has work
// left. Only for hosts that do not call Run. Returns the number of tasks
// and events processed.
func (a *App) Settle(ctx context.Context) int {
	total := 0
	for {
		n := a.Loop.RunPending() + a.Actor.Drain(ctx)
		if n == 0 {
			return total
		}
		total += n
	}
}

// Tree returns the built scene, nil before Start.
func (a *App) Tree() *scene.Tree { return a.tree }

// LoadScreen returns the load screen.
func (a *App) LoadScreen() *loadscreen.Screen { return a.screen }

// Document returns the layout document.
func (a *App) Document() *ir.LayoutDocument { return a.doc }

// Resize changes the viewport and broadcasts to every listener.
func (a *App) Resize(width, height float64) error {
	return a.Viewport.Resize(width, height)
}

// Click clicks the element labelled id.
func (a *App) Click(id ir.ElementID) error {
	if a.tree == nil {
		return ErrNotStarted
	}
	elem, ok := a.tree.Lookup(id)
	if !ok {
		return fmt.Errorf("click %s: no such element", id)
	}
	c, ok := elem.(elements.Clicker)
	if !ok {
		return fmt.Errorf("click %s: element is not clickable", id)
	}
	c.Click()
	return nil
}

// Key delivers a key press. Returns the number of handlers that saw it.
func (a *App) Key(k input.Key) int {
	return a.Input.DispatchKey(k)
}

// Pointer delivers a pointer press. Returns the number of handlers that saw
// it.
func (a *App) Pointer(p input.Pointer) int {
	return a.Input.DispatchPointer(p)
}

// Send forwards ev to the actor.
func (a *App) Send(ev actor.Event) bool {
	return a.Actor.Send(ev)
}

// Snapshot is a serialisable view of the whole app.
type Snapshot struct {
	Session    string            `json:"session" yaml:"session"`
	Viewport   ir.Size           `json:"viewport" yaml:"viewport"`
	Style      ir.Style          `json:"style" yaml:"style"`
	State      actor.State       `json:"state" yaml:"state"`
	Progress   float64           `json:"progress" yaml:"progress"`
	FreeSpin   bool              `json:"free_spin" yaml:"free_spin"`
	SoundOn    bool              `json:"sound_on" yaml:"sound_on"`
	LoadScreen loadscreen.State  `json:"load_screen" yaml:"load_screen"`
	Nodes      []scene.NodeState `json:"nodes" yaml:"nodes"`
}

// Snapshot returns the current view. Must run on the UI loop.
func (a *App) Snapshot() Snapshot {
	vp := a.Viewport.Size()
	actorSnap := a.Actor.Snapshot()
	s := Snapshot{
		Session:    a.Actor.Session(),
		Viewport:   vp,
		State:      actorSnap.State,
		Progress:   actorSnap.Progress(),
		FreeSpin:   actorSnap.Context.IsFreeSpin,
		SoundOn:    actorSnap.Context.SoundOn,
		LoadScreen: a.screen.State(),
	}
	if c, err := style.Classify(vp, a.doc.Common); err == nil {
		s.Style = c.Style
	}
	if a.tree != nil {
		s.Nodes = a.tree.Dump()
	}
	return s
}

// Close tears the scene down and stops the loop and the actor. Call it on
// the UI loop or after Run has returned. Idempotent.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		a.cancel()
		a.screen.Close()
		if a.tree != nil {
			a.tree.Close()
		}
		a.Actor.Stop()
		a.Loop.Close()
	})
}
