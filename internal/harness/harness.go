package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/app"
	"github.com/roach88/tetra/internal/assets"
	"github.com/roach88/tetra/internal/compiler"
	"github.com/roach88/tetra/internal/input"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/store"
	"github.com/roach88/tetra/internal/testutil"
)

// ErrInjectedFailure is the cause passed to assets failed by a fail step.
var ErrInjectedFailure = errors.New("injected asset failure")

// Harness drives one app through a scenario.
type Harness struct {
	app    *app.App
	store  *store.Store
	clock  *testutil.ManualClock
	assets *assets.Manual
	logger *slog.Logger
}

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger *slog.Logger
}

// WithLogger routes the app's logs to logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) { o.logger = logger }
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh in-memory journal, a manual clock starting at the
// zero time and a manual asset loader; the session ID is the scenario
// name. Step failures (an asset that is not pending, an unknown element)
// abort the run with an error. Assertion failures are reported in the
// Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := &runOptions{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(o)
	}

	doc, err := compiler.Load(scenario.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		clock:  testutil.NewManualClock(),
		assets: assets.NewManual(),
		logger: o.logger,
	}

	cfg := app.Config{
		Viewport: app.DefaultViewport,
		FreeSpin: scenario.FreeSpin,
		Language: scenario.Language,
	}
	if scenario.Viewport != nil {
		cfg.Viewport = *scenario.Viewport
	}
	h.app, err = app.New(doc,
		app.WithConfig(cfg),
		app.WithClock(h.clock),
		app.WithLoader(h.assets),
		app.WithJournal(st),
		app.WithSession(testutil.NewFixedSessionGenerator(scenario.Name)),
		app.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}
	defer h.app.Close()

	ctx := context.Background()
	if err := h.app.Start(ctx); err != nil {
		return nil, err
	}
	h.app.Settle(ctx)

	for i, step := range scenario.Steps {
		if err := h.execute(ctx, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		h.app.Settle(ctx)
	}

	result := NewResult()
	result.Snapshot = h.app.Snapshot()

	entries, err := st.ReadSession(ctx, h.app.Actor.Session(), "")
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	result.Trace = traceFromJournal(entries)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) execute(ctx context.Context, step Step) error {
	kind, err := step.Kind()
	if err != nil {
		return err
	}
	h.logger.Debug("scenario step", "kind", kind)

	switch kind {
	case StepResize:
		if err := h.app.Resize(step.Resize.Width, step.Resize.Height); err != nil {
			// Listener failures leave the viewport changed.
			h.logger.Warn("resize listeners failed", "error", err)
		}
	case StepAdvance:
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		h.advance(ctx, d)
	case StepLoad:
		if step.Load == LoadAll {
			// Completions may start further loads; keep going until none
			// are left.
			for h.assets.ResolveAll() > 0 {
				h.app.Settle(ctx)
			}
			return nil
		}
		return h.assets.Resolve(step.Load)
	case StepFail:
		return h.assets.Fail(step.Fail, ErrInjectedFailure)
	case StepClick:
		id, err := ir.ParseElementID(step.Click)
		if err != nil {
			return fmt.Errorf("click: %w", err)
		}
		return h.app.Click(id)
	case StepKey:
		h.app.Key(input.ParseKey(step.Key))
	case StepPointer:
		h.app.Pointer(*step.Pointer)
	case StepSend:
		ev, ok := actor.ParseEventType(step.Send)
		if !ok {
			return fmt.Errorf("unknown event %q", step.Send)
		}
		h.app.Send(actor.Event{Type: ev})
	}
	return nil
}

// advance moves the clock in settle-sized slices so timers armed by a
// firing timer inside the window still fire within it.
func (h *Harness) advance(ctx context.Context, d time.Duration) {
	const slice = 10 * time.Millisecond
	for d > 0 {
		step := min(slice, d)
		h.clock.Advance(step)
		h.app.Settle(ctx)
		d -= step
	}
}
