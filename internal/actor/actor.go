package actor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/queue"
	"github.com/roach88/tetra/internal/timing"
)

// Journal records accepted events. Implemented by store.Store.
type Journal interface {
	Record(ctx context.Context, e ir.JournalEntry) error
}

// Actor is the single-writer slot-machine event loop.
type Actor struct {
	queue    *queue.Queue[Event]
	seq      *timing.Seq
	session  string
	docHash  string
	journal  Journal
	dispatch func(func()) bool
	logger   *slog.Logger

	mu       sync.RWMutex
	snapshot Snapshot
	subs     []*Subscription
}

// Subscription is a handle to one snapshot listener.
type Subscription struct {
	actor    *Actor
	fn       func(Snapshot)
	disposed atomic.Bool
}

// Option configures an Actor.
type Option func(*Actor)

// WithJournal records every accepted event to j.
func WithJournal(j Journal) Option {
	return func(a *Actor) { a.journal = j }
}

// WithSession sets the session generator. Defaults to UUIDv7Generator.
func WithSession(gen SessionGenerator) Option {
	return func(a *Actor) { a.session = gen.Generate() }
}

// WithDocumentHash stamps journal entries with the layout's hash.
func WithDocumentHash(hash string) Option {
	return func(a *Actor) { a.docHash = hash }
}

// WithDispatch sets how subscriber callbacks are run. The app passes the UI
// loop's Post. Defaults to calling the subscriber inline.
func WithDispatch(post func(func()) bool) Option {
	return func(a *Actor) { a.dispatch = post }
}

// WithFreeSpin starts the actor in the free-spin mode, so loading ends in
// the free-spin ready state.
func WithFreeSpin(on bool) Option {
	return func(a *Actor) { a.snapshot.Context.IsFreeSpin = on }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Actor) { a.logger = logger }
}

// WithSeq resumes sequence numbering, e.g. after the last journalled entry.
func WithSeq(seq *timing.Seq) Option {
	return func(a *Actor) { a.seq = seq }
}

// New creates an actor in StateLoading with an empty load-status map and
// sound on.
func New(opts ...Option) *Actor {
	a := &Actor{
		queue: queue.New[Event](),
		seq:   &timing.Seq{},
		dispatch: func(fn func()) bool {
			fn()
			return true
		},
		logger: slog.Default(),
		snapshot: Snapshot{
			State: StateLoading,
			Context: Context{
				ElementLoadStatus: ir.LoadStatusMap{},
				SoundOn:           true,
			},
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.session == "" {
		a.session = UUIDv7Generator{}.Generate()
	}
	return a
}

// Session returns the session ID of this actor.
func (a *Actor) Session() string {
	return a.session
}

// Send submits an event for processing.
// Thread-safe: may be called from any goroutine.
//
// Returns false if the actor has been stopped.
func (a *Actor) Send(ev Event) bool {
	return a.queue.Enqueue(ev)
}

// Snapshot returns the current snapshot.
func (a *Actor) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Subscribe registers fn for every snapshot produced by an accepted event.
func (a *Actor) Subscribe(fn func(Snapshot)) *Subscription {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := &Subscription{actor: a, fn: fn}
	a.subs = append(a.subs, s)
	return s
}

// Dispose removes the subscription. A notification already dispatched but
// not yet run is dropped. Safe to call more than once.
func (s *Subscription) Dispose() {
	if s == nil || s.disposed.Swap(true) {
		return
	}
	a := s.actor
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, other := range a.subs {
		if other == s {
			a.subs = append(a.subs[:i], a.subs[i+1:]...)
			return
		}
	}
}

// Run is the single-writer event loop.
// Blocks until ctx is cancelled or Stop is called.
//
// On a processing failure the error is logged with the event and the loop
// continues.
func (a *Actor) Run(ctx context.Context) error {
	a.logger.Info("actor starting", "session", a.session)

	for {
		ev, ok := a.queue.TryDequeue()
		if ok {
			if err := a.apply(ctx, ev); err != nil {
				a.logger.Error("event processing failed", "event", ev.Type, "error", err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			a.logger.Info("actor stopping: context cancelled")
			a.queue.Close()
			return ctx.Err()

		case <-a.queue.Wait():
			if a.queue.Closed() && a.queue.Len() == 0 {
				a.logger.Info("actor stopping: queue closed")
				return nil
			}
		}
	}
}

// Drain synchronously processes every queued event, including events sent
// while draining. Returns the number processed. Must not be used while Run
// is active.
func (a *Actor) Drain(ctx context.Context) int {
	n := 0
	for {
		ev, ok := a.queue.TryDequeue()
		if !ok {
			return n
		}
		if err := a.apply(ctx, ev); err != nil {
			a.logger.Error("event processing failed", "event", ev.Type, "error", err)
		}
		n++
	}
}

// Pending returns the number of queued events.
func (a *Actor) Pending() int {
	return a.queue.Len()
}

// Stop closes the event queue; Run returns once it is empty.
func (a *Actor) Stop() {
	a.queue.Close()
}

// apply runs one event through the machine.
// Called only from Run or Drain - single-writer guarantee.
func (a *Actor) apply(ctx context.Context, ev Event) error {
	prev := a.Snapshot()

	state, next, accepted := transition(prev.State, prev.Context, ev)
	if !accepted {
		a.logger.Debug("event ignored", "event", ev.Type, "state", prev.State)
		return nil
	}

	snap := Snapshot{State: state, Context: next, Seq: a.seq.Next()}

	a.mu.Lock()
	a.snapshot = snap
	subs := append([]*Subscription(nil), a.subs...)
	a.mu.Unlock()

	if state != prev.State {
		a.logger.Info("state changed", "from", prev.State, "to", state, "event", ev.Type)
	} else {
		a.logger.Debug("event applied", "event", ev.Type, "state", state, "seq", snap.Seq)
	}

	var journalErr error
	if a.journal != nil {
		entry := ir.JournalEntry{
			Session:       a.session,
			Seq:           snap.Seq,
			Event:         string(ev.Type),
			From:          string(prev.State),
			To:            string(state),
			Payload:       ev.Status,
			Progress:      snap.Progress(),
			DocumentHash:  a.docHash,
			EngineVersion: ir.EngineVersion,
			IRVersion:     ir.IRVersion,
		}
		if err := a.journal.Record(ctx, entry); err != nil {
			journalErr = fmt.Errorf("journal seq %d: %w", snap.Seq, err)
		}
	}

	for _, s := range subs {
		a.dispatch(func() {
			if s.disposed.Load() {
				return
			}
			s.fn(snap)
		})
	}

	return journalErr
}
