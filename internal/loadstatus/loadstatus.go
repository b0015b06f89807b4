// Package loadstatus aggregates per-element load completions into the
// actor's shared load-status map and tracks overall progress.
package loadstatus

import (
	"log/slog"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/ir"
)

// Machine is the part of the actor the aggregator needs.
type Machine interface {
	Snapshot() actor.Snapshot
	Send(actor.Event) bool
}

// Reporter writes load completions to the actor.
//
// Completions reported before Seed are held back and folded into the seed
// event: a partial map that happens to be fully loaded would otherwise end
// loading early.
type Reporter struct {
	machine Machine
	logger  *slog.Logger
	seeded  bool
	early   ir.LoadStatusMap
}

// NewReporter creates a reporter for m. A nil logger means slog.Default().
func NewReporter(m Machine, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{machine: m, logger: logger}
}

// MarkLoaded records that id finished loading.
//
// It reads the current map from the actor snapshot, adds {id: loaded} and
// sends the result as UPDATE_ELEMENT_STATUS. The actor merges rather than
// replaces, so a snapshot that is stale by the time the event is applied
// cannot drop another element's completion.
func (r *Reporter) MarkLoaded(id ir.ElementID) bool {
	if !r.seeded {
		if r.early == nil {
			r.early = ir.LoadStatusMap{}
		}
		r.early[id] = ir.ElementLoadStatus{Label: id, IsLoaded: true}
		return true
	}
	current := r.machine.Snapshot().Context.ElementLoadStatus
	if current[id].IsLoaded {
		r.logger.Debug("element already loaded", "label", id)
	}
	ok := r.machine.Send(actor.UpdateElementStatus(current.WithLoaded(id)))
	if !ok {
		r.logger.Warn("load completion dropped: actor stopped", "label", id)
	}
	return ok
}

// Seed sends the initial load records for a freshly built tree in one
// event. Entries already loaded in the actor stay loaded.
func (r *Reporter) Seed(m ir.LoadStatusMap) bool {
	r.seeded = true
	if len(r.early) > 0 {
		m = m.Merge(r.early)
		r.early = nil
	}
	return r.machine.Send(actor.UpdateElementStatus(m))
}

// Tracker follows progress across snapshots and detects the moment loading
// completes.
//
// Not safe for concurrent use; owned by one consumer on the UI loop.
type Tracker struct {
	progress float64
	done     bool
}

// Observe updates the tracker with m. It returns the current progress and
// true exactly once: on the first call where every registered element is
// loaded.
func (t *Tracker) Observe(m ir.LoadStatusMap) (float64, bool) {
	t.progress = m.Progress()
	if t.done || !m.AllLoaded() {
		return t.progress, false
	}
	t.done = true
	return t.progress, true
}

// Progress returns the last observed progress.
func (t *Tracker) Progress() float64 { return t.progress }
