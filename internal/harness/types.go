package harness

import (
	"github.com/roach88/tetra/internal/app"
	"github.com/roach88/tetra/internal/ir"
)

// TraceEvent is one applied actor event, as read back from the journal.
type TraceEvent struct {
	Seq      int64   `json:"seq" yaml:"seq"`
	Event    string  `json:"event" yaml:"event"`
	From     string  `json:"from" yaml:"from"`
	To       string  `json:"to" yaml:"to"`
	Progress float64 `json:"progress" yaml:"progress"`
}

func traceFromJournal(entries []ir.JournalEntry) []TraceEvent {
	out := make([]TraceEvent, len(entries))
	for i, e := range entries {
		out[i] = TraceEvent{Seq: e.Seq, Event: e.Event, From: e.From, To: e.To, Progress: e.Progress}
	}
	return out
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass" yaml:"pass"`

	// Trace holds the applied actor events in order.
	Trace []TraceEvent `json:"trace" yaml:"trace"`

	// Errors holds one message per failed assertion.
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Snapshot is the app state after the last step.
	Snapshot app.Snapshot `json:"snapshot" yaml:"snapshot"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{Pass: true, Trace: []TraceEvent{}, Errors: []string{}}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
