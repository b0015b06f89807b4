package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Event    string // optional - filter to one event type
}

// TraceStats holds summary statistics for one session.
type TraceStats struct {
	TotalEvents  int            `json:"total_events"`
	StateChanges int            `json:"state_changes"`
	ByEvent      map[string]int `json:"by_event"`
	FinalState   string         `json:"final_state,omitempty"`
	Progress     float64        `json:"progress"`
}

// TraceResult holds the journal of one session.
type TraceResult struct {
	Session  string            `json:"session"`
	Hash     string            `json:"document_hash,omitempty"`
	Timeline []ir.JournalEntry `json:"timeline"`
	Stats    TraceStats        `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled actor events",
		Long: `Read the actor journal written by 'tetra serve --db'.

Without --session, lists every session with its layout hash and entry
count. With --session, prints that session's events in order: each
transition, the load progress after it, and summary statistics.

Examples:
  tetra trace --db ./tetra.db
  tetra trace --db ./tetra.db --session 0190f3c2-...
  tetra trace --db ./tetra.db --session 0190f3c2-... --event TOGGLE_SOUND --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session to show")
	cmd.Flags().StringVar(&opts.Event, "event", "", "filter to one event type")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.Database); err != nil {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return commandError(formatter, ErrCodeJournal, "failed to open database", err)
	}
	defer st.Close()

	if opts.Session == "" {
		sessions, err := st.Sessions(ctx)
		if err != nil {
			return commandError(formatter, ErrCodeJournal, "failed to list sessions", err)
		}
		return outputSessions(formatter, sessions)
	}

	entries, err := st.ReadSession(ctx, opts.Session, opts.Event)
	if err != nil {
		return commandError(formatter, ErrCodeJournal, "failed to read session", err)
	}

	result := TraceResult{Session: opts.Session, Timeline: entries, Stats: summarize(entries)}
	if len(entries) > 0 {
		result.Hash = entries[0].DocumentHash
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	outputTraceText(formatter, result)
	return nil
}

func summarize(entries []ir.JournalEntry) TraceStats {
	stats := TraceStats{TotalEvents: len(entries), ByEvent: map[string]int{}}
	for _, e := range entries {
		stats.ByEvent[e.Event]++
		if e.From != e.To {
			stats.StateChanges++
		}
	}
	if n := len(entries); n > 0 {
		stats.FinalState = entries[n-1].To
		stats.Progress = entries[n-1].Progress
	}
	return stats
}

func outputSessions(f *OutputFormatter, sessions []store.SessionInfo) error {
	if f.JSON() {
		return f.Success(sessions)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(f.Writer, "No sessions recorded.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintf(f.Writer, "%s  %d event(s)  layout %s\n", s.ID, s.Entries, shortHash(s.DocumentHash))
	}
	return nil
}

func outputTraceText(f *OutputFormatter, r TraceResult) {
	w := f.Writer
	if len(r.Timeline) == 0 {
		fmt.Fprintf(w, "No events found for session: %s\n", r.Session)
		return
	}

	fmt.Fprintf(w, "Session %s (layout %s)\n\n", r.Session, shortHash(r.Hash))
	for _, e := range r.Timeline {
		transition := e.To
		if e.From != e.To {
			transition = e.From + " -> " + e.To
		}
		fmt.Fprintf(w, "[%d] %-26s %-50s %3.0f%%\n", e.Seq, e.Event, transition, e.Progress*100)
		if f.Verbose && len(e.Payload) > 0 {
			fmt.Fprintf(w, "     %s\n", formatPayload(e.Payload))
		}
	}

	fmt.Fprintf(w, "\n%d event(s), %d state change(s), final state %s\n",
		r.Stats.TotalEvents, r.Stats.StateChanges, r.Stats.FinalState)
}

func formatPayload(m ir.LoadStatusMap) string {
	labels := make([]string, 0, len(m))
	for id := range m {
		labels = append(labels, string(id))
	}
	sort.Strings(labels)

	parts := make([]string, len(labels))
	for i, l := range labels {
		mark := "pending"
		if m[ir.ElementID(l)].IsLoaded {
			mark = "loaded"
		}
		parts[i] = l + "=" + mark
	}
	return strings.Join(parts, " ")
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
