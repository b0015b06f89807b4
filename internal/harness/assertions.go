package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/loadscreen"
	"github.com/roach88/tetra/internal/scene"
)

// floatTolerance absorbs rounding in computed transforms.
const floatTolerance = 1e-6

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s (%.2f)\n", ev.Seq, ev.Event, ev.From, ev.To, ev.Progress)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns one
// message per failure, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %s", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	snap := result.Snapshot
	fail := func(expected, actual string) error {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: result.Trace}
	}

	switch a.Type {
	case AssertState:
		if string(snap.State) != a.State {
			return fail(a.State, string(snap.State))
		}
	case AssertProgress:
		if !near(snap.Progress, *a.Progress) {
			return fail(fmt.Sprintf("%g", *a.Progress), fmt.Sprintf("%g", snap.Progress))
		}
	case AssertStyle:
		want, err := ir.ParseStyle(a.Style)
		if err != nil {
			return err
		}
		if snap.Style != want {
			return fail(string(want), string(snap.Style))
		}
	case AssertSound:
		if snap.SoundOn != *a.Sound {
			return fail(fmt.Sprintf("sound on = %t", *a.Sound), fmt.Sprintf("sound on = %t", snap.SoundOn))
		}
	case AssertVisible:
		visible, ok := visibility(result, a.Label)
		if !ok {
			return fail(fmt.Sprintf("node %s", a.Label), "not in tree")
		}
		if visible != *a.Visible {
			return fail(fmt.Sprintf("%s visible = %t", a.Label, *a.Visible), fmt.Sprintf("visible = %t", visible))
		}
	case AssertPosition:
		n, ok := findNode(snap.Nodes, a.Label)
		if !ok {
			return fail(fmt.Sprintf("node %s", a.Label), "not in tree")
		}
		if !near(n.X, *a.X) || !near(n.Y, *a.Y) {
			return fail(fmt.Sprintf("%s at (%g, %g)", a.Label, *a.X, *a.Y), fmt.Sprintf("(%g, %g)", n.X, n.Y))
		}
	case AssertTraceContains:
		for _, ev := range result.Trace {
			if ev.Event == a.Event {
				return nil
			}
		}
		return fail(fmt.Sprintf("event %s in trace", a.Event), "not found in trace")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func visibility(result *Result, label string) (bool, bool) {
	if label == string(loadscreen.Label) {
		return result.Snapshot.LoadScreen.Visible, true
	}
	n, ok := findNode(result.Snapshot.Nodes, label)
	return n.Visible, ok
}

func findNode(nodes []scene.NodeState, label string) (scene.NodeState, bool) {
	for _, n := range nodes {
		if string(n.Label) == label {
			return n, true
		}
	}
	return scene.NodeState{}, false
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}
