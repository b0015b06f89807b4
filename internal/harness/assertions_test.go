package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/app"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/loadscreen"
	"github.com/roach88/tetra/internal/scene"
)

func ptr[T any](v T) *T { return &v }

func sampleResult() *Result {
	r := NewResult()
	r.Trace = []TraceEvent{
		{Seq: 1, Event: "UPDATE_ELEMENT_STATUS", From: "loading", To: "loading"},
		{Seq: 2, Event: "FORCE_READY", From: "loading", To: "ready_to_enter_normal_spin", Progress: 0.5},
	}
	r.Snapshot = app.Snapshot{
		Style:      ir.StyleTrain,
		State:      actor.StateReadyToEnterNormalSpin,
		Progress:   0.5,
		SoundOn:    true,
		LoadScreen: loadscreen.State{Visible: true},
		Nodes: []scene.NodeState{
			{Label: "reels", X: 960, Y: 490, Scale: 1, Visible: false},
		},
	}
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertState, State: "ready_to_enter_normal_spin"},
		{Type: AssertProgress, Progress: ptr(0.5)},
		{Type: AssertStyle, Style: "TRAIN"},
		{Type: AssertSound, Sound: ptr(true)},
		{Type: AssertVisible, Label: "reels", Visible: ptr(false)},
		{Type: AssertVisible, Label: string(loadscreen.Label), Visible: ptr(true)},
		{Type: AssertPosition, Label: "reels", X: ptr(960.0), Y: ptr(490.0000001)},
		{Type: AssertTraceContains, Event: "FORCE_READY"},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertState, State: "idle"},
		{Type: AssertPosition, Label: "reels", X: ptr(540.0), Y: ptr(490.0)},
		{Type: AssertVisible, Label: "ghost", Visible: ptr(true)},
		{Type: AssertTraceContains, Event: "SPIN"},
	})
	require.Len(t, errs, 4)

	assert.Contains(t, errs[0], "assertion 0: Assertion failed: state")
	assert.Contains(t, errs[0], "Expected: idle")
	assert.Contains(t, errs[0], "[2] FORCE_READY loading -> ready_to_enter_normal_spin (0.50)")
	assert.Contains(t, errs[1], "Actual: (960, 490)")
	assert.Contains(t, errs[2], "not in tree")
	assert.Contains(t, errs[3], "not found in trace")
}
