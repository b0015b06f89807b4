package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tetra/internal/actor"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{"enter_and_rotate", "load_timeout", "free_spin_pointer", "failed_asset"} {
		t.Run(name, func(t *testing.T) {
			result, err := Run(loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Equal(t, name, result.Snapshot.Session)
		})
	}
}

func TestRun_LoadTimeoutTrace(t *testing.T) {
	result, err := Run(loadScenario(t, "load_timeout"))
	require.NoError(t, err)

	var events []string
	for _, ev := range result.Trace {
		events = append(events, ev.Event)
	}
	assert.Equal(t, []string{
		string(actor.EventUpdateElementStatus),
		string(actor.EventUpdateElementStatus),
		string(actor.EventForceReady),
		string(actor.EventInitToNormalSpinIdle),
	}, events)
	assert.Equal(t, string(actor.StateReadyToEnterNormalSpin), result.Trace[2].To)
}

func TestRun_FailedAssetStallsUntilTimeout(t *testing.T) {
	s := loadScenario(t, "failed_asset")
	s.Steps = s.Steps[:3]
	s.Assertions = []Assertion{
		{Type: AssertState, State: string(actor.StateLoading)},
		{Type: AssertProgress, Progress: ptr(0.8)},
	}

	before, err := Run(s)
	require.NoError(t, err)
	assert.True(t, before.Pass, "errors: %v", before.Errors)
	for _, ev := range before.Trace {
		assert.NotEqual(t, string(actor.EventForceReady), ev.Event)
	}

	after, err := Run(loadScenario(t, "failed_asset"))
	require.NoError(t, err)
	assert.True(t, after.Pass, "errors: %v", after.Errors)

	last := after.Trace[len(after.Trace)-1]
	assert.Equal(t, string(actor.EventForceReady), last.Event)
	assert.Equal(t, string(actor.StateReadyToEnterNormalSpin), last.To)
	assert.Less(t, last.Progress, 1.0)
}

func TestRun_FailingAssertionsAreReported(t *testing.T) {
	s := loadScenario(t, "load_timeout")
	s.Steps = nil

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5, "without steps the app is still loading")
	assert.Contains(t, result.Errors[0], "Expected: idle")
	assert.Contains(t, result.Errors[0], "Actual: loading")
}

func TestRun_StepErrorsAbort(t *testing.T) {
	s := loadScenario(t, "enter_and_rotate")
	s.Steps = []Step{{Load: "not_requested.png"}}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 0")
	assert.Contains(t, err.Error(), `no pending load for asset "not_requested.png"`)

	s.Steps = []Step{{Click: "nobody"}}
	_, err = Run(s)
	assert.ErrorContains(t, err, "no such element")
}

func TestRun_BadLayout(t *testing.T) {
	s := loadScenario(t, "enter_and_rotate")
	s.Layout = "testdata/missing.cue"

	_, err := Run(s)
	assert.ErrorContains(t, err, "failed to load layout")
}
