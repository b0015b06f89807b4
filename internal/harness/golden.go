package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/ir"
	"github.com/roach88/tetra/internal/scene"
)

// GoldenSnapshot is what a golden file records for one run.
type GoldenSnapshot struct {
	Scenario string            `json:"scenario"`
	Style    ir.Style          `json:"style"`
	State    actor.State       `json:"state"`
	Progress float64           `json:"progress"`
	SoundOn  bool              `json:"sound_on"`
	Trace    []TraceEvent      `json:"trace"`
	Nodes    []scene.NodeState `json:"nodes"`
}

// MarshalGolden renders the golden form of result: indented JSON with a
// trailing newline.
func MarshalGolden(name string, result *Result) ([]byte, error) {
	snap := result.Snapshot
	data, err := json.MarshalIndent(GoldenSnapshot{
		Scenario: name,
		Style:    snap.Style,
		State:    snap.State,
		Progress: snap.Progress,
		SoundOn:  snap.SoundOn,
		Trace:    result.Trace,
		Nodes:    snap.Nodes,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares its trace and final tree
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run. A mismatch fails t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := MarshalGolden(name, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
