package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tetra/internal/actor"
	"github.com/roach88/tetra/internal/input"
	"github.com/roach88/tetra/internal/ir"
)

// Scenario is one scripted run of a layout.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario checks.
	Description string `yaml:"description"`

	// Layout is the path of the CUE or JSON layout document, resolved
	// relative to the scenario file by LoadScenario.
	Layout string `yaml:"layout"`

	// Viewport is the starting viewport. Defaults to app.DefaultViewport.
	Viewport *ir.Size `yaml:"viewport,omitempty"`

	// FreeSpin starts the session in free-spin mode.
	FreeSpin bool `yaml:"free_spin,omitempty"`

	// Language selects the load screen tip language.
	Language string `yaml:"language,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one action. Exactly one field is set.
type Step struct {
	Resize  *ir.Size       `yaml:"resize,omitempty"`
	Advance string         `yaml:"advance,omitempty"`
	Load    string         `yaml:"load,omitempty"`
	Fail    string         `yaml:"fail,omitempty"`
	Click   string         `yaml:"click,omitempty"`
	Key     string         `yaml:"key,omitempty"`
	Pointer *input.Pointer `yaml:"pointer,omitempty"`
	Send    string         `yaml:"send,omitempty"`
}

// Step kinds.
const (
	StepResize  = "resize"
	StepAdvance = "advance"
	StepLoad    = "load"
	StepFail    = "fail"
	StepClick   = "click"
	StepKey     = "key"
	StepPointer = "pointer"
	StepSend    = "send"
)

// LoadAll is the load target that resolves every pending asset.
const LoadAll = "*"

// Kind returns which action the step performs.
func (s Step) Kind() (string, error) {
	var kinds []string
	add := func(set bool, kind string) {
		if set {
			kinds = append(kinds, kind)
		}
	}
	add(s.Resize != nil, StepResize)
	add(s.Advance != "", StepAdvance)
	add(s.Load != "", StepLoad)
	add(s.Fail != "", StepFail)
	add(s.Click != "", StepClick)
	add(s.Key != "", StepKey)
	add(s.Pointer != nil, StepPointer)
	add(s.Send != "", StepSend)

	switch len(kinds) {
	case 0:
		return "", fmt.Errorf("no action set")
	case 1:
		return kinds[0], nil
	default:
		return "", fmt.Errorf("more than one action set: %v", kinds)
	}
}

// Assertion checks the app state after the last step.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	State    string   `yaml:"state,omitempty"`
	Progress *float64 `yaml:"progress,omitempty"`
	Style    string   `yaml:"style,omitempty"`
	Sound    *bool    `yaml:"sound,omitempty"`
	Event    string   `yaml:"event,omitempty"`

	// Label selects the node for visible and position.
	Label   string   `yaml:"label,omitempty"`
	Visible *bool    `yaml:"visible,omitempty"`
	X       *float64 `yaml:"x,omitempty"`
	Y       *float64 `yaml:"y,omitempty"`
}

// Assertion type constants.
const (
	AssertState         = "state"
	AssertProgress      = "progress"
	AssertVisible       = "visible"
	AssertStyle         = "style"
	AssertPosition      = "position"
	AssertSound         = "sound"
	AssertTraceContains = "trace_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving the layout path against
// baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Layout != "" && !filepath.IsAbs(scenario.Layout) && baseDir != "" {
		scenario.Layout = filepath.Join(baseDir, scenario.Layout)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Layout == "" {
		return fmt.Errorf("layout is required")
	}
	if _, err := os.Stat(s.Layout); err != nil {
		return fmt.Errorf("layout not found: %s", s.Layout)
	}
	if s.Viewport != nil && !s.Viewport.Valid() {
		return fmt.Errorf("viewport must have positive width and height")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	kind, err := step.Kind()
	if err != nil {
		return err
	}
	switch kind {
	case StepAdvance:
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("advance must not be negative")
		}
	case StepResize:
		if !step.Resize.Valid() {
			return fmt.Errorf("resize must have positive width and height")
		}
	case StepSend:
		if _, ok := actor.ParseEventType(step.Send); !ok {
			return fmt.Errorf("unknown event %q", step.Send)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("type is required")
	case AssertState:
		if a.State == "" {
			return fmt.Errorf("state is required for state")
		}
	case AssertProgress:
		if a.Progress == nil {
			return fmt.Errorf("progress is required for progress")
		}
	case AssertVisible:
		if a.Label == "" || a.Visible == nil {
			return fmt.Errorf("label and visible are required for visible")
		}
	case AssertStyle:
		if _, err := ir.ParseStyle(a.Style); err != nil {
			return fmt.Errorf("style: %w", err)
		}
	case AssertPosition:
		if a.Label == "" || a.X == nil || a.Y == nil {
			return fmt.Errorf("label, x and y are required for position")
		}
	case AssertSound:
		if a.Sound == nil {
			return fmt.Errorf("sound is required for sound")
		}
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("event is required for trace_contains")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
