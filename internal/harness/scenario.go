package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/afcarl/mcdp/internal/driver"
)

// Scenario defines a conformance scenario over one model.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Models is the CUE directory holding the model document. Relative
	// paths are resolved against the scenario file.
	Models string `yaml:"models"`

	// Model names the model to build.
	Model string `yaml:"model"`

	// RunID is the fixed run ID of every query. Defaults to
	// testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Options tunes the solver.
	Options Options `yaml:"options,omitempty"`

	// Queries are answered in order.
	Queries []Query `yaml:"queries"`

	// Assertions validate the answers and traces.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Options tunes the solver for a scenario.
type Options struct {
	// MaxIterations caps Kleene iterations (0 keeps the default).
	MaxIterations int `yaml:"max_iterations,omitempty"`

	// MaxCutStates caps the minimum-cut search (0 keeps the default).
	MaxCutStates int `yaml:"max_cut_states,omitempty"`
}

// Query is one question to the model. Exactly one of Solve, SolveR and
// Implementations is set.
type Query struct {
	Solve           any              `yaml:"solve,omitempty"`
	SolveR          any              `yaml:"solve_r,omitempty"`
	Implementations *ImplementationQ `yaml:"implementations,omitempty"`

	// Expect checks the answer. If nil, any successful answer passes.
	Expect *Expect `yaml:"expect,omitempty"`
}

// ImplementationQ asks for the witnesses providing F within R.
type ImplementationQ struct {
	F any `yaml:"f"`
	R any `yaml:"r"`
}

// Expect specifies the expected answer of a query.
type Expect struct {
	// Minimals is the expected antichain of a solve query.
	Minimals []any `yaml:"minimals,omitempty"`

	// Maximals is the expected antichain of a solve_r query.
	Maximals []any `yaml:"maximals,omitempty"`

	// Empty expects an empty answer.
	Empty bool `yaml:"empty,omitempty"`

	// Status is the expected outcome (default "ok").
	Status string `yaml:"status,omitempty"`
}

// Assertion validates answers or traces after all queries ran.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Query is the query index (iterations_at_most, status, trace_contains).
	Query int `yaml:"query,omitempty"`

	// Queries lists query indices (monotone).
	Queries []int `yaml:"queries,omitempty"`

	// Count is the iteration bound (iterations_at_most) or the chain
	// length (monotone_chain).
	Count int `yaml:"count,omitempty"`

	// Status is the expected status (status).
	Status string `yaml:"status,omitempty"`

	// Text is the expected substring (trace_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertMonotone         = "monotone"
	AssertMonotoneChain    = "monotone_chain"
	AssertIterationsAtMost = "iterations_at_most"
	AssertStatus           = "status"
	AssertTraceContains    = "trace_contains"
)

// Kind returns "solve", "solve_r" or "implementations", or "" if the query
// sets none or several of them.
func (q Query) Kind() string {
	kind, n := "", 0
	if q.Solve != nil {
		kind, n = "solve", n+1
	}
	if q.SolveR != nil {
		kind, n = "solve_r", n+1
	}
	if q.Implementations != nil {
		kind, n = "implementations", n+1
	}
	if n != 1 {
		return ""
	}
	return kind
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected and the models path is resolved against the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	if s.Models != "" && !filepath.IsAbs(s.Models) {
		s.Models = filepath.Join(filepath.Dir(path), s.Models)
	}
	if _, err := os.Stat(s.Models); err != nil {
		return nil, fmt.Errorf("invalid scenario: models directory: %w", err)
	}
	return s, nil
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Models == "" {
		return fmt.Errorf("models is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if s.Options.MaxIterations < 0 || s.Options.MaxCutStates < 0 {
		return fmt.Errorf("options must be non-negative")
	}
	if len(s.Queries) == 0 {
		return fmt.Errorf("queries list is required and must be non-empty")
	}
	for i, q := range s.Queries {
		if q.Kind() == "" {
			return fmt.Errorf("queries[%d]: exactly one of solve, solve_r, implementations is required", i)
		}
		if q.Expect == nil {
			continue
		}
		if len(q.Expect.Minimals) > 0 && q.Kind() != "solve" {
			return fmt.Errorf("queries[%d].expect: minimals only apply to solve", i)
		}
		if len(q.Expect.Maximals) > 0 && q.Kind() != "solve_r" {
			return fmt.Errorf("queries[%d].expect: maximals only apply to solve_r", i)
		}
		if err := validateStatus(q.Expect.Status); err != nil {
			return fmt.Errorf("queries[%d].expect: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, len(s.Queries)); err != nil {
			return err
		}
	}
	return nil
}

func validateStatus(status string) error {
	switch status {
	case "", driver.StatusOK, driver.StatusInfeasible, driver.StatusIterationLimit, driver.StatusError:
		return nil
	}
	return fmt.Errorf("unknown status %q", status)
}

func validateAssertion(index int, a Assertion, queries int) error {
	inRange := func(q int) error {
		if q < 0 || q >= queries {
			return fmt.Errorf("assertions[%d]: query %d out of range", index, q)
		}
		return nil
	}
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertMonotone:
		if len(a.Queries) < 2 {
			return fmt.Errorf("assertions[%d]: monotone needs at least two queries", index)
		}
		for _, q := range a.Queries {
			if err := inRange(q); err != nil {
				return err
			}
		}
	case AssertMonotoneChain:
		if a.Count < 2 {
			return fmt.Errorf("assertions[%d]: count must be at least 2 for monotone_chain", index)
		}
	case AssertIterationsAtMost:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for iterations_at_most", index)
		}
		return inRange(a.Query)
	case AssertStatus:
		if a.Status == "" {
			return fmt.Errorf("assertions[%d]: status is required", index)
		}
		if err := validateStatus(a.Status); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		return inRange(a.Query)
	case AssertTraceContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for trace_contains", index)
		}
		return inRange(a.Query)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
