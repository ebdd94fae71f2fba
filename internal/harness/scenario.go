package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted encounter with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup steps establish the starting encounter. They are not traced
	// and must succeed.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the traced steps.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final encounter.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one engine operation.
type Step struct {
	// Op is the operation name (see the Op constants).
	Op string `yaml:"op"`

	// Args holds the operation arguments.
	Args map[string]interface{} `yaml:"args,omitempty"`

	// Expect is checked right after the step. Optional.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause describes the encounter right after a step.
// Unset fields are not checked.
type ExpectClause struct {
	// Found is the lookup result of name-targeted operations.
	Found *bool `yaml:"found,omitempty"`

	// Error is a substring of the expected error. Empty means the step
	// must succeed.
	Error string `yaml:"error,omitempty"`

	Round   *int     `yaml:"round,omitempty"`
	Index   *int     `yaml:"index,omitempty"`
	Current *string  `yaml:"current,omitempty"`
	Order   []string `yaml:"order,omitempty"`
}

// Assertion validates the final encounter.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Name targets a combatant (hp, status, conditions, history) or names
	// the expected current combatant (current).
	Name string `yaml:"name,omitempty"`

	// Names is the expected turn order (order).
	Names []string `yaml:"names,omitempty"`

	// Value is the expected number (round, index, count, hp).
	Value *int `yaml:"value,omitempty"`

	// Untracked expects HP not to be tracked (hp).
	Untracked bool `yaml:"untracked,omitempty"`

	// Status is the expected HP band, "none" for no band (status).
	Status string `yaml:"status,omitempty"`

	// Labels are the expected condition labels in order (conditions).
	Labels []string `yaml:"labels,omitempty"`

	// Lines are the expected history lines in order (history).
	Lines []string `yaml:"lines,omitempty"`
}

// Operation names.
const (
	OpAdd             = "add"
	OpRemove          = "remove"
	OpClear           = "clear"
	OpDamage          = "damage"
	OpHeal            = "heal"
	OpConditionAdd    = "condition_add"
	OpConditionRemove = "condition_remove"
	OpNext            = "next"
	OpSetInit         = "set_init"
	OpReopen          = "reopen"
)

// requiredArgs lists the mandatory args of each operation.
var requiredArgs = map[string][]string{
	OpAdd:             {"name", "initiative"},
	OpRemove:          {"name"},
	OpClear:           nil,
	OpDamage:          {"name", "amount"},
	OpHeal:            {"name", "amount"},
	OpConditionAdd:    {"name", "condition"},
	OpConditionRemove: {"name", "condition"},
	OpNext:            nil,
	OpSetInit:         {"name", "initiative"},
	OpReopen:          nil,
}

// Assertion type constants.
const (
	AssertOrder      = "order"
	AssertCurrent    = "current"
	AssertRound      = "round"
	AssertIndex      = "index"
	AssertCount      = "count"
	AssertHP         = "hp"
	AssertStatus     = "status"
	AssertConditions = "conditions"
	AssertHistory    = "history"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is only allowed in flow steps", i)
		}
	}

	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(step Step) error {
	if step.Op == "" {
		return fmt.Errorf("op is required")
	}
	required, ok := requiredArgs[step.Op]
	if !ok {
		return fmt.Errorf("unknown op %q", step.Op)
	}
	for _, key := range required {
		if _, ok := step.Args[key]; !ok {
			return fmt.Errorf("%s: arg %q is required", step.Op, key)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertOrder, AssertCurrent:
	case AssertRound, AssertIndex, AssertCount:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertHP:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for hp", index)
		}
		if a.Value == nil && !a.Untracked {
			return fmt.Errorf("assertions[%d]: hp needs value or untracked: true", index)
		}
	case AssertStatus:
		if a.Name == "" || a.Status == "" {
			return fmt.Errorf("assertions[%d]: name and status are required for status", index)
		}
	case AssertConditions, AssertHistory:
		if a.Name == "" {
			return fmt.Errorf("assertions[%d]: name is required for %s", index, a.Type)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
