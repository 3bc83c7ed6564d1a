package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one generation test case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the content of a single Go file.
	Source string `yaml:"source,omitempty"`

	// Schema is a single YAML schema document.
	Schema string `yaml:"schema,omitempty"`

	// Assertions validate the generation outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of the outcome.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Record names the record under test. Unused by output_contains.
	Record string `yaml:"record,omitempty"`

	// Value is the expected measurement (measurement), diagnostic code
	// (diagnostic) or output fragment (output_contains).
	Value string `yaml:"value,omitempty"`

	// Roles maps field names to tag, field or timestamp (roles).
	Roles map[string]string `yaml:"roles,omitempty"`

	// Fields lists field names (field_order, optional).
	Fields []string `yaml:"fields,omitempty"`

	// Constraints maps type parameter names to their bound (bounds).
	Constraints map[string]string `yaml:"constraints,omitempty"`
}

// Assertion type constants.
const (
	AssertMeasurement    = "measurement"
	AssertRoles          = "roles"
	AssertFieldOrder     = "field_order"
	AssertOptional       = "optional"
	AssertBounds         = "bounds"
	AssertDiagnostic     = "diagnostic"
	AssertOutputContains = "output_contains"
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

// ParseScenario parses a scenario document.
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

// LoadScenarios loads every .yaml file in dir, in file name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if (s.Source == "") == (s.Schema == "") {
		return fmt.Errorf("exactly one of source or schema is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Type != AssertOutputContains && a.Record == "" {
		return fmt.Errorf("assertions[%d]: record is required for %s", index, a.Type)
	}

	switch a.Type {
	case AssertMeasurement, AssertDiagnostic, AssertOutputContains:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertRoles:
		if len(a.Roles) == 0 {
			return fmt.Errorf("assertions[%d]: roles is required for roles", index)
		}
	case AssertFieldOrder:
		if len(a.Fields) == 0 {
			return fmt.Errorf("assertions[%d]: fields list is required for field_order", index)
		}
	case AssertOptional:
		// An empty list asserts that no field is optional.
	case AssertBounds:
		if len(a.Constraints) == 0 {
			return fmt.Errorf("assertions[%d]: constraints is required for bounds", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
