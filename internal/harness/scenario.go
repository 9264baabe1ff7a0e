package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a project file plus
// assertions about the tokens it generates.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named
	// after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Project is the path to the project YAML file, relative to the
	// scenario file unless absolute.
	Project string `yaml:"project"`

	// Editions lists the editions to generate. Empty means every
	// edition from 1 to the project's size.
	Editions []int `yaml:"editions,omitempty"`

	// Assertions validate the generated tokens.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of the generated tokens.
type Assertion struct {
	// Type selects the assertion:
	//   - "selection": edition selects a given trait for a class
	//   - "class_absent": edition has no trait for a class
	//   - "attribute": edition's attributes contain (trait_type, value)
	//   - "repaired": edition repaired exactly Count violations
	//   - "dna_unique": all generated editions have distinct DNA
	//   - "rules_hold": no generated edition violates any project rule
	Type string `yaml:"type"`

	// Edition scopes per-token assertions.
	Edition int `yaml:"edition,omitempty"`

	// Class and Trait identify an expected selection.
	Class string `yaml:"class,omitempty"`
	Trait string `yaml:"trait,omitempty"`

	// TraitType and Value identify an expected metadata attribute.
	TraitType string `yaml:"trait_type,omitempty"`
	Value     string `yaml:"value,omitempty"`

	// Count is the expected repair count for "repaired".
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertSelection   = "selection"
	AssertClassAbsent = "class_absent"
	AssertAttribute   = "attribute"
	AssertRepaired    = "repaired"
	AssertDNAUnique   = "dna_unique"
	AssertRulesHold   = "rules_hold"
)

// LoadScenario reads and parses a scenario YAML file. The project
// path is resolved relative to the scenario file. Unknown fields are
// rejected so typos fail loudly instead of silently weakening a test.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if scenario.Project != "" && !filepath.IsAbs(scenario.Project) {
		scenario.Project = filepath.Join(filepath.Dir(path), scenario.Project)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
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
	if s.Project == "" {
		return fmt.Errorf("project is required")
	}
	if _, err := os.Stat(s.Project); err != nil {
		return fmt.Errorf("project file not found: %s", s.Project)
	}
	for i, edition := range s.Editions {
		if edition < 1 {
			return fmt.Errorf("editions[%d]: edition must be >= 1, got %d", i, edition)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertSelection:
		if a.Edition < 1 {
			return fmt.Errorf("assertions[%d]: edition is required for selection", index)
		}
		if a.Class == "" || a.Trait == "" {
			return fmt.Errorf("assertions[%d]: class and trait are required for selection", index)
		}
	case AssertClassAbsent:
		if a.Edition < 1 || a.Class == "" {
			return fmt.Errorf("assertions[%d]: edition and class are required for class_absent", index)
		}
	case AssertAttribute:
		if a.Edition < 1 {
			return fmt.Errorf("assertions[%d]: edition is required for attribute", index)
		}
		if a.TraitType == "" || a.Value == "" {
			return fmt.Errorf("assertions[%d]: trait_type and value are required for attribute", index)
		}
	case AssertRepaired:
		if a.Edition < 1 {
			return fmt.Errorf("assertions[%d]: edition is required for repaired", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for repaired", index)
		}
	case AssertDNAUnique, AssertRulesHold:
		// Collection-wide; no extra fields.
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
