package dsl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Args are the named arguments of an operation.
type Args = map[string]any

// Scenario is a scripted sequence of ledger operations.
type Scenario struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// Step is one operation of a scenario.
type Step struct {
	Name   string `yaml:"name,omitempty"`
	Op     string `yaml:"op"`
	Caller string `yaml:"caller,omitempty"`
	Args   Args   `yaml:"args,omitempty"`
	// ExpectError is the exact rejection reason the step must produce. Empty means success.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Label is the step name, or its operation when unnamed.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Op
}

// Validate checks that every step names an operation.
func (sc Scenario) Validate() error {
	for i, s := range sc.Steps {
		if s.Op == "" {
			return fmt.Errorf("step %d: op is required", i+1)
		}
	}
	return nil
}

// Parse decodes a YAML scenario.
func Parse(data []byte) (Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, err
	}
	if err := sc.Validate(); err != nil {
		return Scenario{}, err
	}
	return sc, nil
}

// Load reads a YAML scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return sc, nil
}

// Marshal encodes the scenario as YAML.
func (sc Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(sc)
}
