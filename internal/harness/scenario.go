package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario: a schema, named instances built
// from it, and checks over those instances.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE files or directories holding the type declarations.
	// Relative paths are resolved against the scenario file's directory.
	Specs []string `yaml:"specs,omitempty"`

	// Schema holds inline CUE declarations, compiled alongside Specs.
	Schema string `yaml:"schema,omitempty"`

	// Instances are built in file order; later instances may refer to
	// earlier ones with {$ref: name}.
	Instances Instances `yaml:"instances"`

	// Checks are evaluated in order against the instances.
	Checks []Check `yaml:"checks"`
}

// Instance is one named value in a scenario.
type Instance struct {
	Name  string
	Type  string
	Value any
}

// Instances keeps the declaration order of the instances mapping.
type Instances []Instance

// UnmarshalYAML decodes the name → {type, value} mapping in order.
func (is *Instances) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: instances must be a mapping of name to {type, value}", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, body := node.Content[i], node.Content[i+1]
		inst := Instance{Name: key.Value}
		if body.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: instances.%s must be a mapping", body.Line, inst.Name)
		}
		for j := 0; j+1 < len(body.Content); j += 2 {
			k, v := body.Content[j], body.Content[j+1]
			switch k.Value {
			case "type":
				if err := v.Decode(&inst.Type); err != nil {
					return fmt.Errorf("instances.%s.type: %w", inst.Name, err)
				}
			case "value":
				if err := v.Decode(&inst.Value); err != nil {
					return fmt.Errorf("instances.%s.value: %w", inst.Name, err)
				}
			default:
				return fmt.Errorf("line %d: field %s not found in instance %s", k.Line, k.Value, inst.Name)
			}
		}
		*is = append(*is, inst)
	}
	return nil
}

// Check is one verdict to reach over named instances.
type Check struct {
	// Type is one of CheckSubstitutable, CheckSameHash, CheckStableHash.
	Type string `yaml:"type"`

	// Operands name instances: two for substitutable and same_hash, one for
	// stable_hash.
	Operands []string `yaml:"operands"`

	// Expect is the expected outcome. Required for substitutable; defaults
	// to true otherwise.
	Expect *bool `yaml:"expect,omitempty"`
}

// Check type constants.
const (
	CheckSubstitutable = "substitutable"
	CheckSameHash      = "same_hash"
	CheckStableHash    = "stable_hash"
)

// Expected returns the expected outcome of c.
func (c Check) Expected() bool {
	if c.Expect == nil {
		return true
	}
	return *c.Expect
}

// LoadScenario reads and parses a scenario YAML file. Spec paths are
// resolved relative to the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}
	for _, specPath := range scenario.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: spec not found: %s", specPath)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Unknown fields are rejected. Spec
// paths are left as written.
func ParseScenario(data []byte) (*Scenario, error) {
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

// validateScenario checks that required fields are present and that checks
// only name declared instances.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 && s.Schema == "" {
		return fmt.Errorf("specs or schema is required")
	}

	if len(s.Instances) == 0 {
		return fmt.Errorf("instances mapping is required and must be non-empty")
	}

	if len(s.Checks) == 0 {
		return fmt.Errorf("checks list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Instances))
	for _, inst := range s.Instances {
		if inst.Name == "" {
			return fmt.Errorf("instances: empty instance name")
		}
		if names[inst.Name] {
			return fmt.Errorf("instances.%s: duplicate instance", inst.Name)
		}
		if inst.Type == "" {
			return fmt.Errorf("instances.%s: type is required", inst.Name)
		}
		names[inst.Name] = true
	}

	for i, c := range s.Checks {
		if err := validateCheck(i, &c, names); err != nil {
			return err
		}
	}

	return nil
}

// validateCheck validates a single check based on its type.
func validateCheck(index int, c *Check, names map[string]bool) error {
	if c.Type == "" {
		return fmt.Errorf("checks[%d]: type is required", index)
	}

	switch c.Type {
	case CheckSubstitutable:
		if len(c.Operands) != 2 {
			return fmt.Errorf("checks[%d]: substitutable takes 2 operands, got %d", index, len(c.Operands))
		}
		if c.Expect == nil {
			return fmt.Errorf("checks[%d]: expect is required for substitutable", index)
		}
	case CheckSameHash:
		if len(c.Operands) != 2 {
			return fmt.Errorf("checks[%d]: same_hash takes 2 operands, got %d", index, len(c.Operands))
		}
	case CheckStableHash:
		if len(c.Operands) != 1 {
			return fmt.Errorf("checks[%d]: stable_hash takes 1 operand, got %d", index, len(c.Operands))
		}
		if !c.Expected() {
			return fmt.Errorf("checks[%d]: stable_hash cannot expect false", index)
		}
	default:
		return fmt.Errorf("checks[%d]: unknown check type %q", index, c.Type)
	}

	for _, op := range c.Operands {
		if !names[op] {
			return fmt.Errorf("checks[%d]: unknown instance %q", index, op)
		}
	}

	return nil
}
