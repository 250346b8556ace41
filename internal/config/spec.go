package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ResourceSpec is the desired state for one resource, as supplied by the
// surrounding declarative layer.
type ResourceSpec struct {
	Kind string         `mapstructure:"kind"`
	Name string         `mapstructure:"name"`
	Spec map[string]any `mapstructure:"spec"`
}

// LoadSpecFile reads and parses a resource spec from a YAML file.
func LoadSpecFile(path string) (*ResourceSpec, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var spec ResourceSpec
	if err := mapstructure.Decode(raw, &spec); err != nil {
		return nil, fmt.Errorf("failed to decode spec: %w", err)
	}

	if spec.Kind == "" {
		return nil, &ValidationError{Field: "kind", Reason: "is required in the spec file"}
	}
	if spec.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "is required in the spec file"}
	}
	if spec.Spec == nil {
		spec.Spec = map[string]any{}
	}

	return &spec, nil
}
