package flow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mutable mirror of Stage for YAML unmarshalling.
//
// Consider to use the immutable version, Stage.
// You can get a Stage instance with StageMarshall.Seal() .
type StageMarshall struct {
	Name      string            `yaml:"name"`
	Image     string            `yaml:"image"`
	Replicas  *int32            `yaml:"replicas,omitempty"`
	Resources map[string]string `yaml:"resources,omitempty"`
}

// verify field values and create the immutable version of this.
//
// Only field-local constraints are checked here:
// non-empty name, non-empty image, replicas >= 1 (1 when omitted).
// Cross-stage and syntax-level checks belong to validate.Validate .
func (sm StageMarshall) Seal() (Stage, error) {
	if sm.Name == "" {
		return Stage{}, &ErrInvalidField{
			Field: "name", Reason: "stage name must not be empty",
		}
	}
	if sm.Image == "" {
		return Stage{}, &ErrInvalidField{
			Stage: sm.Name, Field: "image",
			Reason: "image reference must not be empty",
		}
	}

	replicas := int32(1)
	if sm.Replicas != nil {
		if *sm.Replicas < 1 {
			return Stage{}, &ErrInvalidField{
				Stage: sm.Name, Field: "replicas",
				Value:  fmt.Sprint(*sm.Replicas),
				Reason: "replica count must be 1 or more",
			}
		}
		replicas = *sm.Replicas
	}

	resources := map[string]string{}
	for k, v := range sm.Resources {
		if k == "" {
			return Stage{}, &ErrInvalidField{
				Stage: sm.Name, Field: "resources", Value: v,
				Reason: "resource name must not be empty",
			}
		}
		resources[k] = v
	}

	return Stage{
		name:      sm.Name,
		image:     sm.Image,
		replicas:  replicas,
		resources: resources,
	}, nil
}

// Mutable mirror of Pipeline for YAML unmarshalling.
type PipelineMarshall struct {
	Namespace  string          `yaml:"namespace,omitempty"`
	Monitoring bool            `yaml:"monitoring,omitempty"`
	Stages     []StageMarshall `yaml:"stages"`
}

// DefaultNamespace is assumed when the descriptor gives none
// and the caller does not override it.
const DefaultNamespace = "default"

// verify field values and create the immutable version of this.
func (pm PipelineMarshall) Seal() (*Pipeline, error) {
	namespace := pm.Namespace
	if namespace == "" {
		namespace = DefaultNamespace
	}

	stages := make([]Stage, 0, len(pm.Stages))
	for _, sm := range pm.Stages {
		s, err := sm.Seal()
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}

	return &Pipeline{
		namespace:  namespace,
		monitoring: pm.Monitoring,
		stages:     stages,
	}, nil
}

// Unmarshal parses a pipeline descriptor document and seals it.
func Unmarshal(content []byte) (*Pipeline, error) {
	var pm PipelineMarshall
	if err := yaml.Unmarshal(content, &pm); err != nil {
		return nil, fmt.Errorf("malformed pipeline descriptor: %w", err)
	}
	return pm.Seal()
}

// Load reads a pipeline descriptor from a file.
//
// # Args
//
// - filepath: filepath refering a descriptor file.
//
// # Returns
//
// When loading succeeds, returns (*Pipeline, nil). Otherwise (nil, error).
func Load(filepath string) (*Pipeline, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}
