package validate

import (
	"strings"

	"github.com/flowc-project/flowc/pkg/flow"
	"github.com/flowc-project/flowc/pkg/utils/slices"
	kuberesource "k8s.io/apimachinery/pkg/api/resource"
	kubevalidation "k8s.io/apimachinery/pkg/util/validation"
)

// A stage whose resource requests have been parsed.
type Stage struct {
	Name     string
	Image    string
	Replicas int32

	// requests keyed by resource name. Quantities are positive.
	Resources map[string]kuberesource.Quantity
}

// A pipeline which has passed all structural checks.
//
// Instances are created by Validate only. This is the type-level guarantee
// that manifests.Synthesize never runs on unchecked input.
type Pipeline struct {
	namespace  string
	monitoring bool
	stages     []Stage
}

func (p *Pipeline) Namespace() string {
	return p.namespace
}

func (p *Pipeline) Monitoring() bool {
	return p.monitoring
}

// Stages in declaration order.
func (p *Pipeline) Stages() []Stage {
	stages := make([]Stage, len(p.stages))
	copy(stages, p.stages)
	return stages
}

// Validate checks structural well-formedness of a pipeline descriptor.
//
// Checks run in a fixed order so that error reporting is deterministic:
//
//  1. at least one stage is present (ErrEmptyPipeline)
//  2. stage names are unique (ErrDuplicateStageName)
//  3. the namespace is a valid k8s identifier (ErrInvalidNamespace)
//  4. every resource request parses as a positive quantity
//     (ErrInvalidResourceQuantity); within a stage, requests are
//     checked in resource name order
//
// The first violation found in that order is the one reported,
// even if multiple violations exist.
//
// Validate is pure. It does not modify its input.
func Validate(d *flow.Pipeline) (*Pipeline, error) {
	descStages := d.Stages()

	if len(descStages) == 0 {
		return nil, ErrEmptyPipeline
	}

	seen := map[string]struct{}{}
	for _, s := range descStages {
		if _, ok := seen[s.Name()]; ok {
			return nil, &ErrDuplicateStageName{Stage: s.Name()}
		}
		seen[s.Name()] = struct{}{}
	}

	if msgs := kubevalidation.IsDNS1123Label(d.Namespace()); 0 < len(msgs) {
		return nil, &ErrInvalidNamespace{
			Namespace: d.Namespace(),
			Reason:    strings.Join(msgs, "; "),
		}
	}

	stages, err := slices.MapUntilError(descStages, func(s flow.Stage) (Stage, error) {
		requests := s.Resources()

		// resource names are walked in sorted order so that the
		// reported violation does not depend on map iteration order.
		resources := map[string]kuberesource.Quantity{}
		for _, name := range slices.KeysOf(requests) {
			value := requests[name]
			q, err := kuberesource.ParseQuantity(value)
			if err != nil {
				return Stage{}, &ErrInvalidResourceQuantity{
					Stage: s.Name(), Resource: name, Value: value,
					causedBy: err,
				}
			}
			if q.Sign() <= 0 {
				return Stage{}, &ErrInvalidResourceQuantity{
					Stage: s.Name(), Resource: name, Value: value,
				}
			}
			resources[name] = q
		}

		return Stage{
			Name:      s.Name(),
			Image:     s.Image(),
			Replicas:  s.Replicas(),
			Resources: resources,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		namespace:  d.Namespace(),
		monitoring: d.Monitoring(),
		stages:     stages,
	}, nil
}
