package flow

// One processing stage in a linear pipeline, backed by a container image.
//
// Stage is immutable. To get an instance, use StageMarshall.Seal() .
type Stage struct {
	name      string
	image     string
	replicas  int32
	resources map[string]string
}

// The name of this stage. Unique within a Pipeline
// (uniqueness is enforced by validate.Validate, not here).
func (s Stage) Name() string {
	return s.name
}

// Container image reference, verbatim as given by the user.
func (s Stage) Image() string {
	return s.image
}

// How many replicas should back this stage. Always 1 or more.
func (s Stage) Replicas() int32 {
	return s.replicas
}

// Resource requests of this stage, keyed by resource name ("cpu", "memory", ...).
//
// Values are unparsed quantity expressions. validate.Validate parses them.
func (s Stage) Resources() map[string]string {
	r := map[string]string{}
	for k, v := range s.resources {
		r[k] = v
	}
	return r
}

// A whole pipeline: ordered stages, target namespace and monitoring flag.
//
// Adjacency of stages implies the data-flow edge from stage i to stage i+1.
// Only linear chains are expressible.
//
// Pipeline is immutable. To get an instance, use PipelineMarshall.Seal()
// or Load() .
type Pipeline struct {
	namespace  string
	monitoring bool
	stages     []Stage
}

// k8s namespace the pipeline is compiled for.
func (p *Pipeline) Namespace() string {
	return p.namespace
}

// true when monitoring manifests should be synthesized per stage.
func (p *Pipeline) Monitoring() bool {
	return p.monitoring
}

// Stages in declaration order.
func (p *Pipeline) Stages() []Stage {
	stages := make([]Stage, len(p.stages))
	copy(stages, p.stages)
	return stages
}

// WithNamespace returns a copy of the pipeline retargeted to another namespace.
//
// Used by the CLI's --namespace override. The receiver is not modified.
func (p *Pipeline) WithNamespace(namespace string) *Pipeline {
	return &Pipeline{
		namespace:  namespace,
		monitoring: p.monitoring,
		stages:     p.Stages(),
	}
}

// WithMonitoring returns a copy of the pipeline with monitoring forced on.
func (p *Pipeline) WithMonitoring() *Pipeline {
	return &Pipeline{
		namespace:  p.namespace,
		monitoring: true,
		stages:     p.Stages(),
	}
}
