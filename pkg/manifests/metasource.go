package manifests

import (
	"github.com/flowc-project/flowc/pkg/flow/validate"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// stageSource derives k8s object metadata for one pipeline stage.
//
// Every derived value is a pure function of (namespace, stage name),
// so repeated synthesis of one descriptor yields identical metadata.
type stageSource struct {
	namespace string
	stage     validate.Stage
}

// The name of the application this stage runs.
//
// This is set as a value of k8s label "app.kubernetes.io/name".
//
// see: https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
func (s stageSource) Name() string {
	return s.stage.Name
}

// This is set as a value of k8s label "app.kubernetes.io/instance",
// and is the selector identity of the stage.
//
// Built as "<namespace>-<stage>" so that two pipelines compiled for
// different namespaces never collide on instance identity.
// `ObjectMeta.Name` stays the bare stage name: the namespace already
// scopes it on the platform side.
func (s stageSource) Instance() string {
	return s.namespace + "-" + s.stage.Name
}

// Where this is positioned in the pipeline archetecture.
//
// This is set as a value of k8s label "app.kubernetes.io/component".
func (s stageSource) Component() string {
	return "stage"
}

// Selector returns the label set associating a Service (and a
// ServiceMonitor) with the pods of the stage's Deployment.
//
// This is the identity-bearing label. It must stay stable across runs.
func (s stageSource) Selector() map[string]string {
	return map[string]string{
		"app.kubernetes.io/instance": s.Instance(),
	}
}

// convert stageSource to k8s labels, including "recommended labels".
//
// https://kubernetes.io/docs/concepts/overview/working-with-objects/common-labels/
func (s stageSource) Labels() map[string]string {
	return map[string]string{
		"app.kubernetes.io/name":       s.Name(),
		"app.kubernetes.io/instance":   s.Instance(),
		"app.kubernetes.io/component":  s.Component(),
		"app.kubernetes.io/part-of":    "flowc",
		"app.kubernetes.io/managed-by": "flowc",
	}
}

func (s stageSource) ObjectMeta() kubeapimeta.ObjectMeta {
	return kubeapimeta.ObjectMeta{
		Name:      s.stage.Name,
		Namespace: s.namespace,
		Labels:    s.Labels(),
	}
}
