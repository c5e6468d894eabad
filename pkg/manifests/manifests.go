package manifests

// Kind of a synthesized manifest document.
type Kind string

const (
	KindDeployment     Kind = "Deployment"
	KindService        Kind = "Service"
	KindServiceMonitor Kind = "ServiceMonitor"
)

// One manifest document, tagged with its origin.
type Manifest struct {
	// name of the stage this document belongs to.
	Stage string

	Kind Kind

	Namespace string

	// the document body. One of:
	// *kubeapps.Deployment, *kubecore.Service, *unstructured.Unstructured .
	// It is serialized via sigs.k8s.io/yaml, so json tags apply.
	Body any
}

// Ordered set of manifest documents.
//
// Documents are grouped by stage in declaration order; within a stage,
// Deployment precedes Service precedes ServiceMonitor. The order is a
// contract for diff-friendliness. Set is never mutated after creation.
type Set struct {
	items []Manifest
}

func (s Set) Len() int {
	return len(s.items)
}

// Items in synthesis order.
func (s Set) Items() []Manifest {
	items := make([]Manifest, len(s.items))
	copy(items, s.items)
	return items
}
