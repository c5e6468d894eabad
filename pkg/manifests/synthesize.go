package manifests

import (
	"github.com/flowc-project/flowc/pkg/flow/validate"
	ptr "github.com/flowc-project/flowc/pkg/utils/pointer"
	gcrname "github.com/google/go-containerregistry/pkg/name"
	kubeapps "k8s.io/api/apps/v1"
	kubecore "k8s.io/api/core/v1"
	kubeapimeta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/intstr"
)

const (
	// port every stage container is assumed to listen on.
	StagePort = 8080

	stagePortName   = "http"
	metricsPath     = "/metrics"
	mainContainer   = "main"
	monitoringGroup = "monitoring.coreos.com/v1"
)

// Synthesize maps a validated pipeline to its manifest set.
//
// Per stage, in declaration order: a Deployment, a Service, and
// (when the pipeline's monitoring flag is set) a ServiceMonitor.
// Output is deterministic: synthesizing one descriptor twice yields
// equal sets.
//
// Every stage's image reference is checked against the registry
// reference syntax before anything is emitted. A reference that does
// not parse aborts the whole synthesis with
// ErrUnresolvableImageReference; no partial set is returned.
func Synthesize(p *validate.Pipeline) (Set, error) {
	stages := p.Stages()

	// all-or-nothing: reject before building anything.
	for _, stage := range stages {
		if _, err := gcrname.ParseReference(stage.Image); err != nil {
			return Set{}, &ErrUnresolvableImageReference{
				Stage: stage.Name, Image: stage.Image, causedBy: err,
			}
		}
	}

	items := make([]Manifest, 0, 3*len(stages))
	for _, stage := range stages {
		src := stageSource{namespace: p.Namespace(), stage: stage}

		items = append(
			items,
			Manifest{
				Stage: stage.Name, Kind: KindDeployment,
				Namespace: p.Namespace(),
				Body:      deployment(src),
			},
			Manifest{
				Stage: stage.Name, Kind: KindService,
				Namespace: p.Namespace(),
				Body:      service(src),
			},
		)

		if p.Monitoring() {
			items = append(items, Manifest{
				Stage: stage.Name, Kind: KindServiceMonitor,
				Namespace: p.Namespace(),
				Body:      serviceMonitor(src),
			})
		}
	}

	return Set{items: items}, nil
}

func deployment(src stageSource) *kubeapps.Deployment {
	requests := kubecore.ResourceList{}
	for typ, val := range src.stage.Resources {
		switch typ {
		case "cpu":
			requests[kubecore.ResourceCPU] = val
		case "memory":
			requests[kubecore.ResourceMemory] = val
		default:
			requests[kubecore.ResourceName(typ)] = val
		}
	}

	var resources kubecore.ResourceRequirements
	if 0 < len(requests) {
		resources.Requests = requests
	}

	return &kubeapps.Deployment{
		TypeMeta: kubeapimeta.TypeMeta{
			APIVersion: "apps/v1",
			Kind:       string(KindDeployment),
		},
		ObjectMeta: src.ObjectMeta(),
		Spec: kubeapps.DeploymentSpec{
			Replicas: ptr.Ref(src.stage.Replicas),
			Selector: &kubeapimeta.LabelSelector{
				MatchLabels: src.Selector(),
			},
			Template: kubecore.PodTemplateSpec{
				ObjectMeta: kubeapimeta.ObjectMeta{
					Labels: src.Labels(),
				},
				Spec: kubecore.PodSpec{
					Containers: []kubecore.Container{
						{
							Name:  mainContainer,
							Image: src.stage.Image,
							Ports: []kubecore.ContainerPort{
								{
									Name:          stagePortName,
									ContainerPort: StagePort,
								},
							},
							Resources: resources,
						},
					},
				},
			},
		},
	}
}

func service(src stageSource) *kubecore.Service {
	return &kubecore.Service{
		TypeMeta: kubeapimeta.TypeMeta{
			APIVersion: "v1",
			Kind:       string(KindService),
		},
		ObjectMeta: src.ObjectMeta(),
		Spec: kubecore.ServiceSpec{
			Selector: src.Selector(),
			Ports: []kubecore.ServicePort{
				{
					Name:       stagePortName,
					Port:       StagePort,
					TargetPort: intstr.FromString(stagePortName),
				},
			},
		},
	}
}

// serviceMonitor describes a prometheus-operator scrape target for the
// stage's Service. It is additive: Deployment and Service are identical
// whether or not monitoring is enabled.
func serviceMonitor(src stageSource) *unstructured.Unstructured {
	labels := map[string]any{}
	for k, v := range src.Labels() {
		labels[k] = v
	}
	selector := map[string]any{}
	for k, v := range src.Selector() {
		selector[k] = v
	}

	return &unstructured.Unstructured{
		Object: map[string]any{
			"apiVersion": monitoringGroup,
			"kind":       string(KindServiceMonitor),
			"metadata": map[string]any{
				"name":      src.stage.Name,
				"namespace": src.namespace,
				"labels":    labels,
			},
			"spec": map[string]any{
				"selector": map[string]any{
					"matchLabels": selector,
				},
				"endpoints": []any{
					map[string]any{
						"port": stagePortName,
						"path": metricsPath,
					},
				},
			},
		},
	}
}
