// Package planner classifies cluster nodes into control-plane and worker
// sets, applies the node selector, and orders canary workers first.
package planner

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
)

const (
	labelControlPlane = "node-role.kubernetes.io/control-plane"
	labelMaster        = "node-role.kubernetes.io/master"
)

// Plan is the classified, ordered node set a DirectUpdate operates on.
type Plan struct {
	ControlPlaneNodes []string
	WorkerNodes       []string
	Total             int
}

// AllNodes returns control-plane nodes followed by worker nodes.
func (p Plan) AllNodes() []string {
	all := make([]string, 0, len(p.ControlPlaneNodes)+len(p.WorkerNodes))
	all = append(all, p.ControlPlaneNodes...)
	all = append(all, p.WorkerNodes...)
	return all
}

// MakePlan lists cluster nodes and classifies them per spec.nodeSelector
// and spec.canary.
func MakePlan(ctx context.Context, c client.Client, spec cupcakev1.DirectUpdateSpec) (Plan, error) {
	var nodeList corev1.NodeList
	if err := c.List(ctx, &nodeList); err != nil {
		return Plan{}, fmt.Errorf("failed to list nodes: %w", err)
	}

	var controlPlane, workers []string
	for _, node := range nodeList.Items {
		labels := node.Labels
		if !matchesSelector(labels, spec.NodeSelector) {
			continue
		}
		if isControlPlane(labels) {
			controlPlane = append(controlPlane, node.Name)
		} else {
			workers = append(workers, node.Name)
		}
	}

	workers = orderCanary(workers, spec.Canary)

	return Plan{
		ControlPlaneNodes: controlPlane,
		WorkerNodes:       workers,
		Total:             len(controlPlane) + len(workers),
	}, nil
}

func isControlPlane(labels map[string]string) bool {
	if labels == nil {
		return false
	}
	_, hasControlPlane := labels[labelControlPlane]
	_, hasMaster := labels[labelMaster]
	return hasControlPlane || hasMaster
}

func matchesSelector(labels, selector map[string]string) bool {
	if len(selector) == 0 {
		return true
	}
	for k, v := range selector {
		if labels[k] != v {
			return false
		}
	}
	return true
}

// orderCanary moves spec.canary.nodes (in the order given) to the front of
// the worker list. Canary names absent from workers are silently ignored.
func orderCanary(workers []string, canary cupcakev1.CanarySpec) []string {
	if !canary.Enabled || len(canary.Nodes) == 0 {
		return workers
	}

	inWorkers := make(map[string]bool, len(workers))
	for _, w := range workers {
		inWorkers[w] = true
	}

	isCanary := make(map[string]bool, len(canary.Nodes))
	ordered := make([]string, 0, len(workers))
	for _, c := range canary.Nodes {
		if inWorkers[c] && !isCanary[c] {
			ordered = append(ordered, c)
			isCanary[c] = true
		}
	}
	for _, w := range workers {
		if !isCanary[w] {
			ordered = append(ordered, w)
		}
	}
	return ordered
}
