// Package state updates DirectUpdate status subresources and derives the
// summary counters shown to operators.
package state

import (
	"context"

	"github.com/sirupsen/logrus"
	"sigs.k8s.io/controller-runtime/pkg/client"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
)

// Patcher applies status-subresource patches for DirectUpdate resources.
type Patcher struct {
	client client.Client
	logger *logrus.Logger
}

// New builds a Patcher.
func New(c client.Client, logger *logrus.Logger) *Patcher {
	return &Patcher{client: c, logger: logger}
}

// UpdateNodeStatus records a node's phase transition, recomputes the
// summary, and patches the status subresource with a JSON merge patch
// so concurrent writers to unrelated fields are not clobbered.
func (p *Patcher) UpdateNodeStatus(ctx context.Context, du *cupcakev1.DirectUpdate, nodeName string, phase cupcakev1.NodePhase, message, now string) error {
	original := du.DeepCopy()

	if du.Status.Nodes == nil {
		du.Status.Nodes = make(map[string]cupcakev1.NodeStatus)
	}
	node := du.Status.Nodes[nodeName]
	if node.StartedAt == "" && phase != cupcakev1.NodePhasePending {
		node.StartedAt = now
	}
	node.Phase = phase
	node.Message = message
	node.LastUpdated = now
	du.Status.Nodes[nodeName] = node

	du.Status.Summary = ComputeSummary(du.Status.Nodes)
	du.Status.LastUpdated = now

	if err := p.client.Status().Patch(ctx, du, client.MergeFrom(original)); err != nil {
		p.logger.WithError(err).WithField("node", nodeName).Error("state: failed to patch node status")
		return err
	}
	return nil
}

// Patch applies an arbitrary status mutation through a JSON merge patch
// computed against the object's state before mutate ran.
func (p *Patcher) Patch(ctx context.Context, du *cupcakev1.DirectUpdate, mutate func(*cupcakev1.DirectUpdateStatus)) error {
	original := du.DeepCopy()
	mutate(&du.Status)
	if err := p.client.Status().Patch(ctx, du, client.MergeFrom(original)); err != nil {
		p.logger.WithError(err).WithField("operation", du.Name).Error("state: failed to patch status")
		return err
	}
	return nil
}

// ComputeSummary derives per-phase-class node counts from the current node
// status map.
func ComputeSummary(nodes map[string]cupcakev1.NodeStatus) cupcakev1.SummaryStatus {
	summary := cupcakev1.SummaryStatus{Total: len(nodes)}
	for _, n := range nodes {
		switch {
		case n.Phase == cupcakev1.NodePhaseCompleted:
			summary.Completed++
		case n.Phase.InFlight():
			summary.Upgrading++
		case n.Phase == cupcakev1.NodePhasePending:
			summary.Pending++
		case n.Phase == cupcakev1.NodePhaseFailed:
			summary.Failed++
		}
	}
	return summary
}

// DeepMerge recursively merges updates into a copy of base. Nested maps are
// merged key-by-key; any other value in updates overwrites the base value
// outright. base is never mutated.
func DeepMerge(base, updates map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range updates {
		existing, ok := result[k]
		if !ok {
			result[k] = v
			continue
		}

		existingMap, existingIsMap := existing.(map[string]any)
		updateMap, updateIsMap := v.(map[string]any)
		if existingIsMap && updateIsMap {
			result[k] = DeepMerge(existingMap, updateMap)
			continue
		}
		result[k] = v
	}

	return result
}
