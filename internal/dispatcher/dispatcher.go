// Package dispatcher hands upgrade instructions to the node agent through
// node annotations, and reads the agent's progress back the same way.
package dispatcher

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
)

const (
	AnnotationOperationID   = "cupcake.ricardomolendijk.com/operation-id"
	AnnotationTargetVersion = "cupcake.ricardomolendijk.com/target-version"
	AnnotationComponents    = "cupcake.ricardomolendijk.com/components"
	AnnotationStatus        = "cupcake.ricardomolendijk.com/status"

	// AgentStatusPending is written by the operator; every later value in
	// the sequence is written by the node agent as it works the node.
	AgentStatusPending     = "pending"
	AgentStatusDraining    = "draining"
	AgentStatusUpgrading   = "upgrading"
	AgentStatusVerifying   = "verifying"
	AgentStatusUncordoning = "uncordoning"
	AgentStatusCompleted   = "completed"
	AgentStatusFailed      = "failed"
)

// agentStatusToPhase maps the agent-reported status string to the
// controller's NodePhase vocabulary. Unrecognized values map to Pending so
// a malformed annotation never silently advances the state machine.
var agentStatusToPhase = map[string]cupcakev1.NodePhase{
	AgentStatusPending:     cupcakev1.NodePhasePending,
	AgentStatusDraining:    cupcakev1.NodePhaseDraining,
	AgentStatusUpgrading:   cupcakev1.NodePhaseUpgrading,
	AgentStatusVerifying:   cupcakev1.NodePhaseVerifying,
	AgentStatusUncordoning: cupcakev1.NodePhaseUncordoning,
	AgentStatusCompleted:   cupcakev1.NodePhaseCompleted,
	AgentStatusFailed:      cupcakev1.NodePhaseFailed,
}

// Dispatcher annotates nodes with upgrade instructions and reads agent
// progress back from the same annotation set.
type Dispatcher struct {
	client client.Client
	logger *logrus.Logger
}

// New builds a Dispatcher.
func New(c client.Client, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{client: c, logger: logger}
}

// Annotate hands a node off to the agent: it writes the operation ID,
// target version, and component list, and resets the status annotation to
// pending so the agent picks the node up on its next watch tick.
func (d *Dispatcher) Annotate(ctx context.Context, nodeName, operationID string, spec cupcakev1.DirectUpdateSpec) error {
	var node corev1.Node
	if err := d.client.Get(ctx, client.ObjectKey{Name: nodeName}, &node); err != nil {
		return err
	}

	original := node.DeepCopy()
	if node.Annotations == nil {
		node.Annotations = map[string]string{}
	}
	node.Annotations[AnnotationOperationID] = operationID
	node.Annotations[AnnotationTargetVersion] = spec.TargetVersion
	node.Annotations[AnnotationComponents] = strings.Join(spec.ComponentsOrDefault(), ",")
	node.Annotations[AnnotationStatus] = AgentStatusPending

	if err := d.client.Patch(ctx, &node, client.MergeFrom(original)); err != nil {
		d.logger.WithError(err).WithField("node", nodeName).Error("dispatcher: failed to annotate node for upgrade")
		return err
	}

	d.logger.WithFields(logrus.Fields{"node": nodeName, "operationID": operationID}).Info("dispatcher: annotated node for upgrade")
	return nil
}

// ReadAgentPhase reads the node's current agent-reported status annotation
// and translates it to a NodePhase. ok is false if the node carries no
// status annotation for this operation at all (the agent has not yet
// picked the node up), or if the annotation still reads the controller-
// written AgentStatusPending sentinel: that value means "not yet claimed
// by the agent", not "the agent reported pending", and must never be
// mirrored back into node status once the controller has already moved
// the node past Pending itself.
func (d *Dispatcher) ReadAgentPhase(ctx context.Context, nodeName, operationID string) (phase cupcakev1.NodePhase, ok bool, err error) {
	var node corev1.Node
	if err := d.client.Get(ctx, client.ObjectKey{Name: nodeName}, &node); err != nil {
		return "", false, err
	}

	if node.Annotations[AnnotationOperationID] != operationID {
		return "", false, nil
	}

	raw, present := node.Annotations[AnnotationStatus]
	if !present || raw == AgentStatusPending {
		return "", false, nil
	}

	p, known := agentStatusToPhase[raw]
	if !known {
		d.logger.WithFields(logrus.Fields{"node": nodeName, "status": raw}).Warn("dispatcher: unrecognized agent status annotation")
		return cupcakev1.NodePhasePending, true, nil
	}
	return p, true, nil
}
