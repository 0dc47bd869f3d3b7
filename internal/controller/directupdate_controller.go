// Package controller implements the reconcilers that drive DirectUpdate,
// ScheduledUpdate, and UpdateSchedule resources.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/client-go/discovery"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
	"github.com/ricardomolendijk/cupcake/internal/backup"
	"github.com/ricardomolendijk/cupcake/internal/dispatcher"
	"github.com/ricardomolendijk/cupcake/internal/metrics"
	"github.com/ricardomolendijk/cupcake/internal/planner"
	"github.com/ricardomolendijk/cupcake/internal/preflight"
	"github.com/ricardomolendijk/cupcake/internal/state"
	"github.com/ricardomolendijk/cupcake/internal/version"
)

const (
	// requeueInterval mirrors the 30s kopf.timer tick the upgrade loop ran on.
	requeueInterval = 30 * time.Second

	// vanishedNodeGraceTicks is how many tick intervals must have passed
	// since a missing node's last status update before the controller marks
	// it Failed.
	vanishedNodeGraceTicks = 5

	finalizerName = "cupcake.ricardomolendijk.com/backup-cleanup"
)

// DirectUpdateReconciler drives a single DirectUpdate through its
// Pending -> InProgress -> {Succeeded,Failed,RequiresAttention} lifecycle.
type DirectUpdateReconciler struct {
	Client     client.Client
	Logger     *logrus.Logger
	Discovery  discovery.DiscoveryInterface
	State      *state.Patcher
	Preflight  *preflight.Checker
	Backup     *backup.Coordinator
	Dispatcher *dispatcher.Dispatcher
}

// SetupWithManager registers the reconciler with mgr.
func (r *DirectUpdateReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&cupcakev1.DirectUpdate{}).
		Complete(r)
}

// Reconcile implements the DirectUpdate state machine.
func (r *DirectUpdateReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var du cupcakev1.DirectUpdate
	if err := r.Client.Get(ctx, req.NamespacedName, &du); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if !du.DeletionTimestamp.IsZero() {
		return r.reconcileDelete(ctx, &du)
	}

	if !controllerutil.ContainsFinalizer(&du, finalizerName) {
		controllerutil.AddFinalizer(&du, finalizerName)
		if err := r.Client.Update(ctx, &du); err != nil {
			return ctrl.Result{}, err
		}
	}

	if du.Status.Phase == "" {
		return r.initialize(ctx, &du)
	}

	if du.Status.Phase.IsTerminal() {
		return ctrl.Result{}, nil
	}

	switch du.Status.Phase {
	case cupcakev1.PhasePending:
		return r.handlePending(ctx, &du)
	case cupcakev1.PhaseInProgress:
		return r.handleInProgress(ctx, &du)
	case cupcakev1.PhaseRequiresAttention:
		r.Logger.WithField("name", du.Name).Warn("controller: DirectUpdate requires attention")
		return ctrl.Result{}, nil
	default:
		return ctrl.Result{RequeueAfter: requeueInterval}, nil
	}
}

func (r *DirectUpdateReconciler) reconcileDelete(ctx context.Context, du *cupcakev1.DirectUpdate) (ctrl.Result, error) {
	if !controllerutil.ContainsFinalizer(du, finalizerName) {
		return ctrl.Result{}, nil
	}

	if du.Status.OperationID != "" {
		r.Backup.Cleanup(ctx, du.Status.OperationID)
	}

	controllerutil.RemoveFinalizer(du, finalizerName)
	if err := r.Client.Update(ctx, du); err != nil {
		return ctrl.Result{}, err
	}
	return ctrl.Result{}, nil
}

func (r *DirectUpdateReconciler) initialize(ctx context.Context, du *cupcakev1.DirectUpdate) (ctrl.Result, error) {
	now := nowRFC3339()
	operationID := uuid.NewString()

	target, err := version.Parse(du.Spec.TargetVersion)
	if err != nil {
		return r.failPermanently(ctx, du, fmt.Sprintf("invalid target version: %v", err), now)
	}
	if ok, msg := version.Validate(target); !ok {
		return r.failPermanently(ctx, du, fmt.Sprintf("invalid target version: %s", msg), now)
	}

	message := "Operation initialized"
	var upgradePath *cupcakev1.UpgradePathStatus

	if current, err := r.clusterVersion(ctx); err != nil {
		r.Logger.WithError(err).Warn("controller: could not determine current cluster version, proceeding with caution")
	} else {
		path := version.Path(current, target)
		if len(path) == 0 {
			return r.failPermanently(ctx, du,
				fmt.Sprintf("target version %s is not newer than current %s", target, current), now)
		}
		message = version.FormatPathMessage(current, target, path)
		for _, w := range version.Warnings(current, target) {
			r.Logger.WithField("name", du.Name).Warn("controller: " + w)
		}
		if len(path) > 1 {
			steps := make([]string, len(path))
			for i, v := range path {
				steps[i] = v.String()
			}
			upgradePath = &cupcakev1.UpgradePathStatus{
				CurrentVersion: current.String(),
				TargetVersion:  target.String(),
				Steps:          steps,
				CurrentStep:    0,
				TotalSteps:     len(path),
			}
		}
	}

	plan, err := planner.MakePlan(ctx, r.Client, du.Spec)
	if err != nil {
		return r.failPermanently(ctx, du, fmt.Sprintf("planning failed: %v", err), now)
	}

	nodes := make(map[string]cupcakev1.NodeStatus, plan.Total)
	for _, name := range plan.AllNodes() {
		nodes[name] = cupcakev1.NodeStatus{
			Phase:       cupcakev1.NodePhasePending,
			LastStep:    "initialized",
			StartedAt:   now,
			LastUpdated: now,
			Message:     "Waiting to start",
		}
	}

	if err := r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
		status.Phase = cupcakev1.PhasePending
		status.OperationID = operationID
		status.StartedAt = now
		status.LastUpdated = now
		status.Message = message
		status.UpgradePath = upgradePath
		status.Nodes = nodes
		status.Summary = state.ComputeSummary(nodes)
	}); err != nil {
		return ctrl.Result{}, err
	}

	metrics.RecordPhaseTransition(string(cupcakev1.PhasePending), operationID)
	return ctrl.Result{RequeueAfter: requeueInterval}, nil
}

func (r *DirectUpdateReconciler) failPermanently(ctx context.Context, du *cupcakev1.DirectUpdate, message, now string) (ctrl.Result, error) {
	err := r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
		status.Phase = cupcakev1.PhaseFailed
		status.Message = message
		status.LastUpdated = now
	})
	metrics.RecordPhaseTransition(string(cupcakev1.PhaseFailed), du.Status.OperationID)
	return ctrl.Result{}, err
}

func (r *DirectUpdateReconciler) handlePending(ctx context.Context, du *cupcakev1.DirectUpdate) (ctrl.Result, error) {
	now := nowRFC3339()

	if !du.Spec.RunPreflightChecks() {
		err := r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
			status.Phase = cupcakev1.PhaseInProgress
			status.Message = "Preflight checks skipped, starting upgrade"
			status.LastUpdated = now
		})
		return ctrl.Result{RequeueAfter: requeueInterval}, err
	}

	plan, err := planner.MakePlan(ctx, r.Client, du.Spec)
	if err != nil {
		r.Logger.WithError(err).WithField("name", du.Name).Error("controller: failed to compute plan for preflight")
		return ctrl.Result{}, err
	}

	results := r.Preflight.Run(ctx, du.Spec, plan)
	err = r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
		status.Preflight = &results
		status.LastUpdated = now
		if results.Passed {
			status.Phase = cupcakev1.PhaseInProgress
			status.Message = "Preflight checks passed, starting upgrade"
		} else {
			status.Phase = cupcakev1.PhaseRequiresAttention
			status.Message = "Preflight checks failed"
		}
	})
	return ctrl.Result{RequeueAfter: requeueInterval}, err
}

func (r *DirectUpdateReconciler) handleInProgress(ctx context.Context, du *cupcakev1.DirectUpdate) (ctrl.Result, error) {
	plan, err := planner.MakePlan(ctx, r.Client, du.Spec)
	if err != nil {
		r.Logger.WithError(err).WithField("name", du.Name).Error("controller: failed to compute plan, will retry")
		return ctrl.Result{}, err
	}

	r.syncAgentProgress(ctx, du, plan)

	controlPlaneDone := true
	for _, name := range plan.ControlPlaneNodes {
		if !du.Status.Nodes[name].Phase.IsTerminal() {
			controlPlaneDone = false
			break
		}
	}

	if !controlPlaneDone {
		r.processControlPlane(ctx, du, plan)
	} else {
		r.processWorkers(ctx, du, plan)
	}

	now := nowRFC3339()
	if err := r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
		status.Summary = state.ComputeSummary(status.Nodes)
		status.LastUpdated = now
	}); err != nil {
		return ctrl.Result{}, err
	}

	metrics.SetNodeCount(du.Status.OperationID, "Upgrading", du.Status.Summary.Upgrading)
	metrics.SetNodeCount(du.Status.OperationID, "Completed", du.Status.Summary.Completed)
	metrics.SetNodeCount(du.Status.OperationID, "Failed", du.Status.Summary.Failed)
	metrics.SetInProgress(du.Status.OperationID, true)

	allComplete := len(plan.AllNodes()) > 0
	for _, name := range plan.AllNodes() {
		if du.Status.Nodes[name].Phase != cupcakev1.NodePhaseCompleted {
			allComplete = false
			break
		}
	}

	if allComplete {
		metrics.SetInProgress(du.Status.OperationID, false)
		metrics.RecordPhaseTransition(string(cupcakev1.PhaseSucceeded), du.Status.OperationID)
		return ctrl.Result{}, r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
			status.Phase = cupcakev1.PhaseSucceeded
			status.Message = "All nodes upgraded successfully"
			status.CompletedAt = now
			status.LastUpdated = now
		})
	}

	return ctrl.Result{RequeueAfter: requeueInterval}, nil
}

// syncAgentProgress reads each non-terminal tracked node's agent-reported
// status annotation and mirrors it into node status. It runs before
// scheduling so a node that finished since the last tick frees its
// concurrency slot (or advances the control-plane sequence) immediately.
func (r *DirectUpdateReconciler) syncAgentProgress(ctx context.Context, du *cupcakev1.DirectUpdate, plan planner.Plan) {
	now := time.Now().UTC()
	inPlan := make(map[string]bool, plan.Total)
	for _, name := range plan.AllNodes() {
		inPlan[name] = true
	}

	for name, ns := range du.Status.Nodes {
		if ns.Phase.IsTerminal() {
			continue
		}

		if !inPlan[name] {
			lastUpdated, err := time.Parse(time.RFC3339, ns.LastUpdated)
			if err == nil && now.Sub(lastUpdated) >= vanishedNodeGraceTicks*requeueInterval {
				_ = r.State.UpdateNodeStatus(ctx, du, name, cupcakev1.NodePhaseFailed,
					"node no longer present in cluster", now.Format(time.RFC3339))
			}
			continue
		}

		phase, ok, err := r.Dispatcher.ReadAgentPhase(ctx, name, du.Status.OperationID)
		if err != nil {
			r.Logger.WithError(err).WithField("node", name).Warn("controller: failed to read agent status annotation")
			continue
		}
		if !ok || phase == ns.Phase {
			continue
		}

		if started, err := time.Parse(time.RFC3339, ns.LastUpdated); err == nil {
			metrics.ObserveStepDuration(du.Status.OperationID, name, string(ns.Phase), now.Sub(started).Seconds())
		}

		_ = r.State.UpdateNodeStatus(ctx, du, name, phase, agentPhaseMessage(phase), now.Format(time.RFC3339))
	}
}

func agentPhaseMessage(phase cupcakev1.NodePhase) string {
	switch phase {
	case cupcakev1.NodePhaseCompleted:
		return "Upgrade completed"
	case cupcakev1.NodePhaseFailed:
		return "Agent reported failure"
	default:
		return "Agent reported progress: " + string(phase)
	}
}

// processControlPlane advances at most one control-plane node per tick:
// a strict sequence, since a failed concurrent control-plane upgrade can
// break etcd quorum.
func (r *DirectUpdateReconciler) processControlPlane(ctx context.Context, du *cupcakev1.DirectUpdate, plan planner.Plan) {
	now := nowRFC3339()
	for _, name := range plan.ControlPlaneNodes {
		phase := du.Status.Nodes[name].Phase
		switch {
		case phase == "" || phase == cupcakev1.NodePhasePending:
			r.startControlPlaneNode(ctx, du, name, now)
			return
		case phase.InFlight():
			return
		}
	}
}

func (r *DirectUpdateReconciler) startControlPlaneNode(ctx context.Context, du *cupcakev1.DirectUpdate, name, now string) {
	r.Logger.WithField("node", name).Info("controller: starting control-plane upgrade")

	if r.Backup.Enabled() {
		info, err := r.Backup.Trigger(ctx, name, du.Status.OperationID)
		if err != nil {
			_ = r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
				status.Phase = cupcakev1.PhaseRequiresAttention
				status.Message = fmt.Sprintf("Backup failed for %s: %v", name, err)
				status.LastUpdated = now
			})
			return
		}
		_ = r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
			status.BackupInfo = &info
			status.LastUpdated = now
		})
	}

	if err := r.Dispatcher.Annotate(ctx, name, du.Status.OperationID, du.Spec); err != nil {
		_ = r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
			status.Phase = cupcakev1.PhaseRequiresAttention
			status.Message = fmt.Sprintf("Failed to annotate %s: %v", name, err)
			status.LastUpdated = now
		})
		return
	}

	_ = r.State.UpdateNodeStatus(ctx, du, name, cupcakev1.NodePhaseUpgrading, "Control-plane upgrade initiated", now)
}

// processWorkers starts new worker upgrades up to spec.concurrency,
// preferring the canary-first order planner.MakePlan already applied.
func (r *DirectUpdateReconciler) processWorkers(ctx context.Context, du *cupcakev1.DirectUpdate, plan planner.Plan) {
	now := nowRFC3339()
	concurrency := du.Spec.ConcurrencyOrDefault()

	upgrading := 0
	for _, name := range plan.WorkerNodes {
		if du.Status.Nodes[name].Phase.InFlight() {
			upgrading++
		}
	}

	for _, name := range plan.WorkerNodes {
		if upgrading >= concurrency {
			return
		}
		phase := du.Status.Nodes[name].Phase
		if phase != "" && phase != cupcakev1.NodePhasePending {
			continue
		}

		r.Logger.WithField("node", name).Info("controller: starting worker upgrade")
		if err := r.Dispatcher.Annotate(ctx, name, du.Status.OperationID, du.Spec); err != nil {
			_ = r.State.Patch(ctx, du, func(status *cupcakev1.DirectUpdateStatus) {
				status.Phase = cupcakev1.PhaseRequiresAttention
				status.Message = fmt.Sprintf("Failed to annotate %s: %v", name, err)
				status.LastUpdated = now
			})
			return
		}
		_ = r.State.UpdateNodeStatus(ctx, du, name, cupcakev1.NodePhaseUpgrading, "Worker upgrade initiated", now)
		upgrading++
	}
}

func (r *DirectUpdateReconciler) clusterVersion(ctx context.Context) (version.Version, error) {
	if r.Discovery == nil {
		return version.Version{}, fmt.Errorf("no discovery client configured")
	}
	info, err := r.Discovery.ServerVersion()
	if err != nil {
		return version.Version{}, err
	}
	return version.Parse(info.GitVersion)
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
