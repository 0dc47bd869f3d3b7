// Package preflight runs the gate checks required before a DirectUpdate may
// leave Pending and begin touching nodes.
package preflight

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	policyv1 "k8s.io/api/policy/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
	"github.com/ricardomolendijk/cupcake/internal/planner"
)

const bundleNamespace = "kube-system"

// Checker runs the fixed sequence of preflight checks against a plan.
type Checker struct {
	client client.Client
	logger *logrus.Logger
}

// New builds a Checker.
func New(c client.Client, logger *logrus.Logger) *Checker {
	return &Checker{client: c, logger: logger}
}

// Run executes every applicable check and aggregates the result. Checks run
// independently of one another; one failing does not skip the rest.
func (c *Checker) Run(ctx context.Context, spec cupcakev1.DirectUpdateSpec, plan planner.Plan) cupcakev1.PreflightResultsStatus {
	checks := []cupcakev1.PreflightCheckResult{
		c.checkAPIServer(ctx),
		c.checkNodesReady(ctx, plan),
		c.checkDiskPressure(ctx, plan),
		c.checkPodDisruptionBudgets(ctx),
	}

	if spec.AirGapped.Enabled {
		checks = append(checks, c.checkAirGapBundle(ctx, spec.AirGapped))
	}

	passed := true
	for _, r := range checks {
		if !r.Passed {
			passed = false
		}
	}

	return cupcakev1.PreflightResultsStatus{Passed: passed, Checks: checks}
}

func (c *Checker) checkAPIServer(ctx context.Context) cupcakev1.PreflightCheckResult {
	var nodes corev1.NodeList
	if err := c.client.List(ctx, &nodes); err != nil {
		c.logger.WithError(err).Error("preflight: API server check failed")
		return cupcakev1.PreflightCheckResult{
			Name: "API Server Connectivity", Passed: false,
			Message: fmt.Sprintf("API server unreachable: %v", err),
		}
	}
	return cupcakev1.PreflightCheckResult{
		Name: "API Server Connectivity", Passed: true,
		Message: "API server is reachable",
	}
}

func (c *Checker) checkNodesReady(ctx context.Context, plan planner.Plan) cupcakev1.PreflightCheckResult {
	var notReady []string
	for _, name := range plan.AllNodes() {
		var node corev1.Node
		if err := c.client.Get(ctx, client.ObjectKey{Name: name}, &node); err != nil {
			c.logger.WithError(err).WithField("node", name).Error("preflight: node readiness check failed")
			return cupcakev1.PreflightCheckResult{
				Name: "Node Readiness", Passed: false,
				Message: fmt.Sprintf("failed to check node readiness: %v", err),
			}
		}
		if !conditionTrue(node.Status.Conditions, corev1.NodeReady) {
			notReady = append(notReady, name)
		}
	}

	if len(notReady) > 0 {
		return cupcakev1.PreflightCheckResult{
			Name: "Node Readiness", Passed: false,
			Message: fmt.Sprintf("nodes not ready: %s", strings.Join(notReady, ", ")),
		}
	}
	return cupcakev1.PreflightCheckResult{
		Name: "Node Readiness", Passed: true,
		Message: fmt.Sprintf("all %d nodes are ready", len(plan.AllNodes())),
	}
}

func (c *Checker) checkDiskPressure(ctx context.Context, plan planner.Plan) cupcakev1.PreflightCheckResult {
	var lowDisk []string
	for _, name := range plan.AllNodes() {
		var node corev1.Node
		if err := c.client.Get(ctx, client.ObjectKey{Name: name}, &node); err != nil {
			c.logger.WithError(err).WithField("node", name).Error("preflight: disk space check failed")
			return cupcakev1.PreflightCheckResult{
				Name: "Disk Space", Passed: false,
				Message: fmt.Sprintf("failed to check disk space: %v", err),
			}
		}
		if conditionTrue(node.Status.Conditions, corev1.NodeDiskPressure) {
			lowDisk = append(lowDisk, name)
		}
	}

	if len(lowDisk) > 0 {
		return cupcakev1.PreflightCheckResult{
			Name: "Disk Space", Passed: false,
			Message: fmt.Sprintf("nodes with disk pressure: %s", strings.Join(lowDisk, ", ")),
		}
	}
	return cupcakev1.PreflightCheckResult{
		Name: "Disk Space", Passed: true,
		Message: "all nodes have sufficient disk space",
	}
}

// checkPodDisruptionBudgets is informational: a restrictive PDB never fails
// the gate, it only surfaces a warning in the message.
func (c *Checker) checkPodDisruptionBudgets(ctx context.Context) cupcakev1.PreflightCheckResult {
	var pdbs policyv1.PodDisruptionBudgetList
	if err := c.client.List(ctx, &pdbs); err != nil {
		c.logger.WithError(err).Warn("preflight: PDB check failed (non-critical)")
		return cupcakev1.PreflightCheckResult{
			Name: "PodDisruptionBudgets", Passed: true,
			Message: "could not check PodDisruptionBudgets (non-critical)",
		}
	}

	var restrictive []string
	for _, pdb := range pdbs.Items {
		if pdb.Status.DisruptionsAllowed == 0 {
			restrictive = append(restrictive, pdb.Namespace+"/"+pdb.Name)
		}
	}

	if len(restrictive) == 0 {
		return cupcakev1.PreflightCheckResult{
			Name: "PodDisruptionBudgets", Passed: true,
			Message: "PodDisruptionBudgets are not overly restrictive",
		}
	}

	sample := restrictive
	if len(sample) > 3 {
		sample = sample[:3]
	}
	return cupcakev1.PreflightCheckResult{
		Name: "PodDisruptionBudgets", Passed: true,
		Message: fmt.Sprintf("warning: %d PodDisruptionBudgets with 0 disruptions allowed: %s",
			len(restrictive), strings.Join(sample, ", ")),
	}
}

func (c *Checker) checkAirGapBundle(ctx context.Context, spec cupcakev1.AirGappedSpec) cupcakev1.PreflightCheckResult {
	if spec.BundleConfigMap == "" {
		return cupcakev1.PreflightCheckResult{
			Name: "Air-Gap Bundle", Passed: false,
			Message: "air-gap enabled but no bundleConfigMap specified",
		}
	}

	var cm corev1.ConfigMap
	err := c.client.Get(ctx, client.ObjectKey{Namespace: bundleNamespace, Name: spec.BundleConfigMap}, &cm)
	switch {
	case err == nil:
		return cupcakev1.PreflightCheckResult{
			Name: "Air-Gap Bundle", Passed: true,
			Message: fmt.Sprintf("air-gap bundle ConfigMap %s exists", spec.BundleConfigMap),
		}
	case apierrors.IsNotFound(err):
		return cupcakev1.PreflightCheckResult{
			Name: "Air-Gap Bundle", Passed: false,
			Message: fmt.Sprintf("air-gap bundle ConfigMap %s not found", spec.BundleConfigMap),
		}
	default:
		c.logger.WithError(err).Error("preflight: air-gap bundle check failed")
		return cupcakev1.PreflightCheckResult{
			Name: "Air-Gap Bundle", Passed: false,
			Message: fmt.Sprintf("failed to check air-gap bundle: %v", err),
		}
	}
}

func conditionTrue(conditions []corev1.NodeCondition, t corev1.NodeConditionType) bool {
	for _, cond := range conditions {
		if cond.Type == t {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}
