package controller

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	k8sversion "k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/discovery"
	discoveryfake "k8s.io/client-go/discovery/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
	"github.com/ricardomolendijk/cupcake/internal/backup"
	"github.com/ricardomolendijk/cupcake/internal/config"
	"github.com/ricardomolendijk/cupcake/internal/dispatcher"
	"github.com/ricardomolendijk/cupcake/internal/preflight"
	"github.com/ricardomolendijk/cupcake/internal/state"
)

func reconcileRequest(name string) ctrl.Request {
	return ctrl.Request{NamespacedName: types.NamespacedName{Name: name}}
}

func testScheme(t *testing.T) *runtime.Scheme {
	t.Helper()
	s := runtime.NewScheme()
	if err := clientgoscheme.AddToScheme(s); err != nil {
		t.Fatalf("add client-go scheme: %v", err)
	}
	if err := cupcakev1.AddToScheme(s); err != nil {
		t.Fatalf("add cupcake scheme: %v", err)
	}
	return s
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func readyNode(name string, labels map[string]string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name, Labels: labels},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
				{Type: corev1.NodeDiskPressure, Status: corev1.ConditionFalse},
			},
		},
	}
}

// Discovery is left nil in most of these tests: initialize() logs a warning
// and proceeds without a current-version comparison when it is unset, which
// is exercised through initialize() by TestReconcileAddsFinalizerOnFirstTick.
// Tests that need a real current-cluster-version comparison (the
// multi-step path and downgrade-refusal scenarios) wire fakeServerVersion
// instead.

func fakeServerVersion(t *testing.T, gitVersion string) discovery.DiscoveryInterface {
	t.Helper()
	clientset := k8sfake.NewSimpleClientset()
	fakeDiscovery, ok := clientset.Discovery().(*discoveryfake.FakeDiscovery)
	if !ok {
		t.Fatalf("expected *discoveryfake.FakeDiscovery, got %T", clientset.Discovery())
	}
	fakeDiscovery.FakedServerVersion = &k8sversion.Info{GitVersion: gitVersion}
	return fakeDiscovery
}

func newReconciler(t *testing.T, objs ...client.Object) (*DirectUpdateReconciler, client.Client) {
	t.Helper()
	c := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithStatusSubresource(&cupcakev1.DirectUpdate{}).
		WithObjects(objs...).
		Build()

	logger := testLogger()
	cfg := &config.Config{Namespace: config.DefaultNamespace}

	return &DirectUpdateReconciler{
		Client:     c,
		Logger:     logger,
		Discovery:  nil,
		State:      state.New(c, logger),
		Preflight:  preflight.New(c, logger),
		Backup:     backup.New(c, logger, cfg),
		Dispatcher: dispatcher.New(c, logger),
	}, c
}

func newDirectUpdate(name, target string) *cupcakev1.DirectUpdate {
	skip := false
	return &cupcakev1.DirectUpdate{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec: cupcakev1.DirectUpdateSpec{
			TargetVersion:   target,
			Concurrency:     1,
			PreflightChecks: &skip,
		},
	}
}

func TestReconcileMissingResourceIsNoop(t *testing.T) {
	r, _ := newReconciler(t)
	res, err := r.Reconcile(context.Background(), reconcileRequest("missing"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RequeueAfter != 0 {
		t.Fatalf("expected no requeue, got %v", res.RequeueAfter)
	}
}

func TestReconcileAddsFinalizerOnFirstTick(t *testing.T) {
	du := newDirectUpdate("upgrade", "1.29.0")
	node := readyNode("worker-1", map[string]string{})
	r, c := newReconciler(t, du, node)

	if _, err := r.Reconcile(context.Background(), reconcileRequest("upgrade")); err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	var fetched cupcakev1.DirectUpdate
	if err := c.Get(context.Background(), client.ObjectKey{Name: "upgrade"}, &fetched); err != nil {
		t.Fatalf("get: %v", err)
	}
	if !containsString(fetched.Finalizers, finalizerName) {
		t.Fatalf("expected finalizer to be added, got %v", fetched.Finalizers)
	}
}

func TestInitializeFailsOnInvalidTargetVersion(t *testing.T) {
	du := newDirectUpdate("bad-version", "not-a-version")
	r, c := newReconciler(t, du)

	if _, err := r.initialize(context.Background(), du); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	var fetched cupcakev1.DirectUpdate
	if err := c.Get(context.Background(), client.ObjectKey{Name: "bad-version"}, &fetched); err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status.Phase != cupcakev1.PhaseFailed {
		t.Fatalf("expected Failed phase, got %q", fetched.Status.Phase)
	}
}

func TestInitializePopulatesMultiStepUpgradePath(t *testing.T) {
	du := newDirectUpdate("multi-step", "1.29.0")
	r, c := newReconciler(t, du)
	r.Discovery = fakeServerVersion(t, "v1.27.3")

	if _, err := r.initialize(context.Background(), du); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	var fetched cupcakev1.DirectUpdate
	if err := c.Get(context.Background(), client.ObjectKey{Name: "multi-step"}, &fetched); err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status.Phase != cupcakev1.PhasePending {
		t.Fatalf("expected Pending phase, got %q", fetched.Status.Phase)
	}
	if fetched.Status.UpgradePath == nil {
		t.Fatal("expected an upgrade path to be populated for a multi-minor jump")
	}
	if fetched.Status.UpgradePath.CurrentVersion != "1.27.3" {
		t.Fatalf("expected current version 1.27.3, got %q", fetched.Status.UpgradePath.CurrentVersion)
	}
	if fetched.Status.UpgradePath.TotalSteps != 2 {
		t.Fatalf("expected a 2-step path from 1.27 to 1.29 (via 1.28.0), got %d steps: %v",
			fetched.Status.UpgradePath.TotalSteps, fetched.Status.UpgradePath.Steps)
	}
}

func TestInitializeRejectsDowngradeAgainstDiscoveredVersion(t *testing.T) {
	du := newDirectUpdate("downgrade", "1.27.0")
	r, c := newReconciler(t, du)
	r.Discovery = fakeServerVersion(t, "v1.29.0")

	if _, err := r.initialize(context.Background(), du); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	var fetched cupcakev1.DirectUpdate
	if err := c.Get(context.Background(), client.ObjectKey{Name: "downgrade"}, &fetched); err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status.Phase != cupcakev1.PhaseFailed {
		t.Fatalf("expected Failed phase for a target not newer than the discovered cluster version, got %q", fetched.Status.Phase)
	}
}

func TestHandlePendingSkipsPreflightWhenDisabled(t *testing.T) {
	du := newDirectUpdate("skip-preflight", "1.29.0")
	du.Status.Phase = cupcakev1.PhasePending
	r, c := newReconciler(t, du)

	if _, err := r.handlePending(context.Background(), du); err != nil {
		t.Fatalf("handlePending: %v", err)
	}

	var fetched cupcakev1.DirectUpdate
	if err := c.Get(context.Background(), client.ObjectKey{Name: "skip-preflight"}, &fetched); err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status.Phase != cupcakev1.PhaseInProgress {
		t.Fatalf("expected InProgress phase, got %q", fetched.Status.Phase)
	}
}

func TestHandlePendingRequiresAttentionOnNotReadyNode(t *testing.T) {
	enabled := true
	du := newDirectUpdate("not-ready", "1.29.0")
	du.Spec.PreflightChecks = &enabled
	du.Status.Phase = cupcakev1.PhasePending

	notReady := readyNode("worker-1", nil)
	notReady.Status.Conditions[0].Status = corev1.ConditionFalse

	r, c := newReconciler(t, du, notReady)

	if _, err := r.handlePending(context.Background(), du); err != nil {
		t.Fatalf("handlePending: %v", err)
	}

	var fetched cupcakev1.DirectUpdate
	if err := c.Get(context.Background(), client.ObjectKey{Name: "not-ready"}, &fetched); err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status.Phase != cupcakev1.PhaseRequiresAttention {
		t.Fatalf("expected RequiresAttention phase, got %q", fetched.Status.Phase)
	}
}

func TestHandleInProgressStartsControlPlaneNodeThenWaits(t *testing.T) {
	du := newDirectUpdate("cp-first", "1.29.0")
	du.Status.Phase = cupcakev1.PhaseInProgress
	du.Status.OperationID = "op-1"
	du.Status.Nodes = map[string]cupcakev1.NodeStatus{
		"cp-1":     {Phase: cupcakev1.NodePhasePending},
		"worker-1": {Phase: cupcakev1.NodePhasePending},
	}

	cp := readyNode("cp-1", map[string]string{"node-role.kubernetes.io/control-plane": ""})
	worker := readyNode("worker-1", nil)

	r, c := newReconciler(t, du, cp, worker)

	if _, err := r.handleInProgress(context.Background(), du); err != nil {
		t.Fatalf("handleInProgress: %v", err)
	}

	var fetched cupcakev1.DirectUpdate
	if err := c.Get(context.Background(), client.ObjectKey{Name: "cp-first"}, &fetched); err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status.Nodes["cp-1"].Phase != cupcakev1.NodePhaseUpgrading {
		t.Fatalf("expected cp-1 to be Upgrading, got %q", fetched.Status.Nodes["cp-1"].Phase)
	}
	if fetched.Status.Nodes["worker-1"].Phase != cupcakev1.NodePhasePending {
		t.Fatalf("expected worker-1 to still be Pending while control plane is in flight, got %q", fetched.Status.Nodes["worker-1"].Phase)
	}

	var annotated corev1.Node
	if err := c.Get(context.Background(), client.ObjectKey{Name: "cp-1"}, &annotated); err != nil {
		t.Fatalf("get node: %v", err)
	}
	if annotated.Annotations[dispatcher.AnnotationOperationID] != "op-1" {
		t.Fatalf("expected cp-1 to be annotated with the operation ID, got %v", annotated.Annotations)
	}
}

func TestHandleInProgressCompletesWhenAllNodesDone(t *testing.T) {
	du := newDirectUpdate("done", "1.29.0")
	du.Status.Phase = cupcakev1.PhaseInProgress
	du.Status.OperationID = "op-2"
	du.Status.Nodes = map[string]cupcakev1.NodeStatus{
		"worker-1": {Phase: cupcakev1.NodePhaseCompleted},
	}

	worker := readyNode("worker-1", nil)
	r, c := newReconciler(t, du, worker)

	if _, err := r.handleInProgress(context.Background(), du); err != nil {
		t.Fatalf("handleInProgress: %v", err)
	}

	var fetched cupcakev1.DirectUpdate
	if err := c.Get(context.Background(), client.ObjectKey{Name: "done"}, &fetched); err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.Status.Phase != cupcakev1.PhaseSucceeded {
		t.Fatalf("expected Succeeded phase, got %q", fetched.Status.Phase)
	}
	if fetched.Status.CompletedAt == "" {
		t.Fatalf("expected CompletedAt to be stamped")
	}
}

func TestReconcileDeleteCleansUpFinalizer(t *testing.T) {
	du := newDirectUpdate("deleting", "1.29.0")
	du.Finalizers = []string{finalizerName}
	now := metav1.Now()
	du.DeletionTimestamp = &now
	du.Status.OperationID = "op-3"

	r, c := newReconciler(t, du)

	if _, err := r.reconcileDelete(context.Background(), du); err != nil {
		t.Fatalf("reconcileDelete: %v", err)
	}

	var fetched cupcakev1.DirectUpdate
	err := c.Get(context.Background(), client.ObjectKey{Name: "deleting"}, &fetched)
	if err != nil && !apierrors.IsNotFound(err) {
		t.Fatalf("unexpected get error: %v", err)
	}
	if err == nil && containsString(fetched.Finalizers, finalizerName) {
		t.Fatalf("expected finalizer to be removed, got %v", fetched.Finalizers)
	}
}

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
