package state

import (
	"context"
	"io"
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
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

func TestComputeSummary(t *testing.T) {
	nodes := map[string]cupcakev1.NodeStatus{
		"a": {Phase: cupcakev1.NodePhaseCompleted},
		"b": {Phase: cupcakev1.NodePhaseUpgrading},
		"c": {Phase: cupcakev1.NodePhaseDraining},
		"d": {Phase: cupcakev1.NodePhasePending},
		"e": {Phase: cupcakev1.NodePhaseFailed},
	}

	summary := ComputeSummary(nodes)
	want := cupcakev1.SummaryStatus{Total: 5, Completed: 1, Upgrading: 2, Pending: 1, Failed: 1}
	if summary != want {
		t.Errorf("ComputeSummary = %+v, want %+v", summary, want)
	}
}

func TestComputeSummaryEmpty(t *testing.T) {
	summary := ComputeSummary(nil)
	if summary != (cupcakev1.SummaryStatus{}) {
		t.Errorf("ComputeSummary(nil) = %+v, want zero value", summary)
	}
}

func TestDeepMergeIdentity(t *testing.T) {
	base := map[string]any{"a": 1, "b": map[string]any{"c": 2}}
	got := DeepMerge(base, map[string]any{})
	if !reflect.DeepEqual(got, base) {
		t.Errorf("DeepMerge(base, {}) = %+v, want %+v", got, base)
	}
}

func TestDeepMergeSelf(t *testing.T) {
	base := map[string]any{"a": 1, "b": map[string]any{"c": 2}}
	got := DeepMerge(base, base)
	if !reflect.DeepEqual(got, base) {
		t.Errorf("DeepMerge(base, base) = %+v, want %+v", got, base)
	}
}

func TestDeepMergeNestedOverride(t *testing.T) {
	base := map[string]any{
		"nodes": map[string]any{
			"node-1": map[string]any{"phase": "Pending"},
			"node-2": map[string]any{"phase": "Completed"},
		},
	}
	updates := map[string]any{
		"nodes": map[string]any{
			"node-1": map[string]any{"phase": "Draining"},
		},
	}

	got := DeepMerge(base, updates)
	nodes := got["nodes"].(map[string]any)
	if nodes["node-1"].(map[string]any)["phase"] != "Draining" {
		t.Error("expected node-1 phase to be overwritten")
	}
	if nodes["node-2"].(map[string]any)["phase"] != "Completed" {
		t.Error("expected node-2 to be preserved by the merge")
	}

	if base["nodes"].(map[string]any)["node-1"].(map[string]any)["phase"] != "Pending" {
		t.Error("DeepMerge must not mutate base")
	}
}

func TestUpdateNodeStatusPatchesSummary(t *testing.T) {
	du := &cupcakev1.DirectUpdate{
		ObjectMeta: metav1.ObjectMeta{Name: "upgrade-1"},
		Spec:       cupcakev1.DirectUpdateSpec{TargetVersion: "1.28.0"},
	}

	cl := fake.NewClientBuilder().
		WithScheme(testScheme(t)).
		WithStatusSubresource(&cupcakev1.DirectUpdate{}).
		WithObjects(du).
		Build()

	patcher := New(cl, testLogger())
	if err := patcher.UpdateNodeStatus(context.Background(), du, "worker-1", cupcakev1.NodePhaseDraining, "draining pods", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("UpdateNodeStatus: %v", err)
	}

	if du.Status.Nodes["worker-1"].Phase != cupcakev1.NodePhaseDraining {
		t.Errorf("node phase = %s, want Draining", du.Status.Nodes["worker-1"].Phase)
	}
	if du.Status.Summary.Upgrading != 1 {
		t.Errorf("summary.Upgrading = %d, want 1", du.Status.Summary.Upgrading)
	}
	if du.Status.Nodes["worker-1"].StartedAt != "2026-01-01T00:00:00Z" {
		t.Errorf("expected StartedAt to be stamped on first non-pending transition")
	}
}
