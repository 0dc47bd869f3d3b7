package backup

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/ricardomolendijk/cupcake/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestTriggerCreatesConfigMap(t *testing.T) {
	cl := fake.NewClientBuilder().Build()
	cfg := &config.Config{Namespace: "kube-system", Backup: config.BackupStore{Enabled: true}}
	coord := New(cl, testLogger(), cfg)

	if !coord.Enabled() {
		t.Fatal("expected backup coordinator to be enabled")
	}

	info, err := coord.Trigger(context.Background(), "node-1.example.com", "op-123")
	if err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	if info.Node != "node-1.example.com" {
		t.Errorf("info.Node = %q", info.Node)
	}
	if info.Status != "initiated" {
		t.Errorf("info.Status = %q, want initiated", info.Status)
	}

	var cm corev1.ConfigMap
	name := sanitizeName("backup-op-123-node-1.example.com")
	if err := cl.Get(context.Background(), client.ObjectKey{Namespace: "kube-system", Name: name}, &cm); err != nil {
		t.Fatalf("expected backup ConfigMap %s to exist: %v", name, err)
	}
}

func TestCheckStatusNotFoundMeansInProgress(t *testing.T) {
	cl := fake.NewClientBuilder().Build()
	cfg := &config.Config{Namespace: "kube-system"}
	coord := New(cl, testLogger(), cfg)

	status := coord.CheckStatus(context.Background(), "op-123", "node-1")
	if status.Completed || status.Success {
		t.Fatalf("expected in-progress status, got %+v", status)
	}
	if status.Message != "Backup in progress" {
		t.Errorf("message = %q", status.Message)
	}
}

func TestCheckStatusCompleted(t *testing.T) {
	name := sanitizeName("backup-status-op-123-node-1")
	cl := fake.NewClientBuilder().WithObjects(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "kube-system"},
		Data: map[string]string{
			"completed":     "true",
			"success":       "true",
			"snapshot_path": "/var/lib/etcd-snapshots/snap.db",
		},
	}).Build()

	coord := New(cl, testLogger(), &config.Config{Namespace: "kube-system"})
	status := coord.CheckStatus(context.Background(), "op-123", "node-1")
	if !status.Completed || !status.Success {
		t.Fatalf("expected completed+success, got %+v", status)
	}
	if status.SnapshotPath == "" {
		t.Error("expected snapshot path to be populated")
	}
}

func TestCleanupDeletesLabeledConfigMaps(t *testing.T) {
	labels := map[string]string{labelOperationID: "op-123", labelBackup: "true"}
	cl := fake.NewClientBuilder().WithObjects(
		&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "backup-op-123-node-1", Namespace: "kube-system", Labels: labels}},
		&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "backup-status-op-123-node-1", Namespace: "kube-system", Labels: labels}},
		&corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: "unrelated", Namespace: "kube-system"}},
	).Build()

	coord := New(cl, testLogger(), &config.Config{Namespace: "kube-system"})
	coord.Cleanup(context.Background(), "op-123")

	var remaining corev1.ConfigMapList
	if err := cl.List(context.Background(), &remaining); err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining.Items) != 1 || remaining.Items[0].Name != "unrelated" {
		t.Errorf("expected only the unrelated ConfigMap to survive, got %v", remaining.Items)
	}
}
