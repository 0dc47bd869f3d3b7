// Package backup drives the etcd-snapshot ConfigMap handshake between the
// operator and the node agent.
package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
	"github.com/ricardomolendijk/cupcake/internal/config"
)

const (
	labelManagedBy   = "app.kubernetes.io/managed-by"
	labelOperationID = "cupcake.ricardomolendijk.com/operation-id"
	labelBackup      = "cupcake.ricardomolendijk.com/backup"

	managedByValue = "cupcake"
)

// Status is the outcome of a backup-status poll.
type Status struct {
	Completed    bool
	Success      bool
	Message      string
	SnapshotPath string
	UploadPath   string
}

// Coordinator triggers and tracks etcd backups via ConfigMaps the node
// agent watches and fulfils.
type Coordinator struct {
	client    client.Client
	logger    *logrus.Logger
	namespace string
	enabled   bool
}

// New builds a Coordinator from the operator configuration.
func New(c client.Client, logger *logrus.Logger, cfg *config.Config) *Coordinator {
	return &Coordinator{
		client:    c,
		logger:    logger,
		namespace: cfg.Namespace,
		enabled:   cfg.Backup.Enabled,
	}
}

// Enabled reports whether the external backup store is configured.
func (b *Coordinator) Enabled() bool {
	return b.enabled
}

// Trigger creates the backup request ConfigMap for a control-plane node and
// returns the backup info to record on the DirectUpdate status.
func (b *Coordinator) Trigger(ctx context.Context, nodeName, operationID string) (cupcakev1.BackupInfoStatus, error) {
	now := time.Now().UTC()
	timestamp := now.Format("20060102-150405")
	snapshotName := fmt.Sprintf("etcd-snapshot-%s-%s", operationID, timestamp)
	cmName := sanitizeName(fmt.Sprintf("backup-%s-%s", operationID, nodeName))

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      cmName,
			Namespace: b.namespace,
			Labels: map[string]string{
				labelManagedBy:   managedByValue,
				labelOperationID: operationID,
				labelBackup:      "true",
			},
		},
		Data: map[string]string{
			"operation_id":  operationID,
			"node_name":     nodeName,
			"snapshot_name": snapshotName,
			"backup_type":   "etcd",
			"timestamp":     timestamp,
		},
	}

	if err := b.client.Create(ctx, cm); err != nil {
		b.logger.WithError(err).WithField("node", nodeName).Error("backup: failed to create backup request ConfigMap")
		return cupcakev1.BackupInfoStatus{}, fmt.Errorf("create backup ConfigMap %s: %w", cmName, err)
	}

	b.logger.WithFields(logrus.Fields{"node": nodeName, "configmap": cmName}).Info("backup: requested etcd snapshot")

	return cupcakev1.BackupInfoStatus{
		EtcdSnapshot: snapshotName,
		Timestamp:    now.Format(time.RFC3339),
		Node:         nodeName,
		Status:       "initiated",
	}, nil
}

// CheckStatus reads the status ConfigMap the agent writes back once a
// backup completes. A 404 means the backup is still in progress.
func (b *Coordinator) CheckStatus(ctx context.Context, operationID, nodeName string) Status {
	name := sanitizeName(fmt.Sprintf("backup-status-%s-%s", operationID, nodeName))

	var cm corev1.ConfigMap
	err := b.client.Get(ctx, client.ObjectKey{Namespace: b.namespace, Name: name}, &cm)
	switch {
	case err == nil:
		return Status{
			Completed:    cm.Data["completed"] == "true",
			Success:      cm.Data["success"] == "true",
			Message:      cm.Data["message"],
			SnapshotPath: cm.Data["snapshot_path"],
			UploadPath:   cm.Data["upload_path"],
		}
	case apierrors.IsNotFound(err):
		return Status{Completed: false, Success: false, Message: "Backup in progress"}
	default:
		b.logger.WithError(err).WithField("node", nodeName).Error("backup: failed to check backup status")
		return Status{Completed: false, Success: false, Message: fmt.Sprintf("error checking status: %v", err)}
	}
}

// Cleanup deletes every backup-related ConfigMap for operationID. Individual
// deletion failures are logged, not returned: cleanup is best-effort and
// must not block the controller from reaching a terminal phase.
func (b *Coordinator) Cleanup(ctx context.Context, operationID string) {
	var cms corev1.ConfigMapList
	err := b.client.List(ctx, &cms,
		client.InNamespace(b.namespace),
		client.MatchingLabels{labelOperationID: operationID, labelBackup: "true"},
	)
	if err != nil {
		b.logger.WithError(err).WithField("operationID", operationID).Error("backup: failed to list backup ConfigMaps for cleanup")
		return
	}

	for i := range cms.Items {
		cm := &cms.Items[i]
		if err := b.client.Delete(ctx, cm); err != nil && !apierrors.IsNotFound(err) {
			b.logger.WithError(err).WithField("configmap", cm.Name).Warn("backup: failed to delete backup ConfigMap")
			continue
		}
		b.logger.WithField("configmap", cm.Name).Info("backup: deleted backup ConfigMap")
	}
}

// sanitizeName replaces dots with dashes so operation/node identifiers
// produce valid Kubernetes object names.
func sanitizeName(name string) string {
	return strings.ReplaceAll(name, ".", "-")
}
