// Package metrics exposes the Prometheus instrumentation the operator
// emits for operation lifecycle transitions and per-node upgrade progress.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

var (
	// OperationsTotal counts phase transitions for a DirectUpdate operation.
	OperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upgrade_operations_total",
		Help: "Total number of upgrade operation phase transitions",
	}, []string{"phase", "operation_id"})

	// OperationNodesTotal gauges how many nodes in an operation currently
	// sit in a given node-phase bucket.
	OperationNodesTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "upgrade_operation_nodes_total",
		Help: "Number of nodes in various upgrade states for an operation",
	}, []string{"operation_id", "status"})

	// NodeStepDuration records how long each named upgrade step took for a
	// node within an operation.
	NodeStepDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "upgrade_node_step_duration_seconds",
		Help: "Duration of node upgrade steps",
	}, []string{"operation_id", "node", "step"})

	// InProgress gauges whether an operation is currently active (1) or not (0).
	InProgress = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "upgrade_in_progress",
		Help: "Number of upgrades currently in progress",
	}, []string{"operation_id"})
)

func init() {
	metrics.Registry.MustRegister(OperationsTotal, OperationNodesTotal, NodeStepDuration, InProgress)
}

// RecordPhaseTransition increments the operations counter for a phase change.
func RecordPhaseTransition(phase, operationID string) {
	OperationsTotal.WithLabelValues(phase, operationID).Inc()
}

// SetNodeCount reports the current number of nodes in status for an operation.
func SetNodeCount(operationID, status string, count int) {
	OperationNodesTotal.WithLabelValues(operationID, status).Set(float64(count))
}

// ObserveStepDuration records how long a named step took for a node.
func ObserveStepDuration(operationID, node, step string, seconds float64) {
	NodeStepDuration.WithLabelValues(operationID, node, step).Observe(seconds)
}

// SetInProgress marks an operation active or inactive.
func SetInProgress(operationID string, active bool) {
	value := 0.0
	if active {
		value = 1.0
	}
	InProgress.WithLabelValues(operationID).Set(value)
}
