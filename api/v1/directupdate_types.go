package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Phase is the lifecycle phase of a DirectUpdate.
type Phase string

const (
	PhasePending           Phase = "Pending"
	PhaseInProgress        Phase = "InProgress"
	PhaseRequiresAttention Phase = "RequiresAttention"
	PhaseSucceeded         Phase = "Succeeded"
	PhaseFailed            Phase = "Failed"
	PhaseCancelled         Phase = "Cancelled"
)

// IsTerminal reports whether the phase accepts no further controller-initiated writes.
func (p Phase) IsTerminal() bool {
	switch p {
	case PhaseSucceeded, PhaseFailed, PhaseCancelled:
		return true
	default:
		return false
	}
}

// NodePhase is the lifecycle phase of a single node's upgrade.
type NodePhase string

const (
	NodePhasePending     NodePhase = "Pending"
	NodePhaseDraining    NodePhase = "Draining"
	NodePhaseUpgrading   NodePhase = "Upgrading"
	NodePhaseVerifying   NodePhase = "Verifying"
	NodePhaseUncordoning NodePhase = "Uncordoning"
	NodePhaseCompleted   NodePhase = "Completed"
	NodePhaseFailed      NodePhase = "Failed"
)

// InFlight reports whether the node-phase counts against a concurrency budget.
func (p NodePhase) InFlight() bool {
	switch p {
	case NodePhaseDraining, NodePhaseUpgrading, NodePhaseVerifying, NodePhaseUncordoning:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the controller stops acting on this node.
func (p NodePhase) IsTerminal() bool {
	return p == NodePhaseCompleted || p == NodePhaseFailed
}

// DefaultComponents is the component set upgraded when spec.components is empty.
var DefaultComponents = []string{"kubeadm", "kubelet"}

// CanarySpec designates a worker subset upgraded first.
type CanarySpec struct {
	// Enabled turns on canary-first worker ordering.
	// +optional
	Enabled bool `json:"enabled,omitempty"`
	// Nodes is the ordered list of worker names to upgrade first.
	// +optional
	Nodes []string `json:"nodes,omitempty"`
}

// AirGappedSpec configures an offline-bundle preflight check.
type AirGappedSpec struct {
	// Enabled requires the air-gap bundle preflight check to run.
	// +optional
	Enabled bool `json:"enabled,omitempty"`
	// BundleConfigMap names the ConfigMap expected in kube-system.
	// +optional
	BundleConfigMap string `json:"bundleConfigMap,omitempty"`
}

// DirectUpdateSpec is the user-declared intent for an immediate upgrade.
type DirectUpdateSpec struct {
	// TargetVersion is the desired Kubernetes version, e.g. "1.28.0" or "v1.28.0".
	// +kubebuilder:validation:Required
	TargetVersion string `json:"targetVersion"`

	// Components lists the node components the agent should upgrade.
	// Defaults to {kubeadm, kubelet} when empty.
	// +optional
	Components []string `json:"components,omitempty"`

	// NodeSelector restricts the plan to nodes matching every label exactly.
	// +optional
	NodeSelector map[string]string `json:"nodeSelector,omitempty"`

	// Concurrency bounds how many worker nodes upgrade simultaneously.
	// +kubebuilder:default=1
	// +kubebuilder:validation:Minimum=1
	Concurrency int `json:"concurrency,omitempty"`

	// PreflightChecks enables the preflight gate before InProgress.
	// +kubebuilder:default=true
	PreflightChecks *bool `json:"preflightChecks,omitempty"`

	// Canary orders specific workers ahead of the rest.
	// +optional
	Canary CanarySpec `json:"canary,omitempty"`

	// AirGapped gates the upgrade on an offline bundle ConfigMap.
	// +optional
	AirGapped AirGappedSpec `json:"airGapped,omitempty"`
}

// RunPreflightChecks returns the effective preflightChecks setting (default true).
func (s DirectUpdateSpec) RunPreflightChecks() bool {
	if s.PreflightChecks == nil {
		return true
	}
	return *s.PreflightChecks
}

// ComponentsOrDefault returns spec.Components, falling back to DefaultComponents.
func (s DirectUpdateSpec) ComponentsOrDefault() []string {
	if len(s.Components) == 0 {
		return DefaultComponents
	}
	return s.Components
}

// ConcurrencyOrDefault clamps spec.Concurrency to at least 1.
func (s DirectUpdateSpec) ConcurrencyOrDefault() int {
	if s.Concurrency < 1 {
		return 1
	}
	return s.Concurrency
}

// UpgradePathStatus records the version steps the operation must traverse.
type UpgradePathStatus struct {
	CurrentVersion string   `json:"currentVersion"`
	TargetVersion  string   `json:"targetVersion"`
	Steps          []string `json:"steps"`
	CurrentStep    int      `json:"currentStep"`
	TotalSteps     int      `json:"totalSteps"`
}

// PreflightCheckResult is the outcome of one named preflight check.
type PreflightCheckResult struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// PreflightResultsStatus aggregates every preflight check outcome.
type PreflightResultsStatus struct {
	Passed bool                   `json:"passed"`
	Checks []PreflightCheckResult `json:"checks"`
}

// BackupInfoStatus records the etcd snapshot handshake for the current operation.
type BackupInfoStatus struct {
	EtcdSnapshot string `json:"etcdSnapshot"`
	Timestamp    string `json:"timestamp"`
	Node         string `json:"node"`
	Status       string `json:"status"`
}

// NodeStatus is the controller's view of one node's upgrade progress.
type NodeStatus struct {
	Phase       NodePhase `json:"phase"`
	LastStep    string    `json:"lastStep,omitempty"`
	Message     string    `json:"message,omitempty"`
	StartedAt   string    `json:"startedAt,omitempty"`
	LastUpdated string    `json:"lastUpdated,omitempty"`
}

// SummaryStatus is the derived per-phase-class node count.
type SummaryStatus struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Upgrading int `json:"upgrading"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
}

// DirectUpdateStatus is the controller-owned observed state of a DirectUpdate.
type DirectUpdateStatus struct {
	Phase        Phase                   `json:"phase,omitempty"`
	OperationID  string                  `json:"operationID,omitempty"`
	StartedAt    string                  `json:"startedAt,omitempty"`
	LastUpdated  string                  `json:"lastUpdated,omitempty"`
	CompletedAt  string                  `json:"completedAt,omitempty"`
	Message      string                  `json:"message,omitempty"`
	UpgradePath  *UpgradePathStatus      `json:"upgradePath,omitempty"`
	Preflight    *PreflightResultsStatus `json:"preflightResults,omitempty"`
	BackupInfo   *BackupInfoStatus       `json:"backupInfo,omitempty"`
	Nodes        map[string]NodeStatus   `json:"nodes,omitempty"`
	Summary      SummaryStatus           `json:"summary,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Cluster
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="Target",type=string,JSONPath=`.spec.targetVersion`
// +kubebuilder:printcolumn:name="Age",type=date,JSONPath=`.metadata.creationTimestamp`

// DirectUpdate requests an immediate in-place upgrade of the cluster's nodes.
type DirectUpdate struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DirectUpdateSpec   `json:"spec,omitempty"`
	Status DirectUpdateStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// DirectUpdateList is a list of DirectUpdate resources.
type DirectUpdateList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DirectUpdate `json:"items"`
}

func init() {
	SchemeBuilder.Register(&DirectUpdate{}, &DirectUpdateList{})
}
