package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ScheduledPhase is the lifecycle phase of a ScheduledUpdate.
type ScheduledPhase string

const (
	ScheduledPhaseScheduled ScheduledPhase = "Scheduled"
	ScheduledPhaseExecuting ScheduledPhase = "Executing"
	ScheduledPhaseFailed    ScheduledPhase = "Failed"
)

// ScheduledUpdateSpec declares a one-shot future upgrade.
type ScheduledUpdateSpec struct {
	// ScheduleAt is the RFC3339 timestamp at which the update fires.
	// +kubebuilder:validation:Required
	ScheduleAt string `json:"scheduleAt"`

	// Update is the DirectUpdateSpec created verbatim when the schedule fires.
	// +kubebuilder:validation:Required
	Update DirectUpdateSpec `json:"update"`
}

// ScheduledUpdateStatus is the controller-owned observed state of a ScheduledUpdate.
type ScheduledUpdateStatus struct {
	Phase              ScheduledPhase `json:"phase,omitempty"`
	Message            string         `json:"message,omitempty"`
	ExecutedAt         string         `json:"executedAt,omitempty"`
	CreatedDirectUpdate string        `json:"createdDirectUpdate,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Cluster
// +kubebuilder:printcolumn:name="Phase",type=string,JSONPath=`.status.phase`
// +kubebuilder:printcolumn:name="ScheduleAt",type=string,JSONPath=`.spec.scheduleAt`

// ScheduledUpdate requests a one-shot upgrade that fires at a future time.
type ScheduledUpdate struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ScheduledUpdateSpec   `json:"spec,omitempty"`
	Status ScheduledUpdateStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ScheduledUpdateList is a list of ScheduledUpdate resources.
type ScheduledUpdateList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []ScheduledUpdate `json:"items"`
}

func init() {
	SchemeBuilder.Register(&ScheduledUpdate{}, &ScheduledUpdateList{})
}
