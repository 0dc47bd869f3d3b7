package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// UpdateScheduleSpec declares a recurring upgrade cadence.
type UpdateScheduleSpec struct {
	// Schedule is a standard 5-field cron expression.
	// +kubebuilder:validation:Required
	Schedule string `json:"schedule"`

	// Suspended pauses firing without deleting the resource.
	// +optional
	Suspended bool `json:"suspended,omitempty"`

	// Update is the DirectUpdateSpec used to build each ScheduledUpdate.
	// +kubebuilder:validation:Required
	Update DirectUpdateSpec `json:"update"`
}

// UpdateScheduleStatus is the controller-owned observed state of an UpdateSchedule.
type UpdateScheduleStatus struct {
	LastRun               string `json:"lastRun,omitempty"`
	NextRun               string `json:"nextRun,omitempty"`
	Message               string `json:"message,omitempty"`
	CreatedScheduledUpdate string `json:"createdScheduledUpdate,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Cluster
// +kubebuilder:printcolumn:name="Schedule",type=string,JSONPath=`.spec.schedule`
// +kubebuilder:printcolumn:name="Suspended",type=boolean,JSONPath=`.spec.suspended`
// +kubebuilder:printcolumn:name="NextRun",type=string,JSONPath=`.status.nextRun`

// UpdateSchedule requests a recurring upgrade on a cron-like cadence.
type UpdateSchedule struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   UpdateScheduleSpec   `json:"spec,omitempty"`
	Status UpdateScheduleStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// UpdateScheduleList is a list of UpdateSchedule resources.
type UpdateScheduleList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []UpdateSchedule `json:"items"`
}

func init() {
	SchemeBuilder.Register(&UpdateSchedule{}, &UpdateScheduleList{})
}
