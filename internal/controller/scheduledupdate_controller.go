package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
)

// scheduledUpdateRequeueInterval mirrors the 60s kopf.timer tick the
// one-shot schedule check ran on.
const scheduledUpdateRequeueInterval = 60 * time.Second

// ScheduledUpdateReconciler fires a DirectUpdate once spec.scheduleAt
// arrives.
type ScheduledUpdateReconciler struct {
	Client client.Client
	Logger *logrus.Logger
}

// SetupWithManager registers the reconciler with mgr.
func (r *ScheduledUpdateReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&cupcakev1.ScheduledUpdate{}).
		Complete(r)
}

// Reconcile implements the ScheduledUpdate state machine.
func (r *ScheduledUpdateReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var su cupcakev1.ScheduledUpdate
	if err := r.Client.Get(ctx, req.NamespacedName, &su); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	scheduledAt, err := time.Parse(time.RFC3339, su.Spec.ScheduleAt)
	if err != nil {
		return ctrl.Result{}, r.patch(ctx, &su, func(status *cupcakev1.ScheduledUpdateStatus) {
			status.Phase = cupcakev1.ScheduledPhaseFailed
			status.Message = fmt.Sprintf("invalid scheduleAt format: %v", err)
		})
	}

	if su.Status.Phase == "" {
		return ctrl.Result{RequeueAfter: scheduledUpdateRequeueInterval}, r.patch(ctx, &su, func(status *cupcakev1.ScheduledUpdateStatus) {
			status.Phase = cupcakev1.ScheduledPhaseScheduled
			status.Message = fmt.Sprintf("Scheduled for %s", su.Spec.ScheduleAt)
		})
	}

	if su.Status.Phase != cupcakev1.ScheduledPhaseScheduled {
		return ctrl.Result{}, nil
	}

	if time.Now().UTC().Before(scheduledAt) {
		return ctrl.Result{RequeueAfter: scheduledUpdateRequeueInterval}, nil
	}

	return ctrl.Result{}, r.execute(ctx, &su)
}

func (r *ScheduledUpdateReconciler) execute(ctx context.Context, su *cupcakev1.ScheduledUpdate) error {
	du := &cupcakev1.DirectUpdate{
		ObjectMeta: metav1.ObjectMeta{
			Name: fmt.Sprintf("%s-direct", su.Name),
			OwnerReferences: []metav1.OwnerReference{
				*metav1.NewControllerRef(su, cupcakev1.GroupVersion.WithKind("ScheduledUpdate")),
			},
		},
		Spec: su.Spec.Update,
	}

	if err := r.Client.Create(ctx, du); err != nil {
		r.Logger.WithError(err).WithField("name", su.Name).Error("controller: failed to create DirectUpdate from schedule")
		return err
	}

	r.Logger.WithFields(logrus.Fields{"scheduledUpdate": su.Name, "directUpdate": du.Name}).Info("controller: executing scheduled update")

	return r.patch(ctx, su, func(status *cupcakev1.ScheduledUpdateStatus) {
		status.Phase = cupcakev1.ScheduledPhaseExecuting
		status.ExecutedAt = nowRFC3339()
		status.Message = "DirectUpdate created"
		status.CreatedDirectUpdate = du.Name
	})
}

func (r *ScheduledUpdateReconciler) patch(ctx context.Context, su *cupcakev1.ScheduledUpdate, mutate func(*cupcakev1.ScheduledUpdateStatus)) error {
	original := su.DeepCopy()
	mutate(&su.Status)
	return r.Client.Status().Patch(ctx, su, client.MergeFrom(original))
}
