package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	cupcakev1 "github.com/ricardomolendijk/cupcake/api/v1"
)

// updateScheduleRequeueInterval mirrors the 300s kopf.timer tick the
// recurring schedule check ran on.
const updateScheduleRequeueInterval = 300 * time.Second

// UpdateScheduleReconciler evaluates a cron expression and creates a
// ScheduledUpdate each time it comes due.
type UpdateScheduleReconciler struct {
	Client client.Client
	Logger *logrus.Logger
}

// SetupWithManager registers the reconciler with mgr.
func (r *UpdateScheduleReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&cupcakev1.UpdateSchedule{}).
		Complete(r)
}

// Reconcile implements the UpdateSchedule state machine.
func (r *UpdateScheduleReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	var us cupcakev1.UpdateSchedule
	if err := r.Client.Get(ctx, req.NamespacedName, &us); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	if us.Spec.Suspended {
		r.Logger.WithField("name", us.Name).Debug("controller: update schedule is suspended")
		return ctrl.Result{RequeueAfter: updateScheduleRequeueInterval}, nil
	}

	schedule, err := cron.ParseStandard(us.Spec.Schedule)
	if err != nil {
		return ctrl.Result{}, r.patch(ctx, &us, func(status *cupcakev1.UpdateScheduleStatus) {
			status.Message = fmt.Sprintf("invalid cron schedule: %v", err)
		})
	}

	now := time.Now().UTC()
	next := schedule.Next(lastRunOrEpoch(us.Status.LastRun))

	if now.Before(next) {
		return ctrl.Result{RequeueAfter: updateScheduleRequeueInterval}, r.patch(ctx, &us, func(status *cupcakev1.UpdateScheduleStatus) {
			status.NextRun = next.Format(time.RFC3339)
		})
	}

	return ctrl.Result{RequeueAfter: updateScheduleRequeueInterval}, r.fire(ctx, &us, schedule, now)
}

func (r *UpdateScheduleReconciler) fire(ctx context.Context, us *cupcakev1.UpdateSchedule, schedule cron.Schedule, now time.Time) error {
	su := &cupcakev1.ScheduledUpdate{
		ObjectMeta: metav1.ObjectMeta{
			Name: fmt.Sprintf("%s-%d", us.Name, now.Unix()),
			OwnerReferences: []metav1.OwnerReference{
				*metav1.NewControllerRef(us, cupcakev1.GroupVersion.WithKind("UpdateSchedule")),
			},
		},
		Spec: cupcakev1.ScheduledUpdateSpec{
			ScheduleAt: now.Format(time.RFC3339),
			Update:     us.Spec.Update,
		},
	}

	if err := r.Client.Create(ctx, su); err != nil {
		r.Logger.WithError(err).WithField("name", us.Name).Error("controller: failed to create ScheduledUpdate from schedule")
		return err
	}

	r.Logger.WithFields(logrus.Fields{"updateSchedule": us.Name, "scheduledUpdate": su.Name}).Info("controller: firing recurring schedule")

	return r.patch(ctx, us, func(status *cupcakev1.UpdateScheduleStatus) {
		status.LastRun = now.Format(time.RFC3339)
		status.NextRun = schedule.Next(now).Format(time.RFC3339)
		status.Message = "ScheduledUpdate created"
		status.CreatedScheduledUpdate = su.Name
	})
}

func (r *UpdateScheduleReconciler) patch(ctx context.Context, us *cupcakev1.UpdateSchedule, mutate func(*cupcakev1.UpdateScheduleStatus)) error {
	original := us.DeepCopy()
	mutate(&us.Status)
	return r.Client.Status().Patch(ctx, us, client.MergeFrom(original))
}

// lastRunOrEpoch returns the last fire time, or the Unix epoch when the
// schedule has never fired, so schedule.Next() finds the first due time.
func lastRunOrEpoch(lastRun string) time.Time {
	if lastRun == "" {
		return time.Unix(0, 0).UTC()
	}
	t, err := time.Parse(time.RFC3339, lastRun)
	if err != nil {
		return time.Unix(0, 0).UTC()
	}
	return t
}
