package appointment

import (
	"time"

	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Cancel is a soft state change; the row is retained for history. An
// appointment whose start already passed can no longer be touched.
func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}
	if !now.Before(ap.StartTime) {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Confirm(ap *models.Appointment, now time.Time) error {
	if err := CanConfirm(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusConfirmed)
	ap.ConfirmedAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// CanModify guards reschedules and non-time updates: terminal or
// already-started appointments are immutable.
func CanModify(ap *models.Appointment, now time.Time) error {
	if err := CanReschedule(Status(ap.Status)); err != nil {
		return err
	}
	if !now.Before(ap.StartTime) {
		return httperr.ErrBusiness(httperr.CodeInvalidTransition)
	}
	return nil
}
