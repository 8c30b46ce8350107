package appointment

import (
	"context"

	"github.com/trimworks/booking-api/internal/audit"
	"github.com/trimworks/booking-api/internal/clock"
	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
)

// ======================================================
// STATUS TRANSITIONS — confirm / complete
// ======================================================

type ConfirmAppointment struct {
	repo  domain.Repository
	clk   clock.Clock
	audit *audit.Dispatcher
}

func NewConfirmAppointment(
	repo domain.Repository,
	clk clock.Clock,
	auditDisp *audit.Dispatcher,
) *ConfirmAppointment {
	return &ConfirmAppointment{repo: repo, clk: clk, audit: auditDisp}
}

func (uc *ConfirmAppointment) Execute(
	ctx context.Context,
	barbershopID uint,
	appointmentID uint,
	actorID *uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, barbershopID, appointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	if err := domain.Confirm(ap, uc.clk.Now()); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       actorID,
		Action:       "appointment_confirmed",
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})
	return ap, nil
}

type CompleteAppointment struct {
	repo  domain.Repository
	clk   clock.Clock
	audit *audit.Dispatcher
}

func NewCompleteAppointment(
	repo domain.Repository,
	clk clock.Clock,
	auditDisp *audit.Dispatcher,
) *CompleteAppointment {
	return &CompleteAppointment{repo: repo, clk: clk, audit: auditDisp}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	barbershopID uint,
	appointmentID uint,
	actorID *uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, barbershopID, appointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	if err := domain.Complete(ap, uc.clk.Now()); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: barbershopID,
		UserID:       actorID,
		Action:       "appointment_completed",
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})
	return ap, nil
}
