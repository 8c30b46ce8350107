package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trimworks/booking-api/internal/audit"
	"github.com/trimworks/booking-api/internal/cache"
	"github.com/trimworks/booking-api/internal/clock"
	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
	"github.com/trimworks/booking-api/internal/notify"
	"github.com/trimworks/booking-api/internal/timezone"
)

// ======================================================
// USE CASE
// ======================================================

type CancelAppointment struct {
	repo     domain.Repository
	clk      clock.Clock
	audit    *audit.Dispatcher
	notifier notify.Notifier
	slots    *cache.SlotCache
	log      *zap.Logger
}

func NewCancelAppointment(
	repo domain.Repository,
	clk clock.Clock,
	auditDisp *audit.Dispatcher,
	notifier notify.Notifier,
	slots *cache.SlotCache,
	log *zap.Logger,
) *CancelAppointment {
	return &CancelAppointment{
		repo:     repo,
		clk:      clk,
		audit:    auditDisp,
		notifier: notifier,
		slots:    slots,
		log:      log,
	}
}

// Execute cancels by internal id, for authenticated staff.
func (uc *CancelAppointment) Execute(
	ctx context.Context,
	barbershopID uint,
	appointmentID uint,
	actorID *uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, barbershopID, appointmentID)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return uc.cancel(ctx, ap, actorID)
}

// ExecuteByCode cancels via the public code handed out at booking time,
// so guests can cancel without an account.
func (uc *CancelAppointment) ExecuteByCode(
	ctx context.Context,
	barbershopID uint,
	code string,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointmentByCode(ctx, barbershopID, code)
	if err != nil {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return uc.cancel(ctx, ap, nil)
}

func (uc *CancelAppointment) cancel(
	ctx context.Context,
	ap *models.Appointment,
	actorID *uint,
) (*models.Appointment, error) {

	now := uc.clk.Now()
	if err := domain.Cancel(ap, now); err != nil {
		return nil, err
	}
	if err := uc.repo.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	// The freed interval becomes bookable again immediately.
	shop, err := uc.repo.GetBarbershopByID(ctx, ap.BarbershopID)
	if err == nil {
		loc := timezone.Location(shop.Timezone)
		uc.slots.Bump(ctx, ap.BarberID, ap.StartTime.In(loc).Format("2006-01-02"))
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: ap.BarbershopID,
		UserID:       actorID,
		Action:       "appointment_cancelled",
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	apCopy := *ap
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.notifier.AppointmentCancelled(ctx, &apCopy); err != nil {
			uc.log.Warn("notify_failed", zap.Uint("appointment_id", apCopy.ID), zap.Error(err))
		}
	}()

	return ap, nil
}
