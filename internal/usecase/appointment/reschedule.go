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
	"github.com/trimworks/booking-api/internal/metrics"
	"github.com/trimworks/booking-api/internal/models"
	"github.com/trimworks/booking-api/internal/notify"
	"github.com/trimworks/booking-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

// UpdateAppointmentInput covers reschedules and non-time updates. Nil
// fields stay untouched.
type UpdateAppointmentInput struct {
	BarbershopID  uint
	AppointmentID uint

	Date      *string // YYYY-MM-DD
	Time      *string // HH:mm
	ServiceID *uint
	BarberID  *uint
	Notes     *string

	ActorID *uint
}

// ======================================================
// USE CASE
// ======================================================

type UpdateAppointment struct {
	repo     domain.Repository
	clk      clock.Clock
	audit    *audit.Dispatcher
	notifier notify.Notifier
	slots    *cache.SlotCache
	log      *zap.Logger
}

func NewUpdateAppointment(
	repo domain.Repository,
	clk clock.Clock,
	auditDisp *audit.Dispatcher,
	notifier notify.Notifier,
	slots *cache.SlotCache,
	log *zap.Logger,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo:     repo,
		clk:      clk,
		audit:    auditDisp,
		notifier: notifier,
		slots:    slots,
		log:      log,
	}
}

// Execute re-validates a changed appointment exactly as if it were newly
// created, excluding its own row from the conflict set. Notes-only edits
// skip the slot search; a barber or service change re-runs the conflict
// check even when the time stands still.
func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}
	loc := timezone.Location(shop.Timezone)
	now := uc.clk.Now()

	var updated *models.Appointment
	var oldBarberID uint
	var oldDate, newDate string
	slotTouched := false

	err = uc.repo.Transact(ctx, func(tx domain.Repository) error {
		ap, err := tx.GetAppointment(ctx, in.BarbershopID, in.AppointmentID)
		if err != nil {
			return httperr.ErrBusiness("appointment_not_found")
		}
		if err := domain.CanModify(ap, now); err != nil {
			return err
		}

		oldBarberID = ap.BarberID
		oldDate = ap.StartTime.In(loc).Format("2006-01-02")

		// Service change rewrites the booked shape (duration, buffers,
		// price) from the catalog.
		if in.ServiceID != nil && *in.ServiceID != ap.ServiceID {
			svc, err := tx.GetService(ctx, in.BarbershopID, *in.ServiceID)
			if err != nil || !svc.Active {
				return httperr.ErrBusiness(httperr.CodeInvalidService)
			}
			ap.ServiceID = svc.ID
			ap.DurationMin = svc.DurationMin
			ap.BufferBeforeMin = svc.BufferBeforeMin
			ap.BufferAfterMin = svc.BufferAfterMin
			ap.Price = svc.Price
			slotTouched = true
		}

		barber := &models.User{ID: ap.BarberID}
		if in.BarberID != nil && *in.BarberID != ap.BarberID {
			b, err := tx.GetBarber(ctx, in.BarbershopID, *in.BarberID)
			if err != nil || !b.Active {
				return httperr.ErrBusiness(httperr.CodeBarberUnavailable)
			}
			ap.BarberID = b.ID
			barber = b
			slotTouched = true
		} else {
			b, err := tx.GetBarber(ctx, in.BarbershopID, ap.BarberID)
			if err != nil {
				return httperr.ErrBusiness(httperr.CodeBarberUnavailable)
			}
			barber = b
		}

		start := ap.StartTime.In(loc)
		if in.Date != nil || in.Time != nil {
			dateStr := start.Format("2006-01-02")
			timeStr := start.Format("15:04")
			if in.Date != nil {
				dateStr = *in.Date
			}
			if in.Time != nil {
				timeStr = *in.Time
			}
			start, err = time.ParseInLocation("2006-01-02 15:04", dateStr+" "+timeStr, loc)
			if err != nil {
				return httperr.ErrBusiness(httperr.CodeInvalidDate)
			}
			slotTouched = true
		}

		if in.Notes != nil {
			ap.Notes = *in.Notes
		}

		if slotTouched {
			shape := &models.Service{
				DurationMin:     ap.DurationMin,
				BufferBeforeMin: ap.BufferBeforeMin,
				BufferAfterMin:  ap.BufferAfterMin,
			}
			if err := slotCheck(ctx, tx, shop, barber, shape, start, now, ap.ID); err != nil {
				return err
			}
			ap.StartTime = start.UTC()
			ap.EndTime = start.Add(time.Duration(ap.DurationMin) * time.Minute).UTC()
		}

		newDate = ap.StartTime.In(loc).Format("2006-01-02")
		updated = ap
		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeSlotConflict) {
			metrics.BookingConflict()
		}
		return nil, err
	}

	if slotTouched {
		uc.slots.Bump(ctx, oldBarberID, oldDate)
		uc.slots.Bump(ctx, updated.BarberID, newDate)
	}

	uc.audit.Dispatch(audit.Event{
		BarbershopID: shop.ID,
		UserID:       in.ActorID,
		Action:       "appointment_updated",
		Entity:       "appointment",
		EntityID:     &updated.ID,
	})

	if slotTouched {
		apCopy := *updated
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := uc.notifier.AppointmentRescheduled(ctx, &apCopy); err != nil {
				uc.log.Warn("notify_failed", zap.Uint("appointment_id", apCopy.ID), zap.Error(err))
			}
		}()
	}

	return updated, nil
}
