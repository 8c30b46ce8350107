package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trimworks/booking-api/internal/audit"
	"github.com/trimworks/booking-api/internal/cache"
	"github.com/trimworks/booking-api/internal/clock"
	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/metrics"
	"github.com/trimworks/booking-api/internal/models"
	"github.com/trimworks/booking-api/internal/notify"
	"github.com/trimworks/booking-api/internal/payment"
	"github.com/trimworks/booking-api/internal/rules"
	"github.com/trimworks/booking-api/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	BarbershopID uint
	BarberID     uint // 0 = any professional, assigned at commit
	ServiceID    uint

	ClientName  string
	ClientPhone string
	ClientEmail string

	Date  string // YYYY-MM-DD, business timezone
	Time  string // HH:mm
	Notes string

	// Actor for the audit trail; nil for guest bookings.
	ActorID *uint
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo     domain.Repository
	engine   rules.Engine
	clk      clock.Clock
	picker   *BarberPicker
	audit    *audit.Dispatcher
	notifier notify.Notifier
	gateway  payment.Gateway
	slots    *cache.SlotCache
	log      *zap.Logger
}

func NewCreateAppointment(
	repo domain.Repository,
	engine rules.Engine,
	clk clock.Clock,
	picker *BarberPicker,
	auditDisp *audit.Dispatcher,
	notifier notify.Notifier,
	gateway payment.Gateway,
	slots *cache.SlotCache,
	log *zap.Logger,
) *CreateAppointment {
	return &CreateAppointment{
		repo:     repo,
		engine:   engine,
		clk:      clk,
		picker:   picker,
		audit:    auditDisp,
		notifier: notifier,
		gateway:  gateway,
		slots:    slots,
		log:      log,
	}
}

// Execute commits a booking. Every precondition is re-checked against
// live, locked data inside one transaction; earlier slot-generation
// output is never trusted as proof of availability. Post-commit side
// effects (audit, notification, payment) are best effort.
func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}

	start, err := time.ParseInLocation(
		"2006-01-02 15:04",
		in.Date+" "+in.Time,
		timezone.Location(shop.Timezone),
	)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidDate)
	}

	svc, err := uc.repo.GetService(ctx, in.BarbershopID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidService)
	}
	if !svc.Active {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidService)
	}

	client, err := uc.repo.GetOrCreateClient(
		ctx,
		in.BarbershopID,
		in.ClientName,
		in.ClientPhone,
		in.ClientEmail,
	)
	if err != nil {
		return nil, err
	}

	now := uc.clk.Now()
	var ap *models.Appointment

	err = uc.repo.Transact(ctx, func(tx domain.Repository) error {
		barber, err := uc.resolveBarber(ctx, tx, shop, svc, in.BarberID, start, now)
		if err != nil {
			return err
		}

		if err := slotCheck(ctx, tx, shop, barber, svc, start, now, 0); err != nil {
			return err
		}

		violations, err := uc.engine.Validate(ctx, rules.BookingContext{
			BarbershopID: shop.ID,
			BarberID:     barber.ID,
			ServiceID:    svc.ID,
			ClientID:     client.ID,
			Start:        start.UTC(),
			DurationMin:  svc.DurationMin,
		})
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			return httperr.RuleViolationError{Violations: violations}
		}

		end := start.Add(time.Duration(svc.DurationMin) * time.Minute)
		ap = &models.Appointment{
			PublicCode:      uuid.NewString(),
			BarbershopID:    shop.ID,
			BarberID:        barber.ID,
			ClientID:        client.ID,
			ServiceID:       svc.ID,
			StartTime:       start.UTC(),
			EndTime:         end.UTC(),
			DurationMin:     svc.DurationMin,
			BufferBeforeMin: svc.BufferBeforeMin,
			BufferAfterMin:  svc.BufferAfterMin,
			Price:           svc.Price,
			Status:          string(domain.InitialStatus()),
			Notes:           in.Notes,
		}

		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		if httperr.IsBusiness(err, httperr.CodeSlotConflict) {
			metrics.BookingConflict()
		}
		return nil, err
	}

	metrics.BookingCommitted()
	uc.slots.Bump(ctx, ap.BarberID, in.Date)

	uc.audit.Dispatch(audit.Event{
		BarbershopID: shop.ID,
		UserID:       in.ActorID,
		Action:       "appointment_created",
		Entity:       "appointment",
		EntityID:     &ap.ID,
	})

	uc.afterCommit(ap, svc)

	return ap, nil
}

func (uc *CreateAppointment) resolveBarber(
	ctx context.Context,
	tx domain.Repository,
	shop *models.Barbershop,
	svc *models.Service,
	barberID uint,
	start time.Time,
	now time.Time,
) (*models.User, error) {

	if barberID == 0 {
		return uc.picker.Pick(ctx, tx, shop, svc, start, now)
	}

	barber, err := tx.GetBarber(ctx, shop.ID, barberID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeBarberUnavailable)
	}
	if !barber.Active {
		return nil, httperr.ErrBusiness(httperr.CodeBarberUnavailable)
	}
	return barber, nil
}

// afterCommit fires notification and payment without touching booking
// state; their failure is logged and nothing more.
func (uc *CreateAppointment) afterCommit(ap *models.Appointment, svc *models.Service) {
	apCopy := *ap
	svcCopy := *svc

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := uc.notifier.AppointmentBooked(ctx, &apCopy); err != nil {
			uc.log.Warn("notify_failed", zap.Uint("appointment_id", apCopy.ID), zap.Error(err))
		}
		if err := uc.gateway.StartCheckout(ctx, &apCopy, &svcCopy); err != nil {
			uc.log.Warn("payment_checkout_failed", zap.Uint("appointment_id", apCopy.ID), zap.Error(err))
		}
	}()
}
