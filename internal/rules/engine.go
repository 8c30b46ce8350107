package rules

import (
	"context"
	"time"

	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/domain/schedule"
)

// BookingContext is what the rule engine sees about a proposed booking,
// after the time and conflict checks already passed.
type BookingContext struct {
	BarbershopID uint
	BarberID     uint
	ServiceID    uint
	ClientID     uint
	Start        time.Time // UTC
	DurationMin  int
}

// Engine validates domain rules beyond time and conflicts. Any returned
// violation is a hard reject; the list is surfaced to the client verbatim.
type Engine interface {
	Validate(ctx context.Context, bc BookingContext) ([]string, error)
}

// FrequencyEngine caps how many active bookings a client may hold on one
// calendar day.
type FrequencyEngine struct {
	repo      domain.Repository
	maxPerDay int64
}

func NewFrequencyEngine(repo domain.Repository, maxPerDay int64) *FrequencyEngine {
	if maxPerDay <= 0 {
		maxPerDay = 2
	}
	return &FrequencyEngine{repo: repo, maxPerDay: maxPerDay}
}

func (e *FrequencyEngine) Validate(ctx context.Context, bc BookingContext) ([]string, error) {
	if bc.ClientID == 0 {
		return nil, nil
	}

	day := schedule.DayOf(bc.Start)
	count, err := e.repo.CountClientAppointmentsBetween(ctx, bc.ClientID, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	if count >= e.maxPerDay {
		return []string{"client_daily_booking_limit_reached"}, nil
	}
	return nil, nil
}

// NopEngine accepts everything; used where no extra rules apply.
type NopEngine struct{}

func (NopEngine) Validate(ctx context.Context, bc BookingContext) ([]string, error) {
	return nil, nil
}
