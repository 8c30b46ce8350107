package appointment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/trimworks/booking-api/internal/cache"
	"github.com/trimworks/booking-api/internal/clock"
	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/domain/schedule"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
	"github.com/trimworks/booking-api/internal/timezone"
)

// ======================================================
// INPUT / OUTPUT
// ======================================================

type AvailabilityInput struct {
	BarbershopID uint
	BarberID     uint
	ServiceID    uint
	Date         string // YYYY-MM-DD, business timezone
	DisplayTZ    string // IANA name; empty = business timezone
}

// SlotDTO is a CandidateSlot rendered in the display timezone. Display
// only; holding one reserves nothing.
type SlotDTO struct {
	Start         string    `json:"start"` // HH:mm
	End           string    `json:"end"`
	StartAt       time.Time `json:"start_at"`
	Available     bool      `json:"available"`
	Reason        string    `json:"reason,omitempty"`
	NextAvailable bool      `json:"next_available,omitempty"`
}

type AvailabilityResult struct {
	Date     string    `json:"date"`
	Timezone string    `json:"timezone"`
	Slots    []SlotDTO `json:"slots"`

	// Filled when the requested date has no free slot: first date inside
	// the advance window with one, scanning forward day by day.
	NextAvailableDate  string     `json:"next_available_date,omitempty"`
	NextAvailableStart *time.Time `json:"next_available_start,omitempty"`
}

// ======================================================
// USE CASE
// ======================================================

type GetAvailability struct {
	repo  domain.Repository
	clk   clock.Clock
	slots *cache.SlotCache
	log   *zap.Logger
}

func NewGetAvailability(
	repo domain.Repository,
	clk clock.Clock,
	slots *cache.SlotCache,
	log *zap.Logger,
) *GetAvailability {
	return &GetAvailability{repo: repo, clk: clk, slots: slots, log: log}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in AvailabilityInput,
) (*AvailabilityResult, error) {

	shop, err := uc.repo.GetBarbershopByID(ctx, in.BarbershopID)
	if err != nil {
		return nil, err
	}
	rules := timeRulesFor(shop)

	svc, err := uc.repo.GetService(ctx, in.BarbershopID, in.ServiceID)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidService)
	}

	day, err := time.ParseInLocation("2006-01-02", in.Date, rules.Location)
	if err != nil {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidDate)
	}

	displayTZ := in.DisplayTZ
	if displayTZ == "" {
		displayTZ = shop.Timezone
	}

	cacheKey := uc.slots.Key(ctx, in.BarberID, in.ServiceID, in.Date, displayTZ)
	var cached AvailabilityResult
	if uc.slots.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	now := uc.clk.Now()
	slots, err := daySlots(ctx, uc.repo, rules, in.BarberID, svc, day, now, rules.ShowNextAvailable)
	if err != nil {
		return nil, err
	}

	displayLoc := timezone.Location(displayTZ)
	out := &AvailabilityResult{
		Date:     in.Date,
		Timezone: displayTZ,
		Slots:    renderSlots(slots, displayLoc),
	}

	if rules.ShowNextAvailable && schedule.FirstAvailable(slots) == nil {
		uc.scanNextAvailable(ctx, rules, in.BarberID, svc, day, now, displayLoc, out)
	}

	uc.slots.Set(ctx, cacheKey, out)
	return out, nil
}

// scanNextAvailable walks subsequent dates inside the advance window and
// stops at the first one holding any free slot.
func (uc *GetAvailability) scanNextAvailable(
	ctx context.Context,
	rules schedule.TimeRules,
	barberID uint,
	svc *models.Service,
	day time.Time,
	now time.Time,
	displayLoc *time.Location,
	out *AvailabilityResult,
) {
	last := rules.LastBookableDay(now)
	for d := day.AddDate(0, 0, 1); !d.After(last); d = d.AddDate(0, 0, 1) {
		slots, err := daySlots(ctx, uc.repo, rules, barberID, svc, d, now, false)
		if err != nil {
			uc.log.Warn("next_available_scan_failed", zap.Error(err))
			return
		}
		if first := schedule.FirstAvailable(slots); first != nil {
			start := first.Start.In(displayLoc)
			out.NextAvailableDate = d.Format("2006-01-02")
			out.NextAvailableStart = &start
			return
		}
	}
}

// daySlots generates the candidate sequence for one barber-day. Interval
// arithmetic stays in the business timezone; the conflict probe runs in
// UTC inside the generator.
func daySlots(
	ctx context.Context,
	repo domain.Repository,
	rules schedule.TimeRules,
	barberID uint,
	svc *models.Service,
	day time.Time,
	now time.Time,
	markNext bool,
) ([]schedule.CandidateSlot, error) {

	earliest, err := schedule.EarliestStart(rules, day, now)
	if err != nil {
		return nil, err
	}

	barberRules, err := repo.ListAvailabilityRules(ctx, barberID)
	if err != nil {
		return nil, err
	}

	var windows []schedule.Window
	if len(barberRules) == 0 {
		// Barber without a personal schedule works the business window.
		windows = []schedule.Window{schedule.BusinessWindow(rules, day)}
	} else {
		windows = schedule.WindowsForDate(barberRules, day, rules.Location)
	}

	busy, err := busyForDay(ctx, repo, barberID, day, 0)
	if err != nil {
		return nil, err
	}

	return schedule.BuildDaySlots(schedule.SlotRequest{
		Windows:           windows,
		GridOrigin:        rules.OpenAt(day),
		EarliestStart:     earliest,
		Granularity:       rules.Granularity(),
		Duration:          time.Duration(svc.DurationMin) * time.Minute,
		BufferBefore:      time.Duration(svc.BufferBeforeMin) * time.Minute,
		BufferAfter:       time.Duration(svc.BufferAfterMin) * time.Minute,
		Busy:              busy,
		MarkNextAvailable: markNext,
	}), nil
}

func renderSlots(slots []schedule.CandidateSlot, loc *time.Location) []SlotDTO {
	out := make([]SlotDTO, 0, len(slots))
	for _, s := range slots {
		start := s.Start.In(loc)
		out = append(out, SlotDTO{
			Start:         start.Format("15:04"),
			End:           s.End.In(loc).Format("15:04"),
			StartAt:       start,
			Available:     s.Available,
			Reason:        s.Reason,
			NextAvailable: s.NextAvailable,
		})
	}
	return out
}
