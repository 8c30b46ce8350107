package appointment

import (
	"context"
	"time"

	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/domain/schedule"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
	"github.com/trimworks/booking-api/internal/timezone"
)

// conflictQueryMargin widens the appointment query around the target day
// so paddings that spill over midnight are still fetched. Purely a query
// detail: the detector always decides by exact interval overlap.
const conflictQueryMargin = 2 * time.Hour

func timeRulesFor(shop *models.Barbershop) schedule.TimeRules {
	return schedule.TimeRules{
		Location:          timezone.Location(shop.Timezone),
		OpenTime:          shop.OpenTime,
		CloseTime:         shop.CloseTime,
		GranularityMin:    shop.SlotGranularityMin,
		LeadMinutes:       shop.MinLeadMinutes,
		MaxAdvanceDays:    shop.MaxAdvanceDays,
		ShowNextAvailable: shop.ShowNextAvailable,
	}
}

// slotCheck is the full precondition ladder for committing an
// appointment at start (business tz) with the given service shape.
// excludeID drops the appointment's own row from the conflict set when
// rescheduling. Callers run it against live data inside a transaction;
// slot-generation results are never trusted as proof of availability.
func slotCheck(
	ctx context.Context,
	repo domain.Repository,
	shop *models.Barbershop,
	barber *models.User,
	svc *models.Service,
	start time.Time,
	now time.Time,
	excludeID uint,
) error {

	rules := timeRulesFor(shop)
	day := schedule.DayOf(start.In(rules.Location))
	end := start.Add(time.Duration(svc.DurationMin) * time.Minute)

	// Advance window.
	if day.After(rules.LastBookableDay(now)) {
		return httperr.ErrBusiness(httperr.CodeAdvanceWindowExceeded)
	}

	// Lead time, evaluated against the grid-aligned earliest instant.
	earliest, err := schedule.EarliestStart(rules, day, now)
	if err != nil {
		return err
	}
	if start.Before(earliest) {
		return httperr.ErrBusiness(httperr.CodeLeadTimeViolation)
	}

	// Business hours bound the interval regardless of barber windows.
	biz := schedule.BusinessWindow(rules, day)
	if start.Before(biz.Start) || end.After(biz.End) {
		return httperr.ErrBusiness(httperr.CodeOutsideBusinessHours)
	}

	// Barber working windows. A barber with no rules at all works the
	// business-wide window; one with rules but none covering this day is
	// unavailable.
	barberRules, err := repo.ListAvailabilityRules(ctx, barber.ID)
	if err != nil {
		return err
	}
	if len(barberRules) > 0 {
		windows := schedule.WindowsForDate(barberRules, day, rules.Location)
		if !intervalInWindows(start, end, windows) {
			if len(windows) == 0 {
				return httperr.ErrBusiness(httperr.CodeBarberUnavailable)
			}
			return httperr.ErrBusiness(httperr.CodeOutsideBusinessHours)
		}
	}

	// Conflict detection over the padded interval, UTC frame.
	busy, err := busyForDay(ctx, repo, barber.ID, day, excludeID)
	if err != nil {
		return err
	}
	probeStart := start.Add(-time.Duration(svc.BufferBeforeMin) * time.Minute).UTC()
	probeEnd := end.Add(time.Duration(svc.BufferAfterMin) * time.Minute).UTC()
	if hit := schedule.FindConflicting(probeStart, probeEnd, busy); hit != nil {
		return httperr.SlotConflictError{
			ConflictingID:    hit.AppointmentID,
			ConflictingStart: hit.BookedStart,
		}
	}

	return nil
}

func busyForDay(
	ctx context.Context,
	repo domain.Repository,
	barberID uint,
	day time.Time,
	excludeID uint,
) ([]schedule.Busy, error) {

	from := day.Add(-conflictQueryMargin).UTC()
	to := day.AddDate(0, 0, 1).Add(conflictQueryMargin).UTC()

	apps, err := repo.ListActiveAppointments(ctx, barberID, from, to)
	if err != nil {
		return nil, err
	}
	return schedule.BusyFromAppointments(apps, excludeID), nil
}

func intervalInWindows(start, end time.Time, windows []schedule.Window) bool {
	for _, w := range windows {
		if !start.Before(w.Start) && !end.After(w.End) {
			return true
		}
	}
	return false
}
