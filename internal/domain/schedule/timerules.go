package schedule

import (
	"time"

	"github.com/trimworks/booking-api/internal/httperr"
)

// TimeRules is the slice of barbershop configuration the scheduling core
// needs. Clock times are HH:mm strings interpreted in Location.
type TimeRules struct {
	Location          *time.Location
	OpenTime          string
	CloseTime         string
	GranularityMin    int
	LeadMinutes       int
	MaxAdvanceDays    int
	ShowNextAvailable bool
}

func (r TimeRules) Granularity() time.Duration {
	return time.Duration(r.GranularityMin) * time.Minute
}

// OpenAt anchors the configured open time onto the given date.
func (r TimeRules) OpenAt(date time.Time) time.Time {
	return AtClock(date, r.OpenTime, r.Location)
}

func (r TimeRules) CloseAt(date time.Time) time.Time {
	return AtClock(date, r.CloseTime, r.Location)
}

// LastBookableDay is the latest date (midnight, business tz) still inside
// the advance window relative to now.
func (r TimeRules) LastBookableDay(now time.Time) time.Time {
	return DayOf(now.In(r.Location)).AddDate(0, 0, r.MaxAdvanceDays)
}

// AtClock combines a date with an HH:mm clock string in loc. Malformed
// input yields the zero time so callers can reject it instead of getting
// a silent midnight. Shop open/close times are validated at the write
// path and carry database defaults, so TimeRules accessors treat a valid
// clock string as a precondition.
func AtClock(date time.Time, hm string, loc *time.Location) time.Time {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	)
}

// DayOf truncates to midnight, preserving location.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EarliestStart resolves the earliest bookable instant on targetDate,
// in business timezone.
//
// Future dates open at business open time. Today opens at
// max(open, now+lead) rounded up to the next granularity step counted
// from open time, so the grid stays aligned no matter when "now" falls.
// Past dates are a caller error.
func EarliestStart(rules TimeRules, targetDate, now time.Time) (time.Time, error) {
	nowLocal := now.In(rules.Location)
	day := DayOf(targetDate.In(rules.Location))
	today := DayOf(nowLocal)

	open := rules.OpenAt(day)

	if day.After(today) {
		return open, nil
	}
	if day.Before(today) {
		return time.Time{}, httperr.ErrBusiness(httperr.CodeInvalidDate)
	}

	earliest := nowLocal.Add(time.Duration(rules.LeadMinutes) * time.Minute)
	if earliest.Before(open) {
		earliest = open
	}

	// Rounding via duration arithmetic carries cleanly across hour and
	// day boundaries (23:50 + 15min grid lands on 00:00 next day).
	return AlignUp(earliest, open, rules.Granularity()), nil
}

// AlignUp rounds t up to the next multiple of step measured from origin.
// t at an exact boundary is returned unchanged.
func AlignUp(t, origin time.Time, step time.Duration) time.Time {
	if step <= 0 {
		return t
	}
	d := t.Sub(origin)
	if rem := d % step; rem > 0 {
		d += step - rem
	}
	return origin.Add(d)
}
