package schedule

import (
	"sort"
	"time"

	"github.com/trimworks/booking-api/internal/models"
)

// Window is a half-open working interval within one day, business tz.
type Window struct {
	Start time.Time
	End   time.Time
}

// BusinessWindow is the shop-wide open/close window for a date, used when
// no barber scoping applies.
func BusinessWindow(rules TimeRules, date time.Time) Window {
	return Window{Start: rules.OpenAt(date), End: rules.CloseAt(date)}
}

// WindowsForDate resolves a barber's working windows for one date: every
// active rule for that weekday whose effective period covers the date,
// minus its break sub-window, unioned. Split shifts are two rules for the
// same weekday. No rule for the weekday means no windows, not an error.
func WindowsForDate(rules []models.AvailabilityRule, date time.Time, loc *time.Location) []Window {
	day := DayOf(date.In(loc))
	weekday := int(day.Weekday())

	var windows []Window
	for i := range rules {
		r := &rules[i]
		if !r.Active || r.Weekday != weekday {
			continue
		}
		if !effectiveOn(r, day) {
			continue
		}
		if r.StartTime == "" || r.EndTime == "" {
			continue
		}

		start := AtClock(day, r.StartTime, loc)
		end := AtClock(day, r.EndTime, loc)
		if start.IsZero() || end.IsZero() || !start.Before(end) {
			continue
		}

		bs := AtClock(day, r.BreakStart, loc)
		be := AtClock(day, r.BreakEnd, loc)
		if r.BreakStart != "" && r.BreakEnd != "" && !bs.IsZero() && !be.IsZero() {
			windows = appendWindow(windows, start, minTime(end, bs))
			windows = appendWindow(windows, maxTime(start, be), end)
		} else {
			windows = appendWindow(windows, start, end)
		}
	}

	return mergeWindows(windows)
}

func effectiveOn(r *models.AvailabilityRule, day time.Time) bool {
	if r.EffectiveFrom != nil && day.Before(DayOf(r.EffectiveFrom.In(day.Location()))) {
		return false
	}
	if r.EffectiveUntil != nil && day.After(DayOf(r.EffectiveUntil.In(day.Location()))) {
		return false
	}
	return true
}

func appendWindow(ws []Window, start, end time.Time) []Window {
	if start.Before(end) {
		ws = append(ws, Window{Start: start, End: end})
	}
	return ws
}

// mergeWindows sorts and unions overlapping or touching windows so split
// shifts never double-emit slots.
func mergeWindows(ws []Window) []Window {
	if len(ws) < 2 {
		return ws
	}
	sort.Slice(ws, func(i, j int) bool { return ws[i].Start.Before(ws[j].Start) })

	out := ws[:1]
	for _, w := range ws[1:] {
		last := &out[len(out)-1]
		if !w.Start.After(last.End) {
			if w.End.After(last.End) {
				last.End = w.End
			}
			continue
		}
		out = append(out, w)
	}
	return out
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
