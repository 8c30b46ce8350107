package schedule

import (
	"time"

	"github.com/trimworks/booking-api/internal/models"
)

// Busy is an existing appointment's padded interval. The detector is
// timezone-agnostic: callers must hand it candidate and busy intervals in
// the same frame (UTC for stored appointments).
type Busy struct {
	AppointmentID uint
	Start         time.Time
	End           time.Time

	// BookedStart is the appointment's unpadded start, used for
	// user-facing conflict messages.
	BookedStart time.Time
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Half-open semantics: back-to-back intervals touching at the boundary do
// not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// FindConflicting returns the first busy interval overlapping
// [start,end), or nil.
func FindConflicting(start, end time.Time, busy []Busy) *Busy {
	for i := range busy {
		if Overlaps(start, end, busy[i].Start, busy[i].End) {
			return &busy[i]
		}
	}
	return nil
}

func HasConflict(start, end time.Time, busy []Busy) bool {
	return FindConflicting(start, end, busy) != nil
}

// BusyFromAppointments builds the comparison set from active (anything
// not cancelled) appointments, excluding excludeID when rescheduling.
// Completed appointments stay in the set; they are in the past and
// therefore harmless.
func BusyFromAppointments(apps []models.Appointment, excludeID uint) []Busy {
	out := make([]Busy, 0, len(apps))
	for i := range apps {
		ap := &apps[i]
		if ap.IsCancelled() {
			continue
		}
		if excludeID != 0 && ap.ID == excludeID {
			continue
		}
		out = append(out, Busy{
			AppointmentID: ap.ID,
			Start:         ap.PaddedStart().UTC(),
			End:           ap.PaddedEnd().UTC(),
			BookedStart:   ap.StartTime.UTC(),
		})
	}
	return out
}
