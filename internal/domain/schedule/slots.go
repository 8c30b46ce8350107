package schedule

import "time"

// CandidateSlot is an ephemeral, display-only slot. It is never a
// reservation; booking re-validates everything against live data.
type CandidateSlot struct {
	Start         time.Time
	End           time.Time
	Available     bool
	Reason        string
	NextAvailable bool
}

// SlotRequest bundles the inputs for one barber-day generation run.
// Windows and GridOrigin are business-tz; Busy intervals are UTC (the
// candidate is converted before comparison).
type SlotRequest struct {
	Windows       []Window
	GridOrigin    time.Time // business open; slot boundaries count from here
	EarliestStart time.Time // zero value = no lower bound
	Granularity   time.Duration

	// New-appointment shape used for the conflict probe. Duration
	// defaults to Granularity when zero.
	Duration     time.Duration
	BufferBefore time.Duration
	BufferAfter  time.Duration

	Busy              []Busy
	MarkNextAvailable bool
}

// BuildDaySlots walks the working windows in granularity steps and emits
// one candidate per step that fits a window. Steps below EarliestStart
// are clipped away, and the first step of each window is re-aligned to
// the grid counted from GridOrigin. All arithmetic is done in business
// tz; only the busy comparison drops to UTC.
//
// Generation is pure: identical inputs yield identical output.
func BuildDaySlots(req SlotRequest) []CandidateSlot {
	duration := req.Duration
	if duration <= 0 {
		duration = req.Granularity
	}

	var slots []CandidateSlot
	for _, w := range req.Windows {
		start := w.Start
		if !req.EarliestStart.IsZero() && start.Before(req.EarliestStart) {
			start = req.EarliestStart
		}
		start = AlignUp(start, req.GridOrigin, req.Granularity)

		for cur := start; !cur.Add(req.Granularity).After(w.End); cur = cur.Add(req.Granularity) {
			slot := CandidateSlot{
				Start:     cur,
				End:       cur.Add(req.Granularity),
				Available: true,
			}

			probeStart := cur.Add(-req.BufferBefore).UTC()
			probeEnd := cur.Add(duration).Add(req.BufferAfter).UTC()
			if hit := FindConflicting(probeStart, probeEnd, req.Busy); hit != nil {
				slot.Available = false
				slot.Reason = "slot_conflict"
			}

			slots = append(slots, slot)
		}
	}

	if req.MarkNextAvailable {
		for i := range slots {
			if slots[i].Available {
				slots[i].NextAvailable = true
				break
			}
		}
	}

	return slots
}

// FirstAvailable returns the first free slot in time order, or nil.
func FirstAvailable(slots []CandidateSlot) *CandidateSlot {
	for i := range slots {
		if slots[i].Available {
			return &slots[i]
		}
	}
	return nil
}
