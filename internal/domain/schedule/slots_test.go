package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotStarts(slots []CandidateSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.Format("15:04"))
	}
	return out
}

func TestBuildDaySlotsWalksGrid(t *testing.T) {
	loc := saoPaulo(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	open := AtClock(day, "09:00", loc)

	slots := BuildDaySlots(SlotRequest{
		Windows:     []Window{{Start: open, End: AtClock(day, "11:00", loc)}},
		GridOrigin:  open,
		Granularity: 30 * time.Minute,
	})

	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, slotStarts(slots))
	for _, s := range slots {
		assert.True(t, s.Available)
	}
}

func TestBuildDaySlotsClipsToEarliestStartAligned(t *testing.T) {
	loc := saoPaulo(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	open := AtClock(day, "09:00", loc)

	// Earliest mid-grid: the first slot re-aligns up to 10:30.
	slots := BuildDaySlots(SlotRequest{
		Windows:       []Window{{Start: open, End: AtClock(day, "12:00", loc)}},
		GridOrigin:    open,
		EarliestStart: AtClock(day, "10:07", loc),
		Granularity:   30 * time.Minute,
	})

	assert.Equal(t, []string{"10:30", "11:00", "11:30"}, slotStarts(slots))
}

func TestBuildDaySlotsMarksConflictsWithBuffers(t *testing.T) {
	loc := saoPaulo(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	open := AtClock(day, "10:00", loc)

	// Existing 10:00-10:30 with 10min after-buffer blocks everything
	// whose padded probe touches 10:00-10:40.
	busy := []Busy{{
		AppointmentID: 7,
		Start:         open.UTC(),
		End:           open.Add(40 * time.Minute).UTC(),
		BookedStart:   open.UTC(),
	}}

	slots := BuildDaySlots(SlotRequest{
		Windows:     []Window{{Start: open, End: AtClock(day, "12:00", loc)}},
		GridOrigin:  open,
		Granularity: 5 * time.Minute,
		Duration:    30 * time.Minute,
		Busy:        busy,
	})

	byStart := map[string]CandidateSlot{}
	for _, s := range slots {
		byStart[s.Start.Format("15:04")] = s
	}

	require.Contains(t, byStart, "10:35")
	require.Contains(t, byStart, "10:40")
	assert.False(t, byStart["10:35"].Available)
	assert.Equal(t, "slot_conflict", byStart["10:35"].Reason)
	assert.True(t, byStart["10:40"].Available)
}

func TestBuildDaySlotsRejectsStepsNotFittingWindow(t *testing.T) {
	loc := saoPaulo(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	open := AtClock(day, "09:00", loc)

	slots := BuildDaySlots(SlotRequest{
		Windows:     []Window{{Start: open, End: AtClock(day, "10:15", loc)}},
		GridOrigin:  open,
		Granularity: 30 * time.Minute,
	})

	// 10:00 would end 10:30, past the window end; only two slots fit.
	assert.Equal(t, []string{"09:00", "09:30"}, slotStarts(slots))
}

func TestBuildDaySlotsIsDeterministic(t *testing.T) {
	loc := saoPaulo(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	open := AtClock(day, "09:00", loc)

	req := SlotRequest{
		Windows:     []Window{{Start: open, End: AtClock(day, "12:00", loc)}},
		GridOrigin:  open,
		Granularity: 15 * time.Minute,
		Busy: []Busy{{
			Start: AtClock(day, "09:30", loc).UTC(),
			End:   AtClock(day, "10:00", loc).UTC(),
		}},
	}

	first := BuildDaySlots(req)
	second := BuildDaySlots(req)
	assert.Equal(t, first, second)
}

func TestBuildDaySlotsMarksNextAvailable(t *testing.T) {
	loc := saoPaulo(t)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	open := AtClock(day, "09:00", loc)

	slots := BuildDaySlots(SlotRequest{
		Windows:     []Window{{Start: open, End: AtClock(day, "10:30", loc)}},
		GridOrigin:  open,
		Granularity: 30 * time.Minute,
		Busy: []Busy{{
			Start: AtClock(day, "09:00", loc).UTC(),
			End:   AtClock(day, "09:30", loc).UTC(),
		}},
		MarkNextAvailable: true,
	})

	require.Len(t, slots, 3)
	assert.False(t, slots[0].Available)
	assert.True(t, slots[1].NextAvailable)
	assert.False(t, slots[2].NextAvailable)
}
