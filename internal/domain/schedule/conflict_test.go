package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimworks/booking-api/internal/models"
)

func at(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

func TestOverlapsHalfOpen(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", at(10, 0), at(10, 30), at(10, 0), at(10, 30), true},
		{"partial", at(10, 0), at(10, 30), at(10, 15), at(10, 45), true},
		{"contained", at(10, 0), at(11, 0), at(10, 15), at(10, 30), true},
		{"back to back does not overlap", at(10, 0), at(10, 30), at(10, 30), at(11, 0), false},
		{"disjoint", at(10, 0), at(10, 30), at(12, 0), at(12, 30), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd))
			// Symmetry.
			assert.Equal(t, tc.want, Overlaps(tc.bStart, tc.bEnd, tc.aStart, tc.aEnd))
		})
	}
}

func TestBusyFromAppointmentsAppliesBuffers(t *testing.T) {
	apps := []models.Appointment{
		{
			ID:             1,
			StartTime:      at(10, 0),
			EndTime:        at(10, 30),
			DurationMin:    30,
			BufferAfterMin: 10,
			Status:         "scheduled",
		},
	}

	busy := BusyFromAppointments(apps, 0)
	require.Len(t, busy, 1)

	// Padded interval runs 10:00-10:40; a 10:35 start collides, 10:40 not.
	assert.True(t, HasConflict(at(10, 35), at(11, 5), busy))
	assert.False(t, HasConflict(at(10, 40), at(11, 10), busy))
	assert.True(t, busy[0].BookedStart.Equal(at(10, 0)))
}

func TestBusyFromAppointmentsSkipsCancelledAndExcluded(t *testing.T) {
	apps := []models.Appointment{
		{ID: 1, StartTime: at(10, 0), DurationMin: 30, Status: "cancelled"},
		{ID: 2, StartTime: at(11, 0), DurationMin: 30, Status: "scheduled"},
		{ID: 3, StartTime: at(12, 0), DurationMin: 30, Status: "completed"},
	}

	busy := BusyFromAppointments(apps, 2)
	require.Len(t, busy, 1)
	assert.Equal(t, uint(3), busy[0].AppointmentID)

	// Cancelled slot is free for rebooking.
	assert.False(t, HasConflict(at(10, 0), at(10, 30), busy))
}
