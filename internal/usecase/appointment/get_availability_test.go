package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimworks/booking-api/internal/clock"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
)

func newAvailabilityUC(repo *stubRepo, clk *clock.MockClock) *GetAvailability {
	return NewGetAvailability(repo, clk, nilCache(), noopLogger())
}

func TestGetAvailabilityTodayStartsAtAlignedLeadTime(t *testing.T) {
	repo, clk := fixtureRepo()
	loc, _ := time.LoadLocation(testTZ)

	// 09:07 + 60min lead = 10:07; the first slot on the 09:00 grid is 10:30.
	clk.Set(time.Date(2026, 3, 10, 9, 7, 0, 0, loc))

	uc := newAvailabilityUC(repo, clk)
	out, err := uc.Execute(context.Background(), AvailabilityInput{
		BarbershopID: 1,
		BarberID:     10,
		ServiceID:    1,
		Date:         "2026-03-10",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Slots)
	assert.Equal(t, "10:30", out.Slots[0].Start)
	assert.Equal(t, testTZ, out.Timezone)
}

func TestGetAvailabilityMarksBookedSlots(t *testing.T) {
	repo, clk := fixtureRepo()
	createUC := newCreateUC(repo, clk, nil)

	_, err := createUC.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	require.NoError(t, err)

	uc := newAvailabilityUC(repo, clk)
	out, err := uc.Execute(context.Background(), AvailabilityInput{
		BarbershopID: 1,
		BarberID:     10,
		ServiceID:    1,
		Date:         "2026-03-11",
	})
	require.NoError(t, err)

	byStart := map[string]SlotDTO{}
	for _, s := range out.Slots {
		byStart[s.Start] = s
	}

	require.Contains(t, byStart, "10:00")
	assert.False(t, byStart["10:00"].Available)
	assert.Equal(t, "slot_conflict", byStart["10:00"].Reason)
	assert.True(t, byStart["10:30"].Available)
}

func TestGetAvailabilityRendersDisplayTimezone(t *testing.T) {
	repo, clk := fixtureRepo()
	uc := newAvailabilityUC(repo, clk)

	base, err := uc.Execute(context.Background(), AvailabilityInput{
		BarbershopID: 1,
		BarberID:     10,
		ServiceID:    1,
		Date:         "2026-03-11",
	})
	require.NoError(t, err)

	ny, err := uc.Execute(context.Background(), AvailabilityInput{
		BarbershopID: 1,
		BarberID:     10,
		ServiceID:    1,
		Date:         "2026-03-11",
		DisplayTZ:    "America/New_York",
	})
	require.NoError(t, err)

	require.Equal(t, len(base.Slots), len(ny.Slots))
	// Same instants, different wall-clock rendering.
	assert.True(t, base.Slots[0].StartAt.Equal(ny.Slots[0].StartAt))
	assert.NotEqual(t, base.Slots[0].Start, ny.Slots[0].Start)
	assert.Equal(t, "America/New_York", ny.Timezone)
}

func TestGetAvailabilityNextAvailableScan(t *testing.T) {
	repo, clk := fixtureRepo()
	// Wednesday-only barber: asking for Thursday yields no slots, and the
	// scan lands on the following Wednesday.
	repo.rules[10] = []models.AvailabilityRule{
		{BarberID: 10, Weekday: 3, Active: true, StartTime: "09:00", EndTime: "12:00"},
	}

	uc := newAvailabilityUC(repo, clk)
	out, err := uc.Execute(context.Background(), AvailabilityInput{
		BarbershopID: 1,
		BarberID:     10,
		ServiceID:    1,
		Date:         "2026-03-12",
	})
	require.NoError(t, err)
	assert.Empty(t, out.Slots)
	assert.Equal(t, "2026-03-18", out.NextAvailableDate)
	require.NotNil(t, out.NextAvailableStart)
	assert.Equal(t, "09:00", out.NextAvailableStart.Format("15:04"))
}

func TestGetAvailabilityInvalidInputs(t *testing.T) {
	repo, clk := fixtureRepo()
	uc := newAvailabilityUC(repo, clk)

	_, err := uc.Execute(context.Background(), AvailabilityInput{
		BarbershopID: 1, BarberID: 10, ServiceID: 99, Date: "2026-03-11",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidService))

	_, err = uc.Execute(context.Background(), AvailabilityInput{
		BarbershopID: 1, BarberID: 10, ServiceID: 1, Date: "11/03/2026",
	})
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidDate))
}

func TestAnyProfessionalMergesBarbers(t *testing.T) {
	repo, clk := fixtureRepo()
	repo.barbers[11] = testBarber(11)

	createUC := newCreateUC(repo, clk, nil)
	_, err := createUC.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	require.NoError(t, err)

	uc := NewAnyProfessionalAvailability(repo, clk)
	out, err := uc.Execute(context.Background(), AnyProfessionalInput{
		BarbershopID: 1,
		ServiceID:    1,
		Date:         "2026-03-11",
	})
	require.NoError(t, err)

	byStart := map[string]MergedSlotDTO{}
	for _, s := range out.Slots {
		byStart[s.Start] = s
	}

	// 10:00 is taken for barber 10 but free for 11.
	require.Contains(t, byStart, "10:00")
	assert.True(t, byStart["10:00"].Available)
	assert.Equal(t, []uint{11}, byStart["10:00"].BarberIDs)

	// 10:30 is free for both.
	assert.Len(t, byStart["10:30"].BarberIDs, 2)
}
