package appointment

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trimworks/booking-api/internal/clock"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
	"github.com/trimworks/booking-api/internal/notify"
	"github.com/trimworks/booking-api/internal/payment"
	"github.com/trimworks/booking-api/internal/rules"
)

func newCreateUC(repo *stubRepo, clk clock.Clock, engine rules.Engine) *CreateAppointment {
	if engine == nil {
		engine = rules.NopEngine{}
	}
	return NewCreateAppointment(
		repo,
		engine,
		clk,
		NewBarberPicker(rand.New(rand.NewSource(1))),
		nil,
		notify.NewLogNotifier(noopLogger()),
		payment.NopGateway{},
		nilCache(),
		noopLogger(),
	)
}

func createInput(barberID uint, date, timeStr string) CreateAppointmentInput {
	return CreateAppointmentInput{
		BarbershopID: 1,
		BarberID:     barberID,
		ServiceID:    1,
		ClientName:   "Ana",
		ClientPhone:  "+55 11 99999-0000",
		Date:         date,
		Time:         timeStr,
	}
}

func fixtureRepo() (*stubRepo, *clock.MockClock) {
	repo := newStubRepo(testShop())
	repo.services[1] = testService(1)
	repo.barbers[10] = testBarber(10)

	loc, _ := time.LoadLocation(testTZ)
	clk := clock.NewMockClock(time.Date(2026, 3, 10, 9, 0, 0, 0, loc))
	return repo, clk
}

func TestCreateAppointmentHappyPath(t *testing.T) {
	repo, clk := fixtureRepo()
	uc := newCreateUC(repo, clk, nil)

	ap, err := uc.Execute(context.Background(), createInput(10, "2026-03-10", "14:00"))
	require.NoError(t, err)

	loc, _ := time.LoadLocation(testTZ)
	wantStart := time.Date(2026, 3, 10, 14, 0, 0, 0, loc)

	assert.Equal(t, "scheduled", ap.Status)
	assert.NotEmpty(t, ap.PublicCode)
	assert.Equal(t, time.UTC, ap.StartTime.Location())
	assert.True(t, ap.StartTime.Equal(wantStart))
	assert.True(t, ap.EndTime.Equal(wantStart.Add(30*time.Minute)))
	assert.Equal(t, 30, ap.DurationMin)
	assert.Equal(t, 50.0, ap.Price)

	// Client was upserted by phone.
	require.Len(t, repo.clients, 1)
	assert.Equal(t, repo.clients[0].ID, ap.ClientID)
}

func TestCreateAppointmentLeadTimeViolation(t *testing.T) {
	repo, clk := fixtureRepo()
	uc := newCreateUC(repo, clk, nil)

	// now 09:00 + 60min lead = 10:00; 09:30 is too soon.
	_, err := uc.Execute(context.Background(), createInput(10, "2026-03-10", "09:30"))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeLeadTimeViolation))
}

func TestCreateAppointmentAdvanceWindowExceeded(t *testing.T) {
	repo, clk := fixtureRepo()
	uc := newCreateUC(repo, clk, nil)

	// 30-day window from 2026-03-10 ends 2026-04-09.
	_, err := uc.Execute(context.Background(), createInput(10, "2026-04-10", "14:00"))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeAdvanceWindowExceeded))
}

func TestCreateAppointmentOutsideBusinessHours(t *testing.T) {
	repo, clk := fixtureRepo()
	uc := newCreateUC(repo, clk, nil)

	// 18:45 + 30min spills past the 19:00 close.
	_, err := uc.Execute(context.Background(), createInput(10, "2026-03-11", "18:45"))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeOutsideBusinessHours))
}

func TestCreateAppointmentSlotConflictNamesHolder(t *testing.T) {
	repo, clk := fixtureRepo()
	uc := newCreateUC(repo, clk, nil)

	first, err := uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	require.Error(t, err)

	var sc httperr.SlotConflictError
	require.ErrorAs(t, err, &sc)
	assert.Equal(t, first.ID, sc.ConflictingID)
	assert.True(t, sc.ConflictingStart.Equal(first.StartTime))
}

func TestCreateAppointmentBufferBlocksAdjacentSlot(t *testing.T) {
	repo, clk := fixtureRepo()
	repo.services[1].BufferAfterMin = 10
	uc := newCreateUC(repo, clk, nil)

	_, err := uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	require.NoError(t, err)

	// Existing booking pads to 10:40; a 10:30 start collides.
	_, err = uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:30"))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeSlotConflict))

	// 11:00 clears the padding.
	_, err = uc.Execute(context.Background(), createInput(10, "2026-03-11", "11:00"))
	assert.NoError(t, err)
}

func TestCreateAppointmentCancelledSlotIsFree(t *testing.T) {
	repo, clk := fixtureRepo()
	uc := newCreateUC(repo, clk, nil)

	ap, err := uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	require.NoError(t, err)

	cancelUC := NewCancelAppointment(repo, clk, nil, notify.NewLogNotifier(noopLogger()), nilCache(), noopLogger())
	_, err = cancelUC.Execute(context.Background(), 1, ap.ID, nil)
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	assert.NoError(t, err)
}

func TestCreateAppointmentInactiveServiceRejected(t *testing.T) {
	repo, clk := fixtureRepo()
	repo.services[1].Active = false
	uc := newCreateUC(repo, clk, nil)

	_, err := uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeInvalidService))
}

func TestCreateAppointmentRespectsBarberWindows(t *testing.T) {
	repo, clk := fixtureRepo()
	// 2026-03-11 is a Wednesday (weekday 3); barber works mornings only.
	repo.rules[10] = []models.AvailabilityRule{
		{BarberID: 10, Weekday: 3, Active: true, StartTime: "09:00", EndTime: "12:00"},
	}
	uc := newCreateUC(repo, clk, nil)

	_, err := uc.Execute(context.Background(), createInput(10, "2026-03-11", "14:00"))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeOutsideBusinessHours))

	_, err = uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	assert.NoError(t, err)

	// Thursday has no rule at all for this barber.
	_, err = uc.Execute(context.Background(), createInput(10, "2026-03-12", "10:00"))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeBarberUnavailable))
}

func TestCreateAppointmentFrequencyLimit(t *testing.T) {
	repo, clk := fixtureRepo()
	engine := rules.NewFrequencyEngine(repo, 1)
	uc := newCreateUC(repo, clk, engine)

	_, err := uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), createInput(10, "2026-03-11", "15:00"))
	require.Error(t, err)

	var rv httperr.RuleViolationError
	require.ErrorAs(t, err, &rv)
	assert.Contains(t, rv.Violations, "client_daily_booking_limit_reached")
}

func TestCreateAppointmentAutoAssignSkipsBusyBarber(t *testing.T) {
	repo, clk := fixtureRepo()
	repo.barbers[11] = testBarber(11)
	uc := newCreateUC(repo, clk, nil)

	// Pin barber 10 at 10:00 so only 11 is eligible there.
	_, err := uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	require.NoError(t, err)

	ap, err := uc.Execute(context.Background(), createInput(0, "2026-03-11", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, uint(11), ap.BarberID)
}

func TestCreateAppointmentAutoAssignNoAvailability(t *testing.T) {
	repo, clk := fixtureRepo()
	uc := newCreateUC(repo, clk, nil)

	_, err := uc.Execute(context.Background(), createInput(10, "2026-03-11", "10:00"))
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), createInput(0, "2026-03-11", "10:00"))
	assert.True(t, httperr.IsBusiness(err, httperr.CodeNoAvailability))
}
