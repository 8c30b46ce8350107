package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trimworks/booking-api/internal/clock"
	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/models"
	ucAppointment "github.com/trimworks/booking-api/internal/usecase/appointment"
)

// availabilityRepoStub implements the slice of the repository the public
// availability path touches; the embedded interface covers the rest.
type availabilityRepoStub struct {
	domain.Repository

	shop    *models.Barbershop
	service *models.Service
	barbers []models.User
}

func (r *availabilityRepoStub) GetBarbershopBySlug(ctx context.Context, slug string) (*models.Barbershop, error) {
	if r.shop.Slug != slug {
		return nil, errors.New("not found")
	}
	return r.shop, nil
}

func (r *availabilityRepoStub) GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error) {
	if r.shop.ID != id {
		return nil, errors.New("not found")
	}
	return r.shop, nil
}

func (r *availabilityRepoStub) GetService(ctx context.Context, barbershopID, serviceID uint) (*models.Service, error) {
	if r.service.ID != serviceID {
		return nil, errors.New("not found")
	}
	return r.service, nil
}

func (r *availabilityRepoStub) ListBarbersForService(ctx context.Context, barbershopID, serviceID uint) ([]models.User, error) {
	return r.barbers, nil
}

func (r *availabilityRepoStub) ListAvailabilityRules(ctx context.Context, barberID uint) ([]models.AvailabilityRule, error) {
	return nil, nil
}

func (r *availabilityRepoStub) ListActiveAppointments(ctx context.Context, barberID uint, from, to time.Time) ([]models.Appointment, error) {
	return nil, nil
}

func publicAvailabilityRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &availabilityRepoStub{
		shop: &models.Barbershop{
			ID:                 1,
			Name:               "Corner Cuts",
			Slug:               "corner-cuts",
			Timezone:           "America/Sao_Paulo",
			OpenTime:           "09:00",
			CloseTime:          "19:00",
			SlotGranularityMin: 30,
			MinLeadMinutes:     60,
			MaxAdvanceDays:     30,
		},
		service: &models.Service{ID: 1, BarbershopID: 1, Name: "Haircut", DurationMin: 30, Active: true},
		barbers: []models.User{
			{ID: 10, BarbershopID: 1, Active: true},
			{ID: 11, BarbershopID: 1, Active: true},
		},
	}

	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	clk := clock.NewMockClock(time.Date(2026, 3, 10, 9, 0, 0, 0, loc))

	h := NewPublicHandler(
		nil,
		repo,
		ucAppointment.NewGetAvailability(repo, clk, nil, zap.NewNop()),
		ucAppointment.NewAnyProfessionalAvailability(repo, clk),
		nil,
		nil,
	)

	r := gin.New()
	r.GET("/api/public/:slug/availability", h.Availability)
	return r
}

func TestPublicAvailabilityWithBarber(t *testing.T) {
	r := publicAvailabilityRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/public/corner-cuts/availability?date=2026-03-11&service_id=1&barber_id=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var out ucAppointment.AvailabilityResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Slots)
	assert.Equal(t, "09:00", out.Slots[0].Start)
}

func TestPublicAvailabilityWithoutBarberMergesRoster(t *testing.T) {
	r := publicAvailabilityRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/public/corner-cuts/availability?date=2026-03-11&service_id=1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var out ucAppointment.AnyProfessionalResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Slots)
	assert.ElementsMatch(t, []uint{10, 11}, out.Slots[0].BarberIDs)
}

func TestPublicAvailabilityMissingParams(t *testing.T) {
	r := publicAvailabilityRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/public/corner-cuts/availability?service_id=1", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "missing_params")
}

func TestPublicAvailabilityUnknownSlug(t *testing.T) {
	r := publicAvailabilityRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/public/nope/availability?date=2026-03-11&service_id=1&barber_id=10", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "barbershop_not_found")
}
