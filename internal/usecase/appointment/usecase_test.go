package appointment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/trimworks/booking-api/internal/cache"
	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/models"
)

// stubRepo is an in-memory Repository for use-case tests. Transact hands
// the same instance back, so "inside the transaction" sees the same data.
type stubRepo struct {
	shop     *models.Barbershop
	services map[uint]*models.Service
	barbers  map[uint]*models.User
	rules    map[uint][]models.AvailabilityRule

	// barbers eligible per service; empty = all active barbers.
	serviceBarbers map[uint][]uint

	appointments []models.Appointment
	clients      []models.Client
	nextID       uint
}

func newStubRepo(shop *models.Barbershop) *stubRepo {
	return &stubRepo{
		shop:           shop,
		services:       map[uint]*models.Service{},
		barbers:        map[uint]*models.User{},
		rules:          map[uint][]models.AvailabilityRule{},
		serviceBarbers: map[uint][]uint{},
		nextID:         1,
	}
}

var errNotFound = errors.New("not found")

func (r *stubRepo) GetBarbershopByID(ctx context.Context, id uint) (*models.Barbershop, error) {
	if r.shop == nil || r.shop.ID != id {
		return nil, errNotFound
	}
	return r.shop, nil
}

func (r *stubRepo) GetBarbershopBySlug(ctx context.Context, slug string) (*models.Barbershop, error) {
	if r.shop == nil || r.shop.Slug != slug {
		return nil, errNotFound
	}
	return r.shop, nil
}

func (r *stubRepo) GetService(ctx context.Context, barbershopID, serviceID uint) (*models.Service, error) {
	svc, ok := r.services[serviceID]
	if !ok || svc.BarbershopID != barbershopID {
		return nil, errNotFound
	}
	return svc, nil
}

func (r *stubRepo) GetBarber(ctx context.Context, barbershopID, barberID uint) (*models.User, error) {
	b, ok := r.barbers[barberID]
	if !ok || b.BarbershopID != barbershopID {
		return nil, errNotFound
	}
	return b, nil
}

func (r *stubRepo) ListBarbersForService(ctx context.Context, barbershopID, serviceID uint) ([]models.User, error) {
	ids, scoped := r.serviceBarbers[serviceID]

	var out []models.User
	for _, b := range r.barbers {
		if b.BarbershopID != barbershopID || !b.Active {
			continue
		}
		if scoped && !containsID(ids, b.ID) {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func (r *stubRepo) GetOrCreateClient(ctx context.Context, barbershopID uint, name, phone, email string) (*models.Client, error) {
	for i := range r.clients {
		if r.clients[i].BarbershopID == barbershopID && r.clients[i].Phone == phone {
			return &r.clients[i], nil
		}
	}
	r.clients = append(r.clients, models.Client{
		ID:           r.allocID(),
		BarbershopID: barbershopID,
		Name:         name,
		Phone:        phone,
		Email:        email,
	})
	return &r.clients[len(r.clients)-1], nil
}

func (r *stubRepo) ListAvailabilityRules(ctx context.Context, barberID uint) ([]models.AvailabilityRule, error) {
	return r.rules[barberID], nil
}

func (r *stubRepo) ListActiveAppointments(ctx context.Context, barberID uint, from, to time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.BarberID != barberID || ap.IsCancelled() {
			continue
		}
		if ap.StartTime.Before(from) || !ap.StartTime.Before(to) {
			continue
		}
		out = append(out, ap)
	}
	return out, nil
}

func (r *stubRepo) GetAppointment(ctx context.Context, barbershopID, appointmentID uint) (*models.Appointment, error) {
	for i := range r.appointments {
		if r.appointments[i].ID == appointmentID && r.appointments[i].BarbershopID == barbershopID {
			ap := r.appointments[i]
			return &ap, nil
		}
	}
	return nil, errNotFound
}

func (r *stubRepo) GetAppointmentByCode(ctx context.Context, barbershopID uint, code string) (*models.Appointment, error) {
	for i := range r.appointments {
		if r.appointments[i].PublicCode == code && r.appointments[i].BarbershopID == barbershopID {
			ap := r.appointments[i]
			return &ap, nil
		}
	}
	return nil, errNotFound
}

func (r *stubRepo) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	ap.ID = r.allocID()
	r.appointments = append(r.appointments, *ap)
	return nil
}

func (r *stubRepo) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	for i := range r.appointments {
		if r.appointments[i].ID == ap.ID {
			r.appointments[i] = *ap
			return nil
		}
	}
	return errNotFound
}

func (r *stubRepo) ListAppointmentsForPeriod(ctx context.Context, barberID uint, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.appointments {
		if ap.BarberID != barberID {
			continue
		}
		if ap.StartTime.Before(start) || !ap.StartTime.Before(end) {
			continue
		}
		out = append(out, ap)
	}
	return out, nil
}

func (r *stubRepo) CountClientAppointmentsBetween(ctx context.Context, clientID uint, from, to time.Time) (int64, error) {
	var n int64
	for _, ap := range r.appointments {
		if ap.ClientID != clientID || ap.IsCancelled() {
			continue
		}
		if ap.StartTime.Before(from) || !ap.StartTime.Before(to) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *stubRepo) Transact(ctx context.Context, fn func(domain.Repository) error) error {
	return fn(r)
}

func (r *stubRepo) allocID() uint {
	id := r.nextID
	r.nextID++
	return id
}

var _ domain.Repository = (*stubRepo)(nil)

// ---------- shared fixtures ----------

const testTZ = "America/Sao_Paulo"

func testShop() *models.Barbershop {
	return &models.Barbershop{
		ID:                 1,
		Name:               "Corner Cuts",
		Slug:               "corner-cuts",
		Timezone:           testTZ,
		OpenTime:           "09:00",
		CloseTime:          "19:00",
		SlotGranularityMin: 30,
		MinLeadMinutes:     60,
		MaxAdvanceDays:     30,
		ShowNextAvailable:  true,
	}
}

func testService(id uint) *models.Service {
	return &models.Service{
		ID:           id,
		BarbershopID: 1,
		Name:         "Haircut",
		DurationMin:  30,
		Price:        50,
		Active:       true,
	}
}

func testBarber(id uint) *models.User {
	return &models.User{
		ID:           id,
		BarbershopID: 1,
		Name:         "Barber",
		Role:         "owner",
		Active:       true,
	}
}

func noopLogger() *zap.Logger {
	return zap.NewNop()
}

func nilCache() *cache.SlotCache {
	return nil
}
