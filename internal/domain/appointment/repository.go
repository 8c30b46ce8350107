package appointment

import (
	"context"
	"time"

	"github.com/trimworks/booking-api/internal/models"
)

type Repository interface {
	// -------- Barbershop --------
	GetBarbershopByID(
		ctx context.Context,
		id uint,
	) (*models.Barbershop, error)

	GetBarbershopBySlug(
		ctx context.Context,
		slug string,
	) (*models.Barbershop, error)

	// -------- Service catalog --------
	GetService(
		ctx context.Context,
		barbershopID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Barbers --------
	GetBarber(
		ctx context.Context,
		barbershopID uint,
		barberID uint,
	) (*models.User, error)

	// ListBarbersForService returns the active barbers offering the
	// service; with no explicit links, every active barber qualifies.
	ListBarbersForService(
		ctx context.Context,
		barbershopID uint,
		serviceID uint,
	) ([]models.User, error)

	// -------- Client directory --------
	GetOrCreateClient(
		ctx context.Context,
		barbershopID uint,
		name string,
		phone string,
		email string,
	) (*models.Client, error)

	// -------- Availability rules --------
	ListAvailabilityRules(
		ctx context.Context,
		barberID uint,
	) ([]models.AvailabilityRule, error)

	// -------- Appointments --------
	// ListActiveAppointments returns non-cancelled appointments for the
	// barber whose start falls in [from, to). Callers widen the window;
	// exact overlap is always decided by the conflict detector.
	ListActiveAppointments(
		ctx context.Context,
		barberID uint,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	GetAppointment(
		ctx context.Context,
		barbershopID uint,
		appointmentID uint,
	) (*models.Appointment, error)

	GetAppointmentByCode(
		ctx context.Context,
		barbershopID uint,
		code string,
	) (*models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ListAppointmentsForPeriod(
		ctx context.Context,
		barberID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	CountClientAppointmentsBetween(
		ctx context.Context,
		clientID uint,
		from time.Time,
		to time.Time,
	) (int64, error)

	// Transact runs fn inside one database transaction; the Repository
	// handed to fn sees and locks live data. The booking state machine
	// re-validates every invariant through it before committing.
	Transact(
		ctx context.Context,
		fn func(Repository) error,
	) error
}
