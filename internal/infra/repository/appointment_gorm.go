package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB

	// Set inside Transact so reads of the conflict set take row locks.
	locking bool
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Transaction boundary
// --------------------------------------------------

// Transact hands fn a repository bound to one database transaction.
// Conflict-set reads through it lock the rows (FOR UPDATE), so of two
// racing bookings one serializes behind the other and fails cleanly.
func (r *AppointmentGormRepository) Transact(
	ctx context.Context,
	fn func(domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx, locking: true})
	})
}

// --------------------------------------------------
// Barbershop
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarbershopByID(
	ctx context.Context,
	id uint,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *AppointmentGormRepository) GetBarbershopBySlug(
	ctx context.Context,
	slug string,
) (*models.Barbershop, error) {

	var shop models.Barbershop
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// --------------------------------------------------
// Service catalog
// --------------------------------------------------

func (r *AppointmentGormRepository) GetService(
	ctx context.Context,
	barbershopID uint,
	serviceID uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", serviceID, barbershopID).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// --------------------------------------------------
// Barbers
// --------------------------------------------------

func (r *AppointmentGormRepository) GetBarber(
	ctx context.Context,
	barbershopID uint,
	barberID uint,
) (*models.User, error) {

	var barber models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND barbershop_id = ?", barberID, barbershopID).
		First(&barber).Error; err != nil {
		return nil, err
	}
	return &barber, nil
}

func (r *AppointmentGormRepository) ListBarbersForService(
	ctx context.Context,
	barbershopID uint,
	serviceID uint,
) ([]models.User, error) {

	var linked []models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN barber_services bs ON bs.user_id = users.id").
		Where("bs.service_id = ? AND users.barbershop_id = ? AND users.active = true", serviceID, barbershopID).
		Find(&linked).Error
	if err != nil {
		return nil, err
	}
	if len(linked) > 0 {
		return linked, nil
	}

	// No explicit roster for the service: every active barber offers it.
	var all []models.User
	if err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND active = true", barbershopID).
		Order("id ASC").
		Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

// --------------------------------------------------
// Client directory
// --------------------------------------------------

func (r *AppointmentGormRepository) GetOrCreateClient(
	ctx context.Context,
	barbershopID uint,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	client := models.Client{
		BarbershopID: barbershopID,
		Phone:        phone,
	}

	// Idempotent upsert keyed by (shop, phone); no read-then-insert race.
	err := r.db.WithContext(ctx).
		Where("barbershop_id = ? AND phone = ?", barbershopID, phone).
		Attrs(models.Client{Name: name, Email: email}).
		FirstOrCreate(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// --------------------------------------------------
// Availability rules
// --------------------------------------------------

func (r *AppointmentGormRepository) ListAvailabilityRules(
	ctx context.Context,
	barberID uint,
) ([]models.AvailabilityRule, error) {

	var rules []models.AvailabilityRule
	if err := r.db.WithContext(ctx).
		Where("barber_id = ?", barberID).
		Order("weekday ASC, start_time ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (r *AppointmentGormRepository) ListActiveAppointments(
	ctx context.Context,
	barberID uint,
	from time.Time,
	to time.Time,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Where(
			"barber_id = ? AND status <> 'cancelled' AND start_time >= ? AND start_time < ?",
			barberID, from, to,
		).
		Order("start_time ASC")

	if r.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var apps []models.Appointment
	if err := q.Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	barbershopID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where("id = ? AND barbershop_id = ?", appointmentID, barbershopID).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) GetAppointmentByCode(
	ctx context.Context,
	barbershopID uint,
	code string,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where("public_code = ? AND barbershop_id = ?", code, barbershopID).
		First(&ap).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return translateConflict(r.db.WithContext(ctx).Create(ap).Error, ap.StartTime)
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return translateConflict(r.db.WithContext(ctx).Save(ap).Error, ap.StartTime)
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"barber_id = ? AND start_time >= ? AND start_time < ?",
			barberID, start, end,
		).
		Order("start_time ASC").
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) CountClientAppointmentsBetween(
	ctx context.Context,
	clientID uint,
	from time.Time,
	to time.Time,
) (int64, error) {

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"client_id = ? AND status <> 'cancelled' AND start_time >= ? AND start_time < ?",
			clientID, from, to,
		).
		Count(&count).Error
	return count, err
}

// translateConflict maps the appointments_no_overlap exclusion constraint
// (and any unique collision) to the slot-conflict business error. This is
// the database-level backstop for two bookings racing past the in-tx
// check.
func translateConflict(err error, requestedStart time.Time) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23P01" || pgErr.Code == "23505" {
			return httperr.SlotConflictError{ConflictingStart: requestedStart}
		}
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
