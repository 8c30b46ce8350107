package db

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/trimworks/booking-api/internal/config"
	"github.com/trimworks/booking-api/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Barbershop{},
		&models.User{},
		&models.Service{},
		&models.AvailabilityRule{},
		&models.Client{},
		&models.Appointment{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	installOverlapConstraint(db)

	return db
}

// installOverlapConstraint adds the database-level guarantee that two
// active appointments of one barber never hold overlapping padded
// intervals, no matter how requests race. Requires btree_gist.
func installOverlapConstraint(db *gorm.DB) {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		log.Fatalf("failed to enable btree_gist: %v", err)
	}

	var count int64
	db.Raw(
		`SELECT count(*) FROM pg_constraint WHERE conname = 'appointments_no_overlap'`,
	).Scan(&count)
	if count > 0 {
		return
	}

	err := db.Exec(`
        ALTER TABLE appointments ADD CONSTRAINT appointments_no_overlap
        EXCLUDE USING gist (
            barber_id WITH =,
            tstzrange(
                start_time - make_interval(mins => buffer_before_min),
                start_time + make_interval(mins => duration_min + buffer_after_min)
            ) WITH &&
        ) WHERE (status <> 'cancelled')
    `).Error
	if err != nil {
		log.Fatalf("failed to install overlap constraint: %v", err)
	}
}
