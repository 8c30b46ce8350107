package models

import "time"

// Service is a bookable catalog entry scoped to one barbershop. Duration,
// price and buffers are copied onto the appointment at booking time so
// later catalog edits never rewrite history.
type Service struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	BarbershopID uint `gorm:"index" json:"barbershop_id"`

	Name        string  `gorm:"size:100;not null" json:"name"`
	Description string  `gorm:"size:255" json:"description"`
	DurationMin int     `json:"duration_min"`
	Price       float64 `json:"price"`

	BufferBeforeMin int `gorm:"default:0" json:"buffer_before_min"`
	BufferAfterMin  int `gorm:"default:0" json:"buffer_after_min"`

	Active   bool   `gorm:"default:true" json:"active"`
	Category string `gorm:"size:50" json:"category"`

	// Barbers offering this service. Empty set means every active barber
	// of the shop offers it.
	Barbers []User `gorm:"many2many:barber_services;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
