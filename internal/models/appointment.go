package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Guest-facing reference, safe to expose without auth.
	PublicCode string `gorm:"size:36;uniqueIndex" json:"public_code"`

	BarbershopID uint       `json:"barbershop_id"`
	Barbershop   Barbershop `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	BarberID uint `gorm:"index" json:"barber_id"`
	Barber   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`

	// Stored as UTC. Conversions to business or display timezone happen
	// only at the edges.
	StartTime time.Time `gorm:"index" json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	DurationMin     int     `json:"duration_min"`
	BufferBeforeMin int     `gorm:"default:0" json:"buffer_before_min"`
	BufferAfterMin  int     `gorm:"default:0" json:"buffer_after_min"`
	Price           float64 `json:"price"`

	Status string `gorm:"size:20;default:'scheduled'" json:"status"`

	Notes       string     `gorm:"size:255" json:"notes"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCancelled reports whether the appointment left the conflict set.
func (ap *Appointment) IsCancelled() bool {
	return ap.Status == "cancelled"
}

// PaddedStart is the conflict-comparison lower bound (buffer included).
func (ap *Appointment) PaddedStart() time.Time {
	return ap.StartTime.Add(-time.Duration(ap.BufferBeforeMin) * time.Minute)
}

// PaddedEnd is the conflict-comparison upper bound (buffer included).
func (ap *Appointment) PaddedEnd() time.Time {
	return ap.StartTime.
		Add(time.Duration(ap.DurationMin) * time.Minute).
		Add(time.Duration(ap.BufferAfterMin) * time.Minute)
}
