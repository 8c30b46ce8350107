package models

import "time"

// AvailabilityRule is one working window for a barber on a weekday.
// Multiple rules per weekday are allowed (split shifts) and are unioned.
// Rules are scoped by effective dates instead of hard-deleted so past
// schedules stay auditable.
type AvailabilityRule struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	BarberID uint `gorm:"index" json:"barber_id"`

	Weekday int `json:"weekday"` // 0 = Sunday

	StartTime string `gorm:"size:5" json:"start_time"` // HH:mm
	EndTime   string `gorm:"size:5" json:"end_time"`

	BreakStart string `gorm:"size:5" json:"break_start"`
	BreakEnd   string `gorm:"size:5" json:"break_end"`

	Active bool `gorm:"default:true" json:"active"`

	EffectiveFrom  *time.Time `json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
