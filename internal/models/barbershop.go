package models

import "time"

// Barbershop carries the per-business booking time rules alongside the
// public profile. Rules are provisioned with defaults at registration,
// never lazily on read.
type Barbershop struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:100;not null" json:"name"`
	Slug    string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone   string `gorm:"size:20" json:"phone"`
	Address string `gorm:"size:255" json:"address"`

	Timezone  string `gorm:"size:64;default:'America/Sao_Paulo'" json:"timezone"`
	OpenTime  string `gorm:"size:5;default:'09:00'" json:"open_time"`
	CloseTime string `gorm:"size:5;default:'19:00'" json:"close_time"`

	SlotGranularityMin int  `gorm:"default:30" json:"slot_granularity_min"`
	MinLeadMinutes     int  `gorm:"default:60" json:"min_lead_minutes"`
	MaxAdvanceDays     int  `gorm:"default:30" json:"max_advance_days"`
	ShowNextAvailable  bool `gorm:"default:true" json:"show_next_available"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
