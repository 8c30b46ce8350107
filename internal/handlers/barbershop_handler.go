package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/middleware"
	"github.com/trimworks/booking-api/internal/models"
	"github.com/trimworks/booking-api/internal/timezone"
)

type BarbershopHandler struct {
	db *gorm.DB
}

func NewBarbershopHandler(db *gorm.DB) *BarbershopHandler {
	return &BarbershopHandler{db: db}
}

// UpdateBarbershopConfigRequest edits the profile and the booking time
// rules. All fields are optional; absent fields stay untouched.
type UpdateBarbershopConfigRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`

	Timezone  *string `json:"timezone"`
	OpenTime  *string `json:"open_time"`  // HH:mm
	CloseTime *string `json:"close_time"` // HH:mm

	SlotGranularityMin *int  `json:"slot_granularity_min"`
	MinLeadMinutes     *int  `json:"min_lead_minutes"`
	MaxAdvanceDays     *int  `json:"max_advance_days"`
	ShowNextAvailable  *bool `json:"show_next_available"`
}

func (h *BarbershopHandler) GetMeBarbershop(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "barbershop_not_found", "Barbershop not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_barbershop", "Failed to load barbershop.")
		return
	}

	c.JSON(http.StatusOK, shop)
}

func (h *BarbershopHandler) UpdateMeBarbershop(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			httperr.NotFound(c, "barbershop_not_found", "Barbershop not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_barbershop", "Failed to load barbershop.")
		return
	}

	var req UpdateBarbershopConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	if req.Name != nil {
		shop.Name = *req.Name
	}
	if req.Phone != nil {
		shop.Phone = *req.Phone
	}
	if req.Address != nil {
		shop.Address = *req.Address
	}

	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown IANA timezone name.")
			return
		}
		shop.Timezone = *req.Timezone
	}

	if req.OpenTime != nil {
		if !isClockTime(*req.OpenTime) {
			httperr.BadRequest(c, "invalid_open_time", "Open time must be HH:mm.")
			return
		}
		shop.OpenTime = *req.OpenTime
	}
	if req.CloseTime != nil {
		if !isClockTime(*req.CloseTime) {
			httperr.BadRequest(c, "invalid_close_time", "Close time must be HH:mm.")
			return
		}
		shop.CloseTime = *req.CloseTime
	}

	if req.SlotGranularityMin != nil {
		if *req.SlotGranularityMin <= 0 {
			httperr.BadRequest(c, "invalid_granularity", "Slot granularity must be positive minutes.")
			return
		}
		shop.SlotGranularityMin = *req.SlotGranularityMin
	}
	if req.MinLeadMinutes != nil {
		if *req.MinLeadMinutes < 0 {
			httperr.BadRequest(c, "invalid_min_lead", "Minimum lead time must be zero or positive minutes.")
			return
		}
		shop.MinLeadMinutes = *req.MinLeadMinutes
	}
	if req.MaxAdvanceDays != nil {
		if *req.MaxAdvanceDays <= 0 {
			httperr.BadRequest(c, "invalid_max_advance", "Advance window must be at least one day.")
			return
		}
		shop.MaxAdvanceDays = *req.MaxAdvanceDays
	}
	if req.ShowNextAvailable != nil {
		shop.ShowNextAvailable = *req.ShowNextAvailable
	}

	if err := h.db.Save(&shop).Error; err != nil {
		httperr.Internal(c, "failed_to_update_barbershop", "Failed to save barbershop settings.")
		return
	}

	c.JSON(http.StatusOK, shop)
}

func isClockTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
