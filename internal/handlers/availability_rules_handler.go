package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/trimworks/booking-api/internal/httpresp"
	"github.com/trimworks/booking-api/internal/middleware"
	"github.com/trimworks/booking-api/internal/models"
	"github.com/trimworks/booking-api/internal/timezone"
)

type AvailabilityRulesHandler struct {
	db *gorm.DB
}

func NewAvailabilityRulesHandler(db *gorm.DB) *AvailabilityRulesHandler {
	return &AvailabilityRulesHandler{db: db}
}

type AvailabilityRuleConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	BreakStart string `json:"break_start"`
	BreakEnd   string `json:"break_end"`

	EffectiveFrom  *time.Time `json:"effective_from"`
	EffectiveUntil *time.Time `json:"effective_until"`
}

type AvailabilityRulesUpdateRequest struct {
	Rules []AvailabilityRuleConfig `json:"rules" binding:"required"`
}

func (h *AvailabilityRulesHandler) Get(c *gin.Context) {
	userIDVal, _ := c.Get(middleware.ContextUserID)
	barberID := userIDVal.(uint)

	var rules []models.AvailabilityRule
	if err := h.db.
		Where("barber_id = ?", barberID).
		Order("weekday ASC, start_time ASC").
		Find(&rules).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_availability_rules"})
		return
	}

	httpresp.List(c, rules)
}

// Update replaces the barber's rule set going forward. Superseded rules
// are never deleted: their effective_until is closed at the day before
// today, so past dates keep resolving against the schedule that was in
// force when their appointments were booked. Multiple rules per weekday
// express split shifts; overlaps within a day are unioned at read time.
func (h *AvailabilityRulesHandler) Update(c *gin.Context) {
	userIDVal, _ := c.Get(middleware.ContextUserID)
	barberID := userIDVal.(uint)

	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	var req AvailabilityRulesUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	for _, r := range req.Rules {
		if r.StartTime != "" && !isClockTime(r.StartTime) ||
			r.EndTime != "" && !isClockTime(r.EndTime) ||
			r.BreakStart != "" && !isClockTime(r.BreakStart) ||
			r.BreakEnd != "" && !isClockTime(r.BreakEnd) {

			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_time_format"})
			return
		}
	}

	var shop models.Barbershop
	if err := h.db.First(&shop, barbershopID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_barbershop"})
		return
	}

	now := timezone.NowIn(shop.Timezone)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var existing []models.AvailabilityRule
	if err := h.db.Where("barber_id = ?", barberID).Find(&existing).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_availability_rules"})
		return
	}

	closed := supersedeRules(existing, today)
	if len(closed) > 0 {
		if err := h.db.Save(&closed).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_close_existing_rules"})
			return
		}
	}

	var toCreate []models.AvailabilityRule
	for _, r := range req.Rules {
		rule := models.AvailabilityRule{
			BarberID:       barberID,
			Weekday:        r.Weekday,
			Active:         r.Active,
			StartTime:      r.StartTime,
			EndTime:        r.EndTime,
			BreakStart:     r.BreakStart,
			BreakEnd:       r.BreakEnd,
			EffectiveFrom:  r.EffectiveFrom,
			EffectiveUntil: r.EffectiveUntil,
		}
		if rule.EffectiveFrom == nil {
			from := today
			rule.EffectiveFrom = &from
		}
		toCreate = append(toCreate, rule)
	}

	if len(toCreate) > 0 {
		if err := h.db.Create(&toCreate).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_availability_rules"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// supersedeRules caps the effective period of every rule still in force
// on or after today at the day before, returning only the rules that
// changed. Rules whose period already ended stay untouched.
func supersedeRules(rules []models.AvailabilityRule, today time.Time) []models.AvailabilityRule {
	cutoff := today.AddDate(0, 0, -1)

	var closed []models.AvailabilityRule
	for _, r := range rules {
		if r.EffectiveUntil != nil && r.EffectiveUntil.Before(cutoff) {
			continue
		}
		until := cutoff
		r.EffectiveUntil = &until
		closed = append(closed, r)
	}
	return closed
}
