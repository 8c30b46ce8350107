package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/trimworks/booking-api/internal/domain/appointment"
	"github.com/trimworks/booking-api/internal/httperr"
	"github.com/trimworks/booking-api/internal/models"
	ucAppointment "github.com/trimworks/booking-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

// PublicHandler serves the guest booking surface, addressed by shop slug
// and requiring no authentication.
type PublicHandler struct {
	db   *gorm.DB
	repo domain.Repository

	availabilityUC *ucAppointment.GetAvailability
	anyAvailUC     *ucAppointment.AnyProfessionalAvailability
	createUC       *ucAppointment.CreateAppointment
	cancelUC       *ucAppointment.CancelAppointment
}

func NewPublicHandler(
	db *gorm.DB,
	repo domain.Repository,
	availabilityUC *ucAppointment.GetAvailability,
	anyAvailUC *ucAppointment.AnyProfessionalAvailability,
	createUC *ucAppointment.CreateAppointment,
	cancelUC *ucAppointment.CancelAppointment,
) *PublicHandler {
	return &PublicHandler{
		db:             db,
		repo:           repo,
		availabilityUC: availabilityUC,
		anyAvailUC:     anyAvailUC,
		createUC:       createUC,
		cancelUC:       cancelUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type PublicCreateAppointmentRequest struct {
	ClientName  string `json:"client_name" binding:"required"`
	ClientPhone string `json:"client_phone" binding:"required"`
	ClientEmail string `json:"client_email"`
	ServiceID   uint   `json:"service_id" binding:"required"`
	BarberID    uint   `json:"barber_id"` // 0 = any professional
	Date        string `json:"date" binding:"required"` // YYYY-MM-DD
	Time        string `json:"time" binding:"required"` // HH:mm
	Notes       string `json:"notes"`
}

// ======================================================
// SHOP LOOKUP
// ======================================================

func (h *PublicHandler) shopBySlug(c *gin.Context) (*models.Barbershop, bool) {
	slug := c.Param("slug")

	shop, err := h.repo.GetBarbershopBySlug(c.Request.Context(), slug)
	if err != nil {
		httperr.NotFound(c, "barbershop_not_found", "Barbershop not found.")
		return nil, false
	}
	return shop, true
}

// ======================================================
// SERVICES
// ======================================================

func (h *PublicHandler) ListServices(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	category := strings.TrimSpace(strings.ToLower(c.Query("category")))
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))

	q := h.db.
		Where("barbershop_id = ? AND active = true", shop.ID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.Order("id ASC").Find(&services).Error; err != nil {
		httperr.Internal(c, "failed_to_list_services", "Failed to list services.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"barbershop": shop,
		"services":   services,
	})
}

// ======================================================
// BARBERS
// ======================================================

func (h *PublicHandler) ListBarbers(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	var barbers []models.User
	if err := h.db.
		Select("id", "name", "barbershop_id").
		Where("barbershop_id = ? AND active = true", shop.ID).
		Order("id ASC").
		Find(&barbers).Error; err != nil {

		httperr.Internal(c, "failed_to_list_barbers", "Failed to list barbers.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"barbershop": gin.H{"id": shop.ID, "name": shop.Name, "slug": shop.Slug},
		"barbers":    barbers,
	})
}

// ======================================================
// AVAILABILITY
// ======================================================

// Availability lists the day's candidate slots. barber_id is optional:
// without one the response merges free slots across every barber
// offering the service, annotated with who is free per slot.
func (h *PublicHandler) Availability(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")
	barberIDStr := c.Query("barber_id")

	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "date and service_id are required.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service id.")
		return
	}

	if barberIDStr == "" {
		out, err := h.anyAvailUC.Execute(
			c.Request.Context(),
			ucAppointment.AnyProfessionalInput{
				BarbershopID: shop.ID,
				ServiceID:    uint(serviceID),
				Date:         dateStr,
				DisplayTZ:    c.Query("tz"),
			},
		)
		if err != nil {
			respondBusinessError(c, err)
			return
		}

		c.JSON(http.StatusOK, out)
		return
	}

	barberID, err := strconv.ParseUint(barberIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_barber_id", "Invalid barber id.")
		return
	}

	out, err := h.availabilityUC.Execute(
		c.Request.Context(),
		ucAppointment.AvailabilityInput{
			BarbershopID: shop.ID,
			BarberID:     uint(barberID),
			ServiceID:    uint(serviceID),
			Date:         dateStr,
			DisplayTZ:    c.Query("tz"),
		},
	)
	if err != nil {
		respondBusinessError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// AnyAvailability merges free slots across every barber offering the
// service, for the "any professional" booking flow.
func (h *PublicHandler) AnyAvailability(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	serviceIDStr := c.Query("service_id")

	if dateStr == "" || serviceIDStr == "" {
		httperr.BadRequest(c, "missing_params", "date and service_id are required.")
		return
	}

	serviceID, err := strconv.ParseUint(serviceIDStr, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service id.")
		return
	}

	out, err := h.anyAvailUC.Execute(
		c.Request.Context(),
		ucAppointment.AnyProfessionalInput{
			BarbershopID: shop.ID,
			ServiceID:    uint(serviceID),
			Date:         dateStr,
			DisplayTZ:    c.Query("tz"),
		},
	)
	if err != nil {
		respondBusinessError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// ======================================================
// CREATE APPOINTMENT (GUEST)
// ======================================================

func (h *PublicHandler) CreateAppointment(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	var req PublicCreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request payload.")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		BarbershopID: shop.ID,
		BarberID:     req.BarberID,
		ServiceID:    req.ServiceID,
		ClientName:   req.ClientName,
		ClientPhone:  req.ClientPhone,
		ClientEmail:  req.ClientEmail,
		Date:         req.Date,
		Time:         req.Time,
		Notes:        req.Notes,
	})
	if err != nil {
		respondBusinessError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"appointment": ap,
		"public_code": ap.PublicCode,
	})
}

// ======================================================
// CANCEL BY PUBLIC CODE (GUEST)
// ======================================================

func (h *PublicHandler) CancelByCode(c *gin.Context) {
	shop, ok := h.shopBySlug(c)
	if !ok {
		return
	}

	code := c.Param("code")
	if code == "" {
		httperr.BadRequest(c, "missing_code", "Cancellation code is required.")
		return
	}

	ap, err := h.cancelUC.ExecuteByCode(c.Request.Context(), shop.ID, code)
	if err != nil {
		respondBusinessError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "cancelled",
		"appointment": ap,
	})
}
