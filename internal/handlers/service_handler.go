package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/trimworks/booking-api/internal/middleware"
	"github.com/trimworks/booking-api/internal/models"
)

type ServiceHandler struct {
	db *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	DurationMin     int     `json:"duration_min" binding:"required,min=1"`
	Price           float64 `json:"price" binding:"required"`
	BufferBeforeMin int     `json:"buffer_before_min" binding:"min=0"`
	BufferAfterMin  int     `json:"buffer_after_min" binding:"min=0"`
	Category        string  `json:"category"`
	BarberIDs       []uint  `json:"barber_ids"`
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	DurationMin     *int     `json:"duration_min,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	BufferBeforeMin *int     `json:"buffer_before_min,omitempty"`
	BufferAfterMin  *int     `json:"buffer_after_min,omitempty"`
	Active          *bool    `json:"active,omitempty"`
	BarberIDs       []uint   `json:"barber_ids,omitempty"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	category := strings.ToLower(strings.TrimSpace(c.Query("category")))
	activeStr := strings.TrimSpace(c.Query("active"))
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("barbershop_id = ?", barbershopID)

	if category != "" {
		q = q.Where("LOWER(category) = ?", category)
	}

	if activeStr != "" {
		if activeStr == "true" {
			q = q.Where("active = ?", true)
		} else if activeStr == "false" {
			q = q.Where("active = ?", false)
		}
	}

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var services []models.Service
	if err := q.
		Order("id ASC").
		Find(&services).Error; err != nil {

		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_services"})
		return
	}

	c.JSON(http.StatusOK, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	service := models.Service{
		BarbershopID:    barbershopID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMin:     req.DurationMin,
		Price:           req.Price,
		BufferBeforeMin: req.BufferBeforeMin,
		BufferAfterMin:  req.BufferAfterMin,
		Active:          true,
		Category:        strings.ToLower(req.Category),
	}

	if err := h.db.Create(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_service"})
		return
	}

	if len(req.BarberIDs) > 0 {
		if err := h.replaceBarbers(&service, barbershopID, req.BarberIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_link_barbers"})
			return
		}
	}

	c.JSON(http.StatusCreated, service)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	id := c.Param("id")

	var service models.Service
	if err := h.db.
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		First(&service).Error; err != nil {

		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "service_not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_service"})
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.DurationMin != nil {
		if *req.DurationMin <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_duration"})
			return
		}
		service.DurationMin = *req.DurationMin
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.BufferBeforeMin != nil {
		if *req.BufferBeforeMin < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_buffer"})
			return
		}
		service.BufferBeforeMin = *req.BufferBeforeMin
	}
	if req.BufferAfterMin != nil {
		if *req.BufferAfterMin < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_buffer"})
			return
		}
		service.BufferAfterMin = *req.BufferAfterMin
	}
	if req.Active != nil {
		service.Active = *req.Active
	}

	if err := h.db.Save(&service).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_service"})
		return
	}

	if req.BarberIDs != nil {
		if err := h.replaceBarbers(&service, barbershopID, req.BarberIDs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_link_barbers"})
			return
		}
	}

	c.JSON(http.StatusOK, service)
}

// Delete deactivates a service instead of removing the row, so past
// appointments keep their reference.
func (h *ServiceHandler) Delete(c *gin.Context) {
	barbershopIDVal, _ := c.Get(middleware.ContextBarbershopID)
	barbershopID := barbershopIDVal.(uint)

	id := c.Param("id")

	res := h.db.Model(&models.Service{}).
		Where("id = ? AND barbershop_id = ?", id, barbershopID).
		Update("active", false)

	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_delete_service"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "service_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// replaceBarbers rewrites the barber links for the service; an empty set
// means every active barber offers it.
func (h *ServiceHandler) replaceBarbers(
	service *models.Service,
	barbershopID uint,
	barberIDs []uint,
) error {
	var barbers []models.User
	if len(barberIDs) > 0 {
		if err := h.db.
			Where("barbershop_id = ? AND id IN ?", barbershopID, barberIDs).
			Find(&barbers).Error; err != nil {
			return err
		}
	}
	return h.db.Model(service).Association("Barbers").Replace(barbers)
}
