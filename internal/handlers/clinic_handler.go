package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/middleware"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

type ClinicHandler struct {
	db *gorm.DB
}

func NewClinicHandler(db *gorm.DB) *ClinicHandler {
	return &ClinicHandler{db: db}
}

type UpdateClinicRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	OpeningTime *string `json:"opening_time"`
	ClosingTime *string `json:"closing_time"`
}

// ======================================================
// GET CLINIC
// ======================================================
func (h *ClinicHandler) Get(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	var clinic models.Clinic
	if err := h.db.First(&clinic, clinicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "clinic_not_found"})
		return
	}

	c.JSON(http.StatusOK, clinic)
}

// ======================================================
// UPDATE CLINIC
// ======================================================
func (h *ClinicHandler) Update(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	var clinic models.Clinic
	if err := h.db.First(&clinic, clinicID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "clinic_not_found"})
		return
	}

	var req UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if req.Name != nil {
		clinic.Name = *req.Name
	}
	if req.Phone != nil {
		clinic.Phone = *req.Phone
	}
	if req.Address != nil {
		clinic.Address = *req.Address
	}
	if req.OpeningTime != nil {
		if !domain.ValidHour(*req.OpeningTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_opening_time"})
			return
		}
		clinic.OpeningTime = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		if !domain.ValidHour(*req.ClosingTime) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_closing_time"})
			return
		}
		clinic.ClosingTime = *req.ClosingTime
	}

	if err := h.db.Save(&clinic).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_update_clinic"})
		return
	}

	c.JSON(http.StatusOK, clinic)
}
