package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/VitalisClinicas/clinic-scheduler/internal/middleware"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

type PendingServiceHandler struct {
	db *gorm.DB
}

func NewPendingServiceHandler(db *gorm.DB) *PendingServiceHandler {
	return &PendingServiceHandler{db: db}
}

type CreatePendingServiceRequest struct {
	ClientID  uint `json:"client_id" binding:"required"`
	ServiceID uint `json:"service_id" binding:"required"`
}

// ======================================================
// LIST PENDING SERVICES
// ======================================================
func (h *PendingServiceHandler) List(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	q := h.db.Where("clinic_id = ?", clinicID)

	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	if clientID := c.Query("client_id"); clientID != "" {
		id, err := strconv.ParseUint(clientID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_client_id"})
			return
		}
		q = q.Where("client_id = ?", id)
	}

	var pending []models.PendingService
	if err := q.Order("created_at desc").Find(&pending).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_list_pending_services"})
		return
	}

	c.JSON(http.StatusOK, pending)
}

// ======================================================
// CREATE PENDING SERVICE
// ======================================================
func (h *PendingServiceHandler) Create(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	var req CreatePendingServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var client models.Client
	if err := h.db.Where("id = ? AND clinic_id = ?", req.ClientID, clinicID).First(&client).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "client_not_found"})
		return
	}

	pending := models.PendingService{
		ClinicID:  clinicID,
		ClientID:  req.ClientID,
		ServiceID: req.ServiceID,
		Status:    "pending",
		Token:     uuid.NewString(),
	}

	if err := h.db.Create(&pending).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_pending_service"})
		return
	}

	c.JSON(http.StatusCreated, pending)
}

// ======================================================
// GET BY TOKEN (public confirmation link)
// ======================================================
func (h *PendingServiceHandler) GetByToken(c *gin.Context) {
	token := c.Param("token")

	var pending models.PendingService
	if err := h.db.Where("token = ?", token).First(&pending).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "pending_service_not_found"})
		return
	}

	c.JSON(http.StatusOK, pending)
}
