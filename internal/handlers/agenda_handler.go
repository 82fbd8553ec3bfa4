package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/middleware"
	"github.com/VitalisClinicas/clinic-scheduler/internal/models"
)

// AgendaHandler configura a agenda do profissional: intervalo entre
// atendimentos e expediente por dia da semana
type AgendaHandler struct {
	db *gorm.DB
}

func NewAgendaHandler(db *gorm.DB) *AgendaHandler {
	return &AgendaHandler{db: db}
}

type AgendaUpdateRequest struct {
	AppointmentInterval *int                              `json:"appointment_interval"`
	WorkHours           map[string][]scheduling.TimeRange `json:"work_hours"`
}

func (h *AgendaHandler) Get(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_agenda"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"appointment_interval": user.AppointmentInterval,
		"work_hours":           user.WorkHours,
	})
}

func (h *AgendaHandler) Update(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)

	var req AgendaUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_get_agenda"})
		return
	}

	if req.AppointmentInterval != nil {
		if *req.AppointmentInterval < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_interval"})
			return
		}
		user.AppointmentInterval = *req.AppointmentInterval
	}

	if req.WorkHours != nil {
		raw, err := json.Marshal(req.WorkHours)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_work_hours"})
			return
		}
		user.WorkHours = datatypes.JSON(raw)
	}

	if err := h.db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_save_agenda"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
