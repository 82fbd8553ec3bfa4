package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domain "github.com/VitalisClinicas/clinic-scheduler/internal/domain/scheduling"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httperr"
	"github.com/VitalisClinicas/clinic-scheduler/internal/httpresp"
	"github.com/VitalisClinicas/clinic-scheduler/internal/middleware"
	ucAppointment "github.com/VitalisClinicas/clinic-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	createUC     *ucAppointment.CreateAppointment
	transitionUC *ucAppointment.TransitionAppointment
	rescheduleUC *ucAppointment.RescheduleAppointment
	deleteUC     *ucAppointment.DeleteAppointment
	bulkUC       *ucAppointment.BulkTransition
	availUC      *ucAppointment.GetAvailability
	listDateUC   *ucAppointment.ListAppointmentsByDate
	listMonthUC  *ucAppointment.ListAppointmentsByMonth
}

func NewAppointmentHandler(
	createUC *ucAppointment.CreateAppointment,
	transitionUC *ucAppointment.TransitionAppointment,
	rescheduleUC *ucAppointment.RescheduleAppointment,
	deleteUC *ucAppointment.DeleteAppointment,
	bulkUC *ucAppointment.BulkTransition,
	availUC *ucAppointment.GetAvailability,
	listDateUC *ucAppointment.ListAppointmentsByDate,
	listMonthUC *ucAppointment.ListAppointmentsByMonth,
) *AppointmentHandler {
	return &AppointmentHandler{
		createUC:     createUC,
		transitionUC: transitionUC,
		rescheduleUC: rescheduleUC,
		deleteUC:     deleteUC,
		bulkUC:       bulkUC,
		availUC:      availUC,
		listDateUC:   listDateUC,
		listMonthUC:  listMonthUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	EmployeeID uint   `json:"employee_id" binding:"required"`
	ClientID   uint   `json:"client_id" binding:"required"`
	ServiceID  uint   `json:"service_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	Notes      string `json:"notes"`

	DependentIndex   *int  `json:"dependent_index"`
	ClientPackageID  *uint `json:"client_package_id"`
	PendingServiceID *uint `json:"pending_service_id"`
	OverrideConflict bool  `json:"override_conflict"`
}

type RescheduleRequest struct {
	Date             string `json:"date" binding:"required"`
	Time             string `json:"time" binding:"required"`
	Notes            string `json:"notes"`
	OverrideConflict bool   `json:"override_conflict"`
}

type BulkTransitionRequest struct {
	AppointmentIDs []uint `json:"appointment_ids" binding:"required"`
	Status         string `json:"status" binding:"required"`
}

// writeEngineError traduz os erros do motor para HTTP. Conflito sai
// com a lista de agendamentos conflitantes para a UI pedir a
// confirmação de encaixe.
func writeEngineError(c *gin.Context, err error) {
	if ce, ok := httperr.AsConflict(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error_code":  "slot_occupied",
			"message":     "Horário ocupado. Confirme o encaixe para prosseguir.",
			"conflicting": ce.Conflicting,
		})
		return
	}

	switch {
	case httperr.IsValidation(err):
		httperr.BadRequest(c, "missing_required_field", err.Error())
	case httperr.IsNotFound(err):
		httperr.NotFound(c, "not_found", err.Error())
	case httperr.IsConsistency(err):
		httperr.UnprocessableEntity(c, "ledger_inconsistency", err.Error())
	case httperr.IsBusiness(err, "invalid_state"):
		httperr.BadRequest(c, "invalid_state", "Transição de status inválida.")
	case httperr.IsBusiness(err, "invalid_date_or_time"):
		httperr.BadRequest(c, "invalid_date_or_time", "Data ou hora inválida.")
	default:
		httperr.Internal(c, "internal_error", err.Error())
	}
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.createUC.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		ClinicID:         clinicID,
		EmployeeID:       req.EmployeeID,
		ClientID:         req.ClientID,
		ServiceID:        req.ServiceID,
		Date:             req.Date,
		Time:             req.Time,
		Notes:            req.Notes,
		DependentIndex:   req.DependentIndex,
		ClientPackageID:  req.ClientPackageID,
		PendingServiceID: req.PendingServiceID,
		OverrideConflict: req.OverrideConflict,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// STATUS (complete / cancel)
// ======================================================

func (h *AppointmentHandler) Complete(c *gin.Context) {
	h.transition(c, domain.StatusCompleted)
}

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	h.transition(c, domain.StatusCancelled)
}

func (h *AppointmentHandler) transition(c *gin.Context, status domain.Status) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	ap, err := h.transitionUC.Execute(c.Request.Context(), clinicID, uint(id), status)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	ap, err := h.rescheduleUC.Execute(c.Request.Context(), clinicID, uint(id), ucAppointment.RescheduleInput{
		Date:             req.Date,
		Time:             req.Time,
		Notes:            req.Notes,
		OverrideConflict: req.OverrideConflict,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// DELETE
// ======================================================

func (h *AppointmentHandler) Delete(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "ID inválido.")
		return
	}

	if err := h.deleteUC.Execute(c.Request.Context(), clinicID, uint(id)); err != nil {
		writeEngineError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ======================================================
// BULK (fechamento do dia)
// ======================================================

func (h *AppointmentHandler) BulkTransition(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	var req BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Dados inválidos.")
		return
	}

	status := domain.Status(req.Status)
	if status != domain.StatusCompleted && status != domain.StatusCancelled {
		httperr.BadRequest(c, "invalid_status", "Status inválido.")
		return
	}

	result := h.bulkUC.ApplyToMany(c.Request.Context(), clinicID, req.AppointmentIDs, status)
	httpresp.OK(c, result)
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	clinicID := c.MustGet(middleware.ContextClinicID).(uint)

	employeeID, err := strconv.ParseUint(c.Query("employee_id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_employee_id", "Profissional inválido.")
		return
	}

	date, err := parseDate(c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	slots, err := h.availUC.Execute(c.Request.Context(), domain.AvailabilityInput{
		ClinicID:   clinicID,
		EmployeeID: uint(employeeID),
		Date:       date,
	})
	if err != nil {
		writeEngineError(c, err)
		return
	}

	httpresp.List(c, slots)
}

// ======================================================
// LISTS
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	employeeID := c.MustGet(middleware.ContextUserID).(uint)

	if q := c.Query("employee_id"); q != "" {
		if id, err := strconv.ParseUint(q, 10, 64); err == nil {
			employeeID = uint(id)
		}
	}

	date, err := parseDate(c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Data inválida.")
		return
	}

	out, err := h.listDateUC.Execute(c.Request.Context(), employeeID, date)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	employeeID := c.MustGet(middleware.ContextUserID).(uint)

	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_period", "Período inválido.")
		return
	}

	out, err := h.listMonthUC.Execute(c.Request.Context(), employeeID, year, month)
	if err != nil {
		writeEngineError(c, err)
		return
	}

	httpresp.List(c, out)
}
