package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/VitalisClinicas/clinic-scheduler/internal/audit"
	"github.com/VitalisClinicas/clinic-scheduler/internal/cache"
	"github.com/VitalisClinicas/clinic-scheduler/internal/clock"
	"github.com/VitalisClinicas/clinic-scheduler/internal/config"
	"github.com/VitalisClinicas/clinic-scheduler/internal/handlers"
	"github.com/VitalisClinicas/clinic-scheduler/internal/infra/payment"
	infraRepo "github.com/VitalisClinicas/clinic-scheduler/internal/infra/repository"
	"github.com/VitalisClinicas/clinic-scheduler/internal/middleware"
	ucAppointment "github.com/VitalisClinicas/clinic-scheduler/internal/usecase/appointment"
	ucPackage "github.com/VitalisClinicas/clinic-scheduler/internal/usecase/clientpackage"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	schedulingRepo := infraRepo.NewSchedulingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	// Cache de disponibilidade é opcional: sem REDIS_ADDR toda
	// consulta cai direto no cálculo
	availabilityCache := cache.NewAvailabilityCache(cfg.RedisAddr, log)

	var paymentLinker ucPackage.PaymentLinker
	if cfg.MPAccessToken != "" {
		linker, err := payment.NewMercadoPagoLinker(cfg.MPAccessToken)
		if err != nil {
			log.Warn("mercado pago disabled", zap.Error(err))
		} else {
			paymentLinker = linker
		}
	}

	clk := clock.System()

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		schedulingRepo,
		auditDispatcher,
		availabilityCache,
		clk,
	)

	transitionAppointmentUC := ucAppointment.NewTransitionAppointment(
		schedulingRepo,
		auditDispatcher,
		availabilityCache,
		clk,
	)

	rescheduleAppointmentUC := ucAppointment.NewRescheduleAppointment(
		schedulingRepo,
		auditDispatcher,
		availabilityCache,
		clk,
	)

	deleteAppointmentUC := ucAppointment.NewDeleteAppointment(
		schedulingRepo,
		auditDispatcher,
		availabilityCache,
		ucAppointment.DeletePolicy(cfg.LedgerDeletePolicy),
	)

	bulkTransitionUC := ucAppointment.NewBulkTransition(transitionAppointmentUC)

	availabilityUC := ucAppointment.NewGetAvailability(
		schedulingRepo,
		availabilityCache,
	)

	listAppointmentsByDateUC := ucAppointment.NewListAppointmentsByDate(
		schedulingRepo,
	)

	listAppointmentsByMonthUC := ucAppointment.NewListAppointmentsByMonth(
		schedulingRepo,
	)

	// ======================================================
	// USE CASES — PACKAGES
	// ======================================================
	sellPackageUC := ucPackage.NewSellPackage(
		schedulingRepo,
		paymentLinker,
		auditDispatcher,
		clk,
	)

	resolveBalanceUC := ucPackage.NewResolveBalance(schedulingRepo, clk)

	correctHistoryUC := ucPackage.NewCorrectHistory(
		schedulingRepo,
		auditDispatcher,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	clinicHandler := handlers.NewClinicHandler(db)

	clientHandler := handlers.NewClientHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	agendaHandler := handlers.NewAgendaHandler(db)
	pendingServiceHandler := handlers.NewPendingServiceHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		transitionAppointmentUC,
		rescheduleAppointmentUC,
		deleteAppointmentUC,
		bulkTransitionUC,
		availabilityUC,
		listAppointmentsByDateUC,
		listAppointmentsByMonthUC,
	)

	packageHandler := handlers.NewPackageHandler(
		db,
		sellPackageUC,
		resolveBalanceUC,
		correctHistoryUC,
	)

	auditLogHandler := handlers.NewAuditLogHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.GET("/public/pending-services/:token", pendingServiceHandler.GetByToken)

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.Get)

			secured.GET("/me/clinic", clinicHandler.Get)
			secured.PATCH("/me/clinic", clinicHandler.Update)

			secured.GET("/me/agenda", agendaHandler.Get)
			secured.PUT("/me/agenda", agendaHandler.Update)

			secured.GET("/me/clients", clientHandler.List)
			secured.POST("/me/clients", clientHandler.Create)
			secured.PATCH("/me/clients/:id", clientHandler.Update)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.GET("/me/appointments/availability", appointmentHandler.Availability)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)
			secured.POST("/me/appointments/:id/reschedule", appointmentHandler.Reschedule)
			secured.DELETE("/me/appointments/:id", appointmentHandler.Delete)
			secured.POST("/me/appointments/bulk-status", appointmentHandler.BulkTransition)

			// ------------------------------
			// PACKAGES
			// ------------------------------
			secured.GET("/me/catalog-packages", packageHandler.ListCatalog)
			secured.POST("/me/catalog-packages", packageHandler.CreateCatalog)
			secured.PATCH("/me/catalog-packages/:id", packageHandler.UpdateCatalog)

			secured.POST("/me/client-packages", packageHandler.Sell)
			secured.GET("/me/client-packages", packageHandler.ListByClient)
			secured.GET("/me/client-packages/balance", packageHandler.Balance)
			secured.GET("/me/client-packages/:id/remaining", packageHandler.Remaining)
			secured.DELETE("/me/client-packages/:id/history/:index", packageHandler.RemoveHistoryEntry)

			// ------------------------------
			// PENDING SERVICES
			// ------------------------------
			secured.GET("/me/pending-services", pendingServiceHandler.List)
			secured.POST("/me/pending-services", pendingServiceHandler.Create)

			secured.GET("/me/audit-logs", auditLogHandler.List)
		}
	}
}
