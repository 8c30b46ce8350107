package routes

import (
	"math/rand"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/trimworks/booking-api/internal/audit"
	"github.com/trimworks/booking-api/internal/cache"
	"github.com/trimworks/booking-api/internal/clock"
	"github.com/trimworks/booking-api/internal/config"
	"github.com/trimworks/booking-api/internal/handlers"
	infraRepo "github.com/trimworks/booking-api/internal/infra/repository"
	"github.com/trimworks/booking-api/internal/metrics"
	"github.com/trimworks/booking-api/internal/middleware"
	"github.com/trimworks/booking-api/internal/notify"
	"github.com/trimworks/booking-api/internal/payment"
	"github.com/trimworks/booking-api/internal/rules"
	ucAppointment "github.com/trimworks/booking-api/internal/usecase/appointment"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	cfg *config.Config,
	log *zap.Logger,
	slots *cache.SlotCache,
) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	clk := clock.NewRealClock()
	notifier := notify.NewLogNotifier(log)

	var gateway payment.Gateway = payment.NopGateway{}
	if cfg.MPAccessToken != "" {
		mp, err := payment.NewMercadoPagoGateway(cfg.MPAccessToken, log)
		if err != nil {
			log.Warn("mercadopago_init_failed", zap.Error(err))
		} else {
			gateway = mp
		}
	}

	engine := rules.NewFrequencyEngine(appointmentRepo, 2)
	picker := ucAppointment.NewBarberPicker(
		rand.New(rand.NewSource(time.Now().UnixNano())),
	)

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	availabilityUC := ucAppointment.NewGetAvailability(
		appointmentRepo,
		clk,
		slots,
		log,
	)

	anyAvailabilityUC := ucAppointment.NewAnyProfessionalAvailability(
		appointmentRepo,
		clk,
	)

	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		engine,
		clk,
		picker,
		auditDispatcher,
		notifier,
		gateway,
		slots,
		log,
	)

	updateAppointmentUC := ucAppointment.NewUpdateAppointment(
		appointmentRepo,
		clk,
		auditDispatcher,
		notifier,
		slots,
		log,
	)

	cancelAppointmentUC := ucAppointment.NewCancelAppointment(
		appointmentRepo,
		clk,
		auditDispatcher,
		notifier,
		slots,
		log,
	)

	confirmAppointmentUC := ucAppointment.NewConfirmAppointment(
		appointmentRepo,
		clk,
		auditDispatcher,
	)

	completeAppointmentUC := ucAppointment.NewCompleteAppointment(
		appointmentRepo,
		clk,
		auditDispatcher,
	)

	listAppointmentsByDateUC := ucAppointment.NewListAppointmentsByDate(
		appointmentRepo,
	)

	listAppointmentsByMonthUC := ucAppointment.NewListAppointmentsByMonth(
		appointmentRepo,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	barbershopHandler := handlers.NewBarbershopHandler(db)

	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	availabilityRulesHandler := handlers.NewAvailabilityRulesHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		db,
		createAppointmentUC,
		updateAppointmentUC,
		cancelAppointmentUC,
		confirmAppointmentUC,
		completeAppointmentUC,
		listAppointmentsByDateUC,
		listAppointmentsByMonthUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(
		db,
		appointmentRepo,
		availabilityUC,
		anyAvailabilityUC,
		createAppointmentUC,
		cancelAppointmentUC,
	)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC API (per-shop, by slug)
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/barbers", publicHandler.ListBarbers)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.GET("/:slug/any-availability", publicHandler.AnyAvailability)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
			publicAPI.POST("/:slug/appointments/:code/cancel", publicHandler.CancelByCode)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/barbershop", barbershopHandler.GetMeBarbershop)
			secured.PATCH("/me/barbershop", barbershopHandler.UpdateMeBarbershop)

			secured.GET("/me/clients", clientHandler.List)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)
			secured.DELETE("/me/services/:id", serviceHandler.Delete)

			secured.GET("/me/availability-rules", availabilityRulesHandler.Get)
			secured.PUT("/me/availability-rules", availabilityRulesHandler.Update)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.PUT("/me/appointments/:id", appointmentHandler.Update)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/confirm", appointmentHandler.Confirm)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}

	r.GET("/metrics", metrics.Handler())
}
