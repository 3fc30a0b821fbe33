package router

import (
	"errors"
	"time"

	"kosku/config"
	"kosku/internal/auth"
	"kosku/internal/domain"
	"kosku/internal/handler"
	"kosku/internal/middleware"
	"kosku/internal/repository"
	"kosku/internal/service"
	"kosku/internal/ws"
	"kosku/pkg/snap"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services bundles what Setup wires beyond the HTTP surface, so main can hand
// the payment service to the cron scheduler.
type Services struct {
	Auth    *service.AuthService
	Booking *service.BookingService
	Payment *service.PaymentService
}

func Setup(cfg *config.Config, db *gorm.DB, gateway snap.Gateway) (*gin.Engine, *Services) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	staffHub := ws.NewStaffHub()

	// Services
	eventSvc := service.NewEventService(staffHub)
	authSvc := service.NewAuthService(cfg, userRepo)
	bookingSvc := service.NewBookingService(cfg, bookingRepo, paymentRepo, roomRepo, propertyRepo, userRepo, gateway, eventSvc)
	paymentSvc := service.NewPaymentService(cfg, paymentRepo, bookingRepo, ledgerRepo, eventSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo, propertyRepo)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc, userRepo)
	propertyHandler := handler.NewPropertyHandler(propertyRepo)
	roomHandler := handler.NewRoomHandler(roomRepo, propertyRepo)
	statsHandler := handler.NewStatsHandler(propertyRepo, roomRepo, bookingRepo, paymentRepo, ledgerRepo)
	webhookHandler := handler.NewPaymentWebhookHandler(paymentSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	staffMw := middleware.RequireStaff()
	ownerMw := middleware.RequireRole(domain.RoleSuperadmin, domain.RoleAdminKos)
	payLimiter := middleware.RateLimitByUser(middleware.NewInMemoryRateLimiter(10, time.Minute))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/me", authMw, authHandler.Me)
			authGroup.POST("/staff", authMw, ownerMw, authHandler.RegisterStaff)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		// Public room search
		api.GET("/rooms", roomHandler.Search)
		api.GET("/rooms/:id", roomHandler.Get)
		api.GET("/rooms/:id/availability", bookingHandler.Availability)

		bookings := api.Group("/bookings")
		bookings.Use(authMw)
		{
			bookings.POST("", payLimiter, bookingHandler.Create)
			bookings.GET("", bookingHandler.ListMine)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.POST("/:id/pay", payLimiter, bookingHandler.Pay)
			bookings.POST("/:id/cancel", bookingHandler.Cancel)
			bookings.POST("/:id/check-in", staffMw, bookingHandler.CheckIn)
			bookings.POST("/:id/check-out", staffMw, bookingHandler.CheckOut)
		}

		properties := api.Group("/properties")
		properties.Use(authMw)
		{
			properties.POST("", ownerMw, propertyHandler.Create)
			properties.GET("", ownerMw, propertyHandler.List)
			properties.GET("/:id", ownerMw, propertyHandler.Get)
			properties.PUT("/:id", ownerMw, propertyHandler.Update)
			properties.DELETE("/:id", ownerMw, propertyHandler.Delete)
			properties.POST("/:id/rooms", ownerMw, roomHandler.Create)
			properties.GET("/:id/rooms", staffMw, roomHandler.ListByProperty)
			properties.GET("/:id/bookings", staffMw, bookingHandler.ListForProperty)
			properties.GET("/:id/stats", ownerMw, statsHandler.Dashboard)
			properties.GET("/:id/ledger", ownerMw, statsHandler.Ledger)
		}
		api.PUT("/rooms/:id", authMw, ownerMw, roomHandler.Update)
		api.DELETE("/rooms/:id", authMw, ownerMw, roomHandler.Delete)

		// Gateway webhook; authenticated by payload signature, not by JWT.
		api.POST("/webhooks/payment", webhookHandler.Handle)
	}

	r.GET("/ws/properties/:id/bookings", ws.UpgradeStaffWS(&cfg.JWT, staffHub, staffFeedAuthorizer(userRepo, propertyRepo)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r, &Services{Auth: authSvc, Booking: bookingSvc, Payment: paymentSvc}
}

// staffFeedAuthorizer mirrors the booking service's property scoping for the
// WebSocket feed: SUPERADMIN anywhere, ADMINKOS on owned properties,
// RECEPTIONIST on their own property.
func staffFeedAuthorizer(users *repository.UserRepository, properties *repository.PropertyRepository) ws.Authorize {
	return func(claims *auth.Claims, propertyID uint) error {
		switch claims.Role {
		case domain.RoleSuperadmin:
			return nil
		case domain.RoleAdminKos:
			p, err := properties.GetByID(propertyID)
			if err != nil || p.OwnerID != claims.UserID {
				return errors.New("not the owner")
			}
			return nil
		case domain.RoleReceptionist:
			u, err := users.GetByID(claims.UserID)
			if err != nil || u.PropertyID == nil || *u.PropertyID != propertyID {
				return errors.New("not assigned to this property")
			}
			return nil
		}
		return errors.New("staff only")
	}
}
