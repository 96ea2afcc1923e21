package server

import (
	"context"
	"net/http"

	"movestrong/internal/auth"
	"movestrong/internal/booking"
	"movestrong/internal/config"
	"movestrong/internal/email"
	"movestrong/internal/member"
	"movestrong/internal/schedule"
	"movestrong/internal/waitlist"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router  *gin.Engine
	httpSrv *http.Server
	db      *sqlx.DB
	config  *config.Config
	email   *email.Service
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	memberRepo := member.NewRepository(db)
	scheduleRepo := schedule.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	waitlistRepo := waitlist.NewRepository(db)

	scheduleService := schedule.NewService(scheduleRepo)
	bookingService := booking.NewService(bookingRepo, scheduleRepo, memberRepo, waitlistRepo, emailService)

	memberHandler := member.NewHandler(memberRepo, cfg.JWTSecret)
	scheduleHandler := schedule.NewHandler(scheduleService)
	bookingHandler := booking.NewHandler(bookingService)
	waitlistHandler := waitlist.NewHandler(waitlistRepo)

	// Booking endpoints are public JSON with the member id in the body, so
	// they get per-IP rate limiting instead of token auth.
	bookingLimiter := RateLimitMiddleware(5, 10)
	router.POST("/book-class", bookingLimiter, bookingHandler.BookClass)
	router.POST("/cancel-booking", bookingLimiter, bookingHandler.CancelBooking)
	router.GET("/schedule", scheduleHandler.ListSchedule)
	router.GET("/plans", memberHandler.ListPlans)

	public := router.Group("/auth")
	{
		public.POST("/register", memberHandler.Register)
		public.POST("/login", memberHandler.Login)
		public.POST("/refresh", memberHandler.RefreshToken)
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", memberHandler.GetMe)
		protected.GET("/my/membership", memberHandler.GetMyMembership)
		protected.GET("/my/bookings", bookingHandler.ListMyBookings)
	}

	adminMiddleware := auth.RequireRole("admin")
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/sessions", scheduleHandler.CreateSession)
		admin.GET("/sessions/:sessionID/bookings", bookingHandler.ListBookingsBySession)
		admin.GET("/sessions/:sessionID/waitlist", waitlistHandler.ListBySession)
		admin.GET("/sessions/:sessionID/reconcile", scheduleHandler.ReconcileSession)
		admin.POST("/members/:memberID/memberships", memberHandler.GrantMembership)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.httpSrv = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
