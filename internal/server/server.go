package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/gedemagt/booking/internal/auth"
	"github.com/gedemagt/booking/internal/booking"
	"github.com/gedemagt/booking/internal/config"
	"github.com/gedemagt/booking/internal/email"
	"github.com/gedemagt/booking/internal/gym"
	"github.com/gedemagt/booking/internal/policy"
	"github.com/gedemagt/booking/internal/user"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	config *config.Config
	http   *http.Server
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())

	userRepo := user.NewRepository(db)
	gymRepo := gym.NewRepository(db)
	bookingRepo := booking.NewRepository(db)

	userService := user.NewService(userRepo, cfg.JWTSecret)
	gymService := gym.NewService(gymRepo)
	bookingService := booking.NewService(db, bookingRepo, gymRepo,
		booking.WithNotifier(newBookingNotifier(emailService, userRepo, gymRepo)))

	userHandler := user.NewHandler(userService)
	gymHandler := gym.NewHandler(gymService)
	bookingHandler := booking.NewHandler(bookingService)

	public := router.Group("/auth")
	public.Use(RateLimitMiddleware(5, 10))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	authMiddleware := auth.Middleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.POST("/gyms", gymHandler.CreateGym)
		protected.GET("/gyms/:gymID", gymHandler.GetGym)
		protected.POST("/gyms/join", gymHandler.Join)
		protected.PUT("/gyms/:gymID/settings", gymHandler.UpdateSettings)
		protected.GET("/gyms/:gymID/zones", gymHandler.ListZones)
		protected.POST("/gyms/:gymID/zones", gymHandler.CreateZone)
		protected.DELETE("/zones/:zoneID", gymHandler.DeleteZone)
		protected.POST("/gyms/:gymID/admins", gymHandler.SetAdmin)
		protected.POST("/gyms/:gymID/instructors", gymHandler.SetInstructor)

		protected.GET("/zones/:zoneID/occupancy", bookingHandler.Occupancy)
		protected.POST("/zones/:zoneID/bookings", bookingHandler.Create)
		protected.POST("/zones/:zoneID/recurring", bookingHandler.CreateRecurring)
		protected.GET("/bookings", bookingHandler.ListMine)
		protected.DELETE("/bookings/:bookingID", bookingHandler.Delete)
		protected.PATCH("/bookings/:bookingID/note", bookingHandler.UpdateNote)
		protected.DELETE("/recurring/:recurringID", bookingHandler.DeleteRecurring)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(policy.RoleAdmin))
	{
		admin.GET("/zones/:zoneID/bookings", bookingHandler.ListByZone)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
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
