package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CosmicMagnetar/unilodge/internal/config"
	"github.com/CosmicMagnetar/unilodge/internal/database"
	"github.com/CosmicMagnetar/unilodge/internal/handlers"
	"github.com/CosmicMagnetar/unilodge/internal/metrics"
	"github.com/CosmicMagnetar/unilodge/internal/middleware"
	"github.com/CosmicMagnetar/unilodge/internal/models"
	"github.com/CosmicMagnetar/unilodge/internal/services"
	"github.com/CosmicMagnetar/unilodge/pkg/jwt"
	"github.com/CosmicMagnetar/unilodge/pkg/validator"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting UniLodge booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		applied, err := database.Migrate(db)
		if err != nil {
			logger.Fatalf("Failed to apply migrations: %v", err)
		}
		for _, name := range applied {
			logger.WithField("migration", name).Info("Applied migration")
		}
	}

	// Token denylist: Redis when configured, process memory otherwise
	redisClient, err := database.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		logger.Info("Token denylist backed by Redis")
	} else {
		logger.Warn("REDIS_URL not set, token denylist kept in memory")
	}
	denylist := services.NewTokenDenylist(redisClient)

	metrics.Register()

	// Repositories
	userRepository := database.NewUserRepository(db)
	refreshTokenRepository := database.NewRefreshTokenRepository(db)
	roomRepository := database.NewRoomRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	bookingRequestRepository := database.NewBookingRequestRepository(db)
	notificationRepository := database.NewNotificationRepository(db)
	reviewRepository := database.NewReviewRepository(db)
	contactRepository := database.NewContactRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	v := validator.New()
	auditService := services.NewAuditService(db, cfg.Security.EnableAuditLog)
	authService := services.NewAuthService(
		userRepository,
		refreshTokenRepository,
		jwtService,
		denylist,
		v,
		cfg.Security.BcryptCost,
		logger,
	)
	notificationService := services.NewNotificationService(notificationRepository, cfg.Booking.NotificationListLimit, logger)
	roomService := services.NewRoomService(db, roomRepository, reviewRepository, notificationService, v, logger)
	bookingService := services.NewBookingService(db, roomRepository, bookingRepository, logger)
	bookingRequestService := services.NewBookingRequestService(
		db,
		bookingRequestRepository,
		roomRepository,
		bookingRepository,
		notificationService,
		cfg.Booking,
		logger,
	)
	reviewService := services.NewReviewService(db, reviewRepository, bookingRepository, roomRepository)
	contactService := services.NewContactService(contactRepository, v)

	// Initialize and start cron service
	cronService := services.NewCronService(cfg.Cron, notificationService, authService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, auditService, cfg)
	roomHandler := handlers.NewRoomHandler(roomService, reviewService, auditService)
	bookingHandler := handlers.NewBookingHandler(bookingService, auditService)
	bookingRequestHandler := handlers.NewBookingRequestHandler(bookingRequestService, auditService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	contactHandler := handlers.NewContactHandler(contactService)

	// Setup Gin router
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
	}

	// Global middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(middleware.Metrics())

	// CORS with credentials so the auth cookies travel cross-origin
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRequired := middleware.AuthMiddleware(jwtService, denylist)
	adminOnly := middleware.RequireRole(models.RoleAdmin)
	staffOnly := middleware.RequireRole(models.RoleAdmin, models.RoleWarden)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimit).Middleware(handlers.RateLimitAuditor(auditService))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimiter, authHandler.Register)
			auth.POST("/login", authLimiter, authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authRequired, authHandler.Logout)
			auth.GET("/me", authRequired, authHandler.Me)
		}

		rooms := v1.Group("/rooms")
		{
			rooms.GET("", roomHandler.ListRooms)
			rooms.GET("/:id", roomHandler.GetRoom)
			rooms.POST("", authRequired, staffOnly, roomHandler.CreateRoom)
			rooms.PUT("/:id", authRequired, staffOnly, roomHandler.UpdateRoom)
			rooms.DELETE("/:id", authRequired, adminOnly, roomHandler.DeleteRoom)
			rooms.PATCH("/:id/approval", authRequired, adminOnly, roomHandler.SetApproval)
			rooms.POST("/:id/reviews", authRequired, roomHandler.CreateReview)
		}

		bookingRequests := v1.Group("/booking-requests")
		bookingRequests.Use(authRequired)
		{
			bookingRequests.POST("", bookingRequestHandler.CreateRequest)
			bookingRequests.GET("", adminOnly, bookingRequestHandler.ListRequests)
			bookingRequests.GET("/my-requests", bookingRequestHandler.ListMyRequests)
			bookingRequests.POST("/:id/approve", adminOnly, bookingRequestHandler.ApproveRequest)
			bookingRequests.POST("/:id/reject", adminOnly, bookingRequestHandler.RejectRequest)
			bookingRequests.DELETE("/:id", adminOnly, bookingRequestHandler.DeleteRequest)
		}

		bookings := v1.Group("/bookings")
		bookings.Use(authRequired)
		{
			bookings.GET("", bookingHandler.ListBookings)
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.PATCH("/:id/status", bookingHandler.UpdateStatus)
			bookings.POST("/:id/payment", bookingHandler.ProcessPayment)
			bookings.POST("/:id/checkin", bookingHandler.CheckIn)
			bookings.POST("/:id/checkout", bookingHandler.CheckOut)
		}

		notifications := v1.Group("/notifications")
		notifications.Use(authRequired)
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.PATCH("/read-all", notificationHandler.MarkAllRead)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		contact := v1.Group("/contact")
		{
			contact.POST("", middleware.OptionalAuth(jwtService, denylist), contactHandler.Submit)
			contact.GET("", authRequired, adminOnly, contactHandler.ListMessages)
			contact.PATCH("/:id/status", authRequired, adminOnly, contactHandler.UpdateStatus)
		}

		admin := v1.Group("/admin")
		admin.Use(authRequired, adminOnly)
		{
			admin.GET("/cron/status", func(c *gin.Context) {
				c.JSON(http.StatusOK, cronService.GetJobStatus())
			})
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	logger.Info("Stopping cron service...")
	cronService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "healthy"
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
