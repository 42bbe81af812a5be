package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/config"
	"github.com/skillbridge/tutoring-backend/internal/database"
	"github.com/skillbridge/tutoring-backend/internal/handlers"
	"github.com/skillbridge/tutoring-backend/internal/middleware"
	"github.com/skillbridge/tutoring-backend/internal/ratelimit"
	"github.com/skillbridge/tutoring-backend/internal/server"
	"github.com/skillbridge/tutoring-backend/internal/services"
	"github.com/skillbridge/tutoring-backend/internal/session"
	"github.com/skillbridge/tutoring-backend/pkg/jwt"
	"github.com/skillbridge/tutoring-backend/pkg/validator"
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

	logger.Info("Starting SkillBridge tutoring backend")
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
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if err := validator.Register(); err != nil {
		logger.Fatalf("Failed to register validators: %v", err)
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
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.Migrate(ctx, db, logger)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Redis backs opaque sessions and the rate limiter
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		if cfg.Auth.SessionMode == config.SessionModeRedis {
			cancel()
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		logger.WithError(err).Warn("Redis unreachable, rate limiting will fail open")
	}
	cancel()

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	categoryRepository := database.NewCategoryRepository(db)
	profileRepository := database.NewTutorProfileRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	reviewRepository := database.NewReviewRepository(db)
	statsRepository := database.NewStatsRepository(db)

	// Session store
	var store session.Store
	switch cfg.Auth.SessionMode {
	case config.SessionModeJWT:
		store = session.NewJWTStore(jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL))
	default:
		store = session.NewRedisStore(rdb, cfg.Redis.KeyPrefix, cfg.Auth.SessionTTL)
	}
	resolver := session.NewResolver(store, userRepository, cfg.Auth.CookieName)
	logger.WithField("mode", cfg.Auth.SessionMode).Info("Session store initialized")

	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled() {
		fixedWindow, err := ratelimit.NewFixedWindowLimiter(rdb, cfg.Redis.KeyPrefix, cfg.RateLimit.Requests, cfg.RateLimit.Window(), logger)
		if err != nil {
			logger.Fatalf("Failed to initialize rate limiter: %v", err)
		}
		limiter = fixedWindow
	}

	// Initialize services
	logger.Info("Initializing services...")
	auditService := services.NewAuditService(db, cfg.Security.EnableAuditLog)
	authService := services.NewAuthService(userRepository, resolver, logger)
	registrationService := services.NewRegistrationService(userRepository, profileRepository, categoryRepository, cfg.Security.BcryptCost, logger)
	bookingService := services.NewBookingService(bookingRepository, userRepository, logger)
	tutorService := services.NewTutorService(profileRepository, categoryRepository, reviewRepository, bookingRepository, logger)
	reviewService := services.NewReviewService(reviewRepository, bookingRepository, userRepository, logger)
	categoryService := services.NewCategoryService(categoryRepository, logger)
	studentService := services.NewStudentService(userRepository, bookingRepository, logger)
	adminService := services.NewAdminService(userRepository, bookingRepository, statsRepository, logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, resolver, cfg.Auth, auditService, logger)
	routes := server.Handlers{
		Auth:         authHandler,
		Registration: handlers.NewRegistrationHandler(registrationService, authHandler, auditService, logger),
		Booking:      handlers.NewBookingHandler(bookingService, auditService, logger),
		Tutor:        handlers.NewTutorHandler(tutorService, logger),
		Review:       handlers.NewReviewHandler(reviewService, logger),
		Category:     handlers.NewCategoryHandler(categoryService, logger),
		Student:      handlers.NewStudentHandler(studentService, logger),
		Admin:        handlers.NewAdminHandler(adminService, auditService, logger),
	}

	router := server.NewRouter(server.Options{
		DB:         db,
		Redis:      rdb,
		Gate:       middleware.NewGate(resolver, logger),
		Limiter:    limiter,
		Window:     cfg.RateLimit.Window(),
		CORS:       cfg.CORS,
		Logger:     logger,
		Version:    version,
		RequestLog: cfg.Security.EnableRequestLog,
	}, routes)

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

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}
