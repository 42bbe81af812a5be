package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/skillbridge/tutoring-backend/internal/config"
	"github.com/skillbridge/tutoring-backend/internal/database"
	"github.com/skillbridge/tutoring-backend/internal/handlers"
	"github.com/skillbridge/tutoring-backend/internal/middleware"
	"github.com/skillbridge/tutoring-backend/internal/models"
)

// Handlers groups the route handlers mounted by the router
type Handlers struct {
	Auth         *handlers.AuthHandler
	Registration *handlers.RegistrationHandler
	Booking      *handlers.BookingHandler
	Tutor        *handlers.TutorHandler
	Review       *handlers.ReviewHandler
	Category     *handlers.CategoryHandler
	Student      *handlers.StudentHandler
	Admin        *handlers.AdminHandler
}

// Options carries the infrastructure the router depends on
type Options struct {
	DB      database.DB
	Redis   *redis.Client // optional; reported by the health check when set
	Gate    *middleware.Gate
	Limiter middleware.Limiter // nil disables rate limiting
	Window  time.Duration
	CORS    config.CORSConfig
	Logger  *logrus.Logger
	Version string

	RequestLog bool
}

// NewRouter builds the gin engine with every API route registered
func NewRouter(opts Options, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if opts.RequestLog {
		router.Use(middleware.RequestLogger(opts.Logger))
	}
	router.Use(middleware.CORS(opts.CORS))

	health := healthCheckHandler(opts.DB, opts.Redis, opts.Version)
	router.GET("/health", health)

	gate := opts.Gate
	limit := middleware.RateLimit(opts.Limiter, opts.Window, opts.Logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", health)

		register := v1.Group("/register")
		{
			register.POST("", limit, h.Registration.Register)
			register.GET("/status", gate.Require(h.Registration.Status))
			register.POST("/setup-profile", gate.Require(h.Registration.SetupProfile, models.RoleTutor))
		}

		auth := v1.Group("/auth")
		{
			auth.POST("/sign-in", limit, h.Auth.SignIn)
			auth.POST("/sign-out", gate.Require(h.Auth.SignOut))
			auth.GET("/get-session", h.Auth.GetSession)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.POST("", gate.Require(h.Booking.CreateBooking, models.RoleStudent))
			bookings.GET("", gate.Require(h.Booking.ListBookings, models.RoleStudent, models.RoleTutor, models.RoleAdmin))
			bookings.GET("/:id", gate.Require(h.Booking.GetBooking, models.RoleStudent, models.RoleTutor))
			bookings.PATCH("/:id/cancel", gate.Require(h.Booking.CancelBooking, models.RoleStudent, models.RoleTutor))
		}

		tutor := v1.Group("/tutor")
		{
			tutor.GET("/sessions", gate.Require(h.Booking.ListBookings, models.RoleTutor))
			tutor.PATCH("/sessions/:id/accept", gate.Require(h.Booking.AcceptSession, models.RoleTutor))
			tutor.PATCH("/sessions/:id/complete", gate.Require(h.Booking.CompleteSession, models.RoleTutor))
			tutor.GET("/profile", gate.Require(h.Tutor.GetProfile, models.RoleTutor))
			tutor.PUT("/profile", gate.Require(h.Tutor.UpsertProfile, models.RoleTutor))
			tutor.PUT("/availability", gate.Require(h.Tutor.UpdateAvailability, models.RoleTutor))
			tutor.GET("/dashboard", gate.Require(h.Tutor.Dashboard, models.RoleTutor))
		}

		tutors := v1.Group("/tutors")
		{
			tutors.GET("", h.Tutor.ListTutors)
			tutors.GET("/featured", h.Tutor.FeaturedTutors)
			tutors.GET("/:id", h.Tutor.GetTutor)
		}

		v1.POST("/reviews", gate.Require(h.Review.CreateReview, models.RoleStudent))

		categories := v1.Group("/categories")
		{
			categories.GET("", h.Category.ListCategories)
			categories.POST("", gate.Require(h.Category.CreateCategory, models.RoleAdmin))
			categories.PUT("/:id", gate.Require(h.Category.UpdateCategory, models.RoleAdmin))
			categories.DELETE("/:id", gate.Require(h.Category.DeleteCategory, models.RoleAdmin))
		}

		student := v1.Group("/student")
		{
			student.GET("/profile", gate.Require(h.Student.GetProfile, models.RoleStudent))
			student.PUT("/profile", gate.Require(h.Student.UpdateProfile, models.RoleStudent))
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/users", gate.Require(h.Admin.ListUsers, models.RoleAdmin))
			admin.PATCH("/users/:id/status", gate.Require(h.Admin.UpdateUserStatus, models.RoleAdmin))
			admin.GET("/stats", gate.Require(h.Admin.Stats, models.RoleAdmin))
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "Route not found",
			"code":    "NOT_FOUND",
		})
	})

	return router
}

// healthCheckHandler reports database and Redis reachability. Only the
// database decides the status code; a Redis outage degrades sessions and
// rate limiting but is reported as such.
func healthCheckHandler(db database.DB, rdb *redis.Client, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		body := gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		}
		if rdb != nil {
			body["redis"] = "healthy"
			if err := rdb.Ping(ctx).Err(); err != nil {
				body["status"] = "degraded"
				body["redis"] = "unhealthy"
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
