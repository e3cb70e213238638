package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/parlour/internal/auth"
	"github.com/example/parlour/internal/config"
	"github.com/example/parlour/internal/core"
	"github.com/example/parlour/internal/middleware"
	"github.com/example/parlour/pkg/metrics"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SetupRoutes registers every route on router. Global middleware (logging,
// recovery, CORS) is expected to be attached by the caller. A nil m leaves
// /metrics unmounted.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	store Pinger,
	catalog core.CatalogService,
	bookings core.BookingService,
	reviews core.ReviewService,
	users core.UserService,
	verifier auth.TokenVerifier,
	m *metrics.Metrics,
) {
	serviceHandler := NewServiceHandler(catalog, logger)
	bookingHandler := NewBookingHandler(bookings, logger)
	reviewHandler := NewReviewHandler(reviews, logger)
	userHandler := NewUserHandler(users, logger)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Jerins Parlour")
	})

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.String("driver", appConfig.DBDriver), zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "DOWN", Details: err.Error()})
			return
		}
		c.JSON(http.StatusOK, HealthResponse{Status: "UP"})
	})

	if m != nil && appConfig.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	router.POST("/services", serviceHandler.CreateService)
	router.GET("/services", serviceHandler.ListServices)
	router.GET("/services/:id", serviceHandler.GetService)
	router.DELETE("/services/:id", serviceHandler.DeleteService)
	router.GET("/allServices", serviceHandler.ListAllServices)

	bookingGroup := router.Group("/bookings")
	{
		bookingGroup.POST("", bookingHandler.CreateBooking)
		bookingGroup.GET("", bookingHandler.ListBookings)
		bookingGroup.GET("/:id", bookingHandler.GetBooking)
		bookingGroup.PUT("/:id", bookingHandler.UpdateBooking)
		bookingGroup.DELETE("/:id", bookingHandler.DeleteBooking)
	}

	router.POST("/reviews", reviewHandler.CreateReview)

	userGroup := router.Group("/users")
	{
		userGroup.POST("", userHandler.CreateUser)
		userGroup.PUT("", userHandler.UpsertUser)
		userGroup.PUT("/makeAdmin", middleware.OptionalIdentity(verifier, logger, m), userHandler.MakeAdmin)
		userGroup.GET("/:email", userHandler.GetAdminStatus)
	}
}
