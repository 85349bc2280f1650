package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleet/internal/domain"
	"fleet/internal/handler"
	"fleet/internal/middleware"
	"fleet/internal/redis"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler    *handler.AuthHandler
	TripHandler    *handler.TripHandler
	DriverHandler  *handler.DriverHandler
	DealerHandler  *handler.DealerHandler
	BookingHandler *handler.BookingHandler
	PaymentHandler *handler.PaymentHandler
	PayoutHandler  *handler.PayoutHandler
	StatsHandler   *handler.StatsHandler
	Tokens         middleware.TokenParser
	Responses      redis.ResponseStore
	AllowedOrigins []string
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware(deps.AllowedOrigins))
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}
	router.Use(middleware.Metrics())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")

	// Public auth routes.
	v1.POST("/auth/register", deps.AuthHandler.Register)
	v1.POST("/auth/login", deps.AuthHandler.Login)

	api := v1.Group("")
	api.Use(middleware.Authenticate(deps.Tokens))
	api.Use(middleware.IdempotencyMiddleware(deps.Responses))

	api.GET("/auth/me", deps.AuthHandler.Me)

	trips := api.Group("/trips")
	{
		trips.POST("", deps.TripHandler.CreateTrip)
		trips.GET("", deps.TripHandler.ListTrips)
		trips.GET("/:id", deps.TripHandler.GetTrip)
		trips.PATCH("/:id", deps.TripHandler.UpdateTripStatus)
	}

	drivers := api.Group("/drivers")
	{
		drivers.POST("", deps.DriverHandler.CreateProfile)
		drivers.GET("/available", deps.DriverHandler.ListAvailable)
		drivers.GET("/profile", deps.DriverHandler.Profile)
		drivers.GET("/stats", deps.StatsHandler.Driver)
	}

	dealers := api.Group("/dealers", middleware.RequireRole(domain.RoleDealer))
	{
		dealers.GET("/profile", deps.DealerHandler.Profile)
		dealers.GET("/drivers", deps.DealerHandler.Drivers)
		dealers.GET("/stats", deps.StatsHandler.Dealer)
	}

	bookings := api.Group("/bookings")
	{
		bookings.POST("", deps.BookingHandler.CreateBooking)
		bookings.GET("", deps.BookingHandler.ListBookings)
		bookings.GET("/:id", deps.BookingHandler.GetBooking)
		bookings.PATCH("/:id/assign", deps.BookingHandler.AssignDriver)
		bookings.PATCH("/:id/accept", deps.BookingHandler.AcceptBooking)
		bookings.PATCH("/:id/status", deps.BookingHandler.UpdateStatus)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", deps.PaymentHandler.RecordPayment)
		payments.GET("", deps.PaymentHandler.ListPayments)
	}

	payouts := api.Group("/payouts")
	{
		payouts.GET("", deps.PayoutHandler.ListPayouts)
		payouts.PATCH("/:id/process", deps.PayoutHandler.ProcessPayout)
		payouts.GET("/:id/statement", deps.PayoutHandler.Statement)
	}

	api.GET("/customer/stats", deps.StatsHandler.Customer)

	admin := api.Group("/admin", middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/stats", deps.StatsHandler.Admin)
		admin.GET("/users", deps.AuthHandler.ListUsers)
	}

	return router
}
