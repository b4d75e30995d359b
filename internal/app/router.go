package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"trike/internal/handler"
	"trike/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler    *handler.BookingHandler
	TripHandler       *handler.TripHandler
	DispatchHandler   *handler.DispatchHandler
	DriverHandler     *handler.DriverHandler
	UserHandler       *handler.UserHandler
	SettlementHandler *handler.SettlementHandler
	RedisClient       *redis.Client
	NewRelicApp       *newrelic.Application
	IdempotencyTTL    time.Duration
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.IdempotencyTTL))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Passenger routes.
		users := v1.Group("/users")
		{
			users.POST("", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
			users.GET("/:id", deps.UserHandler.Get)
			users.POST("/:id/topup", deps.UserHandler.TopUp)
		}

		// Trip routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.BookingHandler.CreateTrip)
			trips.GET("", deps.BookingHandler.GetAll)
			trips.GET("/:id", deps.BookingHandler.GetTrip)
			trips.GET("/:id/history", deps.BookingHandler.GetHistory)
			trips.POST("/:id/dispatch", deps.DispatchHandler.Dispatch)
			trips.POST("/:id/transition", deps.TripHandler.Transition)
			trips.POST("/:id/cancel", deps.TripHandler.Cancel)
			trips.POST("/:id/settle", deps.SettlementHandler.Settle)
			trips.GET("/:id/ledger", deps.SettlementHandler.GetLedger)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.PUT("/:id/location", deps.DriverHandler.UpdateLocation)
			drivers.POST("/:id/offline", deps.DriverHandler.GoOffline)
			drivers.GET("/:id/trip", deps.DriverHandler.GetActiveTrip)
			drivers.GET("/:id/incentives", deps.DriverHandler.GetIncentives)
			drivers.POST("/:id/incentives/evaluate", deps.DriverHandler.EvaluateIncentive)
		}

		// Fare quote routes.
		quotes := v1.Group("/quotes")
		{
			quotes.POST("/pickup", deps.BookingHandler.QuotePickup)
			quotes.POST("/errand", deps.BookingHandler.QuoteErrand)
			quotes.POST("/vendor-fees", deps.BookingHandler.QuoteVendorFees)
		}

		// Wallet routes.
		wallets := v1.Group("/wallets")
		{
			wallets.GET("/:owner_id", deps.SettlementHandler.GetWallet)
		}
	}

	return router
}
