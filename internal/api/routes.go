package api

import (
	"github.com/gin-gonic/gin"

	"github.com/avolkov/chainstats/internal/analytics"
	"github.com/avolkov/chainstats/internal/api/handlers"
	"github.com/avolkov/chainstats/internal/database"
)

// SetupRoutes registers the HTTP surface.
func SetupRoutes(router *gin.Engine, service *analytics.Service, db *database.PostgresDB, redis *database.RedisClient) {
	healthHandler := handlers.NewHealthHandler(db, redis)
	addressHandler := handlers.NewAddressHandler(service)
	benchmarkHandler := handlers.NewBenchmarkHandler(service)
	rankingHandler := handlers.NewRankingHandler(service)

	router.GET("/health", healthHandler.Check)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/benchmark", benchmarkHandler.GetBenchmark)

		addresses := v1.Group("/addresses")
		{
			addresses.GET("/top", rankingHandler.GetTopAddresses)
			addresses.POST("/evaluate", addressHandler.EvaluateAddresses)
			addresses.GET("/:address/stats", addressHandler.GetAddressStats)
			addresses.GET("/:address/balance", addressHandler.GetBalanceHistory)
		}
	}
}
