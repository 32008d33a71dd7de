package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/chainstats/internal/database"
)

type HealthHandler struct {
	db      *database.PostgresDB
	redis   *database.RedisClient
	started time.Time
}

func NewHealthHandler(db *database.PostgresDB, redis *database.RedisClient) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, started: time.Now()}
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	UptimeSec int64     `json:"uptime_sec"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Check handles GET /health. Redis is a soft dependency (benchmark caching
// only), so a Redis outage degrades the report without failing the probe;
// Postgres is required.
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		UptimeSec: int64(time.Since(h.started).Seconds()),
		Services: Services{
			Database: "ok",
			Redis:    "ok",
		},
	}

	statusCode := http.StatusOK
	if err := h.db.HealthCheck(c.Request.Context()); err != nil {
		response.Services.Database = "error"
		response.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}
	if err := h.redis.HealthCheck(c.Request.Context()); err != nil {
		response.Services.Redis = "error"
		if response.Status == "ok" {
			response.Status = "degraded"
		}
	}

	c.JSON(statusCode, response)
}
