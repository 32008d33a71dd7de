package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/chainstats/internal/analytics"
	"github.com/avolkov/chainstats/internal/models"
)

type BenchmarkHandler struct {
	service *analytics.Service
}

func NewBenchmarkHandler(service *analytics.Service) *BenchmarkHandler {
	return &BenchmarkHandler{service: service}
}

// BenchmarkResponse wraps buy-and-hold metrics for a date window.
type BenchmarkResponse struct {
	Start     string                  `json:"start"`
	End       string                  `json:"end"`
	Data      models.BenchmarkMetrics `json:"data"`
	Timestamp time.Time               `json:"timestamp"`
}

// GetBenchmark handles GET /api/v1/benchmark. The start parameter is
// required; end defaults to today.
func (h *BenchmarkHandler) GetBenchmark(c *gin.Context) {
	start, err := parseDateParam(c, "start")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if start.IsZero() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "parameter \"start\" is required"})
		return
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if end.IsZero() {
		end = models.Day(time.Now().UTC())
	}

	metrics, err := h.service.Benchmark(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BenchmarkResponse{
		Start:     start.Format(time.DateOnly),
		End:       end.Format(time.DateOnly),
		Data:      metrics,
		Timestamp: time.Now().UTC(),
	})
}
