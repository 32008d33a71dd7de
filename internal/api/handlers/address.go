package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/chainstats/internal/analytics"
	"github.com/avolkov/chainstats/internal/models"
)

// maxEvaluateBatch bounds a single evaluation request so one caller cannot
// monopolize the worker pool.
const maxEvaluateBatch = 1000

type AddressHandler struct {
	service *analytics.Service
}

func NewAddressHandler(service *analytics.Service) *AddressHandler {
	return &AddressHandler{service: service}
}

// StatsResponse wraps per-address performance metrics.
type StatsResponse struct {
	Data      models.AddressStats `json:"data"`
	Warnings  []string            `json:"warnings,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// BalanceResponse wraps a daily balance series.
type BalanceResponse struct {
	Address   string                 `json:"address"`
	Data      []models.BalanceSample `json:"data"`
	Total     int                    `json:"total"`
	Warnings  []string               `json:"warnings,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EvaluateRequest is the payload for batch address evaluation.
type EvaluateRequest struct {
	Addresses []string `json:"addresses" binding:"required,min=1"`
	End       string   `json:"end"`

	Profit2BTCMin    *float64 `json:"profit2btc_min"`
	MaxBTCMin        *int64   `json:"max_btc_min"`
	BTCValueRatioMin *float64 `json:"btcvalue_ratio_min"`
	CountOutMin      *int     `json:"count_out_min"`
	FirstInAfter     *string  `json:"first_in_after"`
}

// EvaluateResponse wraps the filtered, ranked evaluation results.
type EvaluateResponse struct {
	Data      []models.RankedAddress `json:"data"`
	Total     int                    `json:"total"`
	Evaluated int                    `json:"evaluated"`
	Timestamp time.Time              `json:"timestamp"`
}

// GetAddressStats handles GET /api/v1/addresses/:address/stats.
func (h *AddressHandler) GetAddressStats(c *gin.Context) {
	address := c.Param("address")
	end, err := parseDateParam(c, "end")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	stats, diag, err := h.service.AddressStats(c.Request.Context(), address, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsResponse{
		Data:      stats,
		Warnings:  diag.Warnings(),
		Timestamp: time.Now().UTC(),
	})
}

// GetBalanceHistory handles GET /api/v1/addresses/:address/balance.
func (h *AddressHandler) GetBalanceHistory(c *gin.Context) {
	address := c.Param("address")
	end, err := parseDateParam(c, "end")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	samples, diag, err := h.service.BalanceHistory(c.Request.Context(), address, end)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{
		Address:   address,
		Data:      samples,
		Total:     len(samples),
		Warnings:  diag.Warnings(),
		Timestamp: time.Now().UTC(),
	})
}

// EvaluateAddresses handles POST /api/v1/addresses/evaluate.
func (h *AddressHandler) EvaluateAddresses(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if len(req.Addresses) > maxEvaluateBatch {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "too many addresses in one request"})
		return
	}

	var end time.Time
	if req.End != "" {
		t, err := time.ParseInLocation(time.DateOnly, req.End, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "field \"end\" must be YYYY-MM-DD"})
			return
		}
		end = t
	}

	filter := models.AddressFilter{
		Profit2BTCMin:    req.Profit2BTCMin,
		MaxBTCMin:        req.MaxBTCMin,
		BTCValueRatioMin: req.BTCValueRatioMin,
		CountOutMin:      req.CountOutMin,
	}
	if req.FirstInAfter != nil {
		t, err := time.ParseInLocation(time.DateOnly, *req.FirstInAfter, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "field \"first_in_after\" must be YYYY-MM-DD"})
			return
		}
		filter.FirstInAfter = &t
	}

	ranked, err := h.service.EvaluateAddresses(c.Request.Context(), req.Addresses, end, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, EvaluateResponse{
		Data:      ranked,
		Total:     len(ranked),
		Evaluated: len(req.Addresses),
		Timestamp: time.Now().UTC(),
	})
}
