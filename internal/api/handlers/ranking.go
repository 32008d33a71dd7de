package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avolkov/chainstats/internal/analytics"
	"github.com/avolkov/chainstats/internal/models"
)

type RankingHandler struct {
	service *analytics.Service
}

func NewRankingHandler(service *analytics.Service) *RankingHandler {
	return &RankingHandler{service: service}
}

// TopAddressesResponse wraps the ranked addresses for a snapshot date.
type TopAddressesResponse struct {
	Date      string                 `json:"date"`
	Data      []models.RankedAddress `json:"data"`
	Total     int                    `json:"total"`
	Timestamp time.Time              `json:"timestamp"`
}

// GetTopAddresses handles GET /api/v1/addresses/top. Filter criteria come
// from query parameters; the date defaults to today.
func (h *RankingHandler) GetTopAddresses(c *gin.Context) {
	date, err := parseDateParam(c, "date")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if date.IsZero() {
		date = models.Day(time.Now().UTC())
	}

	filter, err := parseFilterQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	ranked, err := h.service.TopAddresses(c.Request.Context(), date, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TopAddressesResponse{
		Date:      date.Format(time.DateOnly),
		Data:      ranked,
		Total:     len(ranked),
		Timestamp: time.Now().UTC(),
	})
}
