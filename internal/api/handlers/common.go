package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/avolkov/chainstats/internal/analytics"
	"github.com/avolkov/chainstats/internal/models"
)

// ErrorResponse is the uniform error payload for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps analytics errors onto HTTP status codes. Invalid windows
// are the caller's fault, missing quote coverage is a data problem, and
// everything else is treated as internal.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analytics.ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, analytics.ErrDataUnavailable):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request handler failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

// parseDateParam parses an optional YYYY-MM-DD query parameter. A missing
// parameter yields the zero time, which downstream code resolves to a default.
func parseDateParam(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parameter %q must be YYYY-MM-DD: %w", name, err)
	}
	return t, nil
}

// parseFilterQuery builds an address filter from query parameters. Absent
// parameters leave the corresponding criterion unset.
func parseFilterQuery(c *gin.Context) (models.AddressFilter, error) {
	var f models.AddressFilter

	if raw := c.Query("profit2btc_min"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, fmt.Errorf("parameter \"profit2btc_min\" must be a number: %w", err)
		}
		f.Profit2BTCMin = &v
	}
	if raw := c.Query("max_btc_min"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, fmt.Errorf("parameter \"max_btc_min\" must be an integer: %w", err)
		}
		f.MaxBTCMin = &v
	}
	if raw := c.Query("btcvalue_ratio_min"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return f, fmt.Errorf("parameter \"btcvalue_ratio_min\" must be a number: %w", err)
		}
		f.BTCValueRatioMin = &v
	}
	if raw := c.Query("count_out_min"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("parameter \"count_out_min\" must be an integer: %w", err)
		}
		f.CountOutMin = &v
	}
	if raw := c.Query("first_in_after"); raw != "" {
		t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
		if err != nil {
			return f, fmt.Errorf("parameter \"first_in_after\" must be YYYY-MM-DD: %w", err)
		}
		f.FirstInAfter = &t
	}

	return f, nil
}
