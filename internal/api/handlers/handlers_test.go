package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/chainstats/internal/analytics"
	"github.com/avolkov/chainstats/internal/models"
)

type stubLedger struct {
	events map[string][]models.TransferEvent
}

func (s *stubLedger) GetTransferEvents(_ context.Context, address string) ([]models.TransferEvent, error) {
	return s.events[address], nil
}

type stubQuotes struct {
	quotes []models.Quote
}

func (s *stubQuotes) GetQuotes(_ context.Context, start, end time.Time) ([]models.Quote, error) {
	var out []models.Quote
	for _, q := range s.quotes {
		if !q.Date.Before(start) && !q.Date.After(end) {
			out = append(out, q)
		}
	}
	return out, nil
}

type stubStats struct {
	rows []models.RankedAddress
}

func (s *stubStats) GetDailyStats(_ context.Context, _ time.Time) ([]models.RankedAddress, error) {
	return s.rows, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func flatQuotes(start, end time.Time, close float64) []models.Quote {
	var out []models.Quote
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, models.Quote{Date: d, Close: close})
	}
	return out
}

func testService(ledger analytics.LedgerReader, quotes analytics.QuoteReader, stats analytics.StatsReader) *analytics.Service {
	return analytics.NewService(ledger, quotes, stats, nil, analytics.Config{Workers: 2})
}

func testRouter(service *analytics.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	addressHandler := NewAddressHandler(service)
	benchmarkHandler := NewBenchmarkHandler(service)
	rankingHandler := NewRankingHandler(service)

	v1 := router.Group("/api/v1")
	v1.GET("/benchmark", benchmarkHandler.GetBenchmark)
	v1.GET("/addresses/top", rankingHandler.GetTopAddresses)
	v1.POST("/addresses/evaluate", addressHandler.EvaluateAddresses)
	v1.GET("/addresses/:address/stats", addressHandler.GetAddressStats)
	v1.GET("/addresses/:address/balance", addressHandler.GetBalanceHistory)
	return router
}

func defaultTestRouter() *gin.Engine {
	ledger := &stubLedger{events: map[string][]models.TransferEvent{
		"addr1": {{
			Timestamp: day(2026, 1, 1),
			Address:   "addr1",
			ValueSat:  100_000_000,
			USDValue:  decimal.NewFromInt(10_000),
		}},
	}}
	quotes := &stubQuotes{quotes: flatQuotes(day(2025, 12, 1), day(2026, 1, 10), 10_000)}
	return testRouter(testService(ledger, quotes, nil))
}

func doRequest(t *testing.T, router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetAddressStats(t *testing.T) {
	w := doRequest(t, defaultTestRouter(), http.MethodGet, "/api/v1/addresses/addr1/stats?end=2026-01-10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "addr1", resp.Data.Address)
	assert.InDelta(t, 0.0, resp.Data.ProfitPct, 1e-12)
	assert.Equal(t, 10, resp.Data.CountDaysInMarket)
	assert.Empty(t, resp.Warnings)
}

func TestGetAddressStats_NullSharpeInJSON(t *testing.T) {
	w := doRequest(t, defaultTestRouter(), http.MethodGet, "/api/v1/addresses/addr1/stats?end=2026-01-10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["data"], &data))
	assert.Equal(t, "null", string(data["sharpe_ratio"]))
}

func TestGetAddressStats_BadEndDate(t *testing.T) {
	w := doRequest(t, defaultTestRouter(), http.MethodGet, "/api/v1/addresses/addr1/stats?end=not-a-date", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetAddressStats_NoQuoteCoverage(t *testing.T) {
	ledger := &stubLedger{events: map[string][]models.TransferEvent{
		"addr1": {{Timestamp: day(2026, 1, 1), ValueSat: 100_000_000, USDValue: decimal.NewFromInt(10_000)}},
	}}
	// No quotes at all: the window cannot be priced.
	router := testRouter(testService(ledger, &stubQuotes{}, nil))

	w := doRequest(t, router, http.MethodGet, "/api/v1/addresses/addr1/stats?end=2026-01-10", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetBalanceHistory(t *testing.T) {
	w := doRequest(t, defaultTestRouter(), http.MethodGet, "/api/v1/addresses/addr1/balance?end=2026-01-05", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "addr1", resp.Address)
	assert.Equal(t, 5, resp.Total)
	require.Len(t, resp.Data, 5)
	assert.Equal(t, int64(100_000_000), resp.Data[0].BalanceSat)
}

func TestGetBalanceHistory_UnknownAddressIsEmpty(t *testing.T) {
	w := doRequest(t, defaultTestRouter(), http.MethodGet, "/api/v1/addresses/nobody/balance?end=2026-01-05", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Total)
}

func TestGetBenchmark(t *testing.T) {
	w := doRequest(t, defaultTestRouter(), http.MethodGet, "/api/v1/benchmark?start=2026-01-01&end=2026-01-10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp BenchmarkResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-01-01", resp.Start)
	assert.Equal(t, "2026-01-10", resp.End)
	assert.InDelta(t, 0.0, resp.Data.ProfitPct, 1e-12)
}

func TestGetBenchmark_MissingStart(t *testing.T) {
	w := doRequest(t, defaultTestRouter(), http.MethodGet, "/api/v1/benchmark?end=2026-01-10", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBenchmark_InvertedWindow(t *testing.T) {
	w := doRequest(t, defaultTestRouter(), http.MethodGet, "/api/v1/benchmark?start=2026-01-10&end=2026-01-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTopAddresses(t *testing.T) {
	stats := &stubStats{rows: []models.RankedAddress{
		{AddressStats: models.AddressStats{Address: "low", ProfitPct: 0.1}},
		{AddressStats: models.AddressStats{Address: "high", ProfitPct: 0.9}},
	}}
	router := testRouter(testService(&stubLedger{}, &stubQuotes{}, stats))

	w := doRequest(t, router, http.MethodGet, "/api/v1/addresses/top?date=2026-03-15&profit2btc_min=0.5", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp TopAddressesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2026-03-15", resp.Date)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "high", resp.Data[0].Address)
}

func TestGetTopAddresses_BadFilterValue(t *testing.T) {
	router := testRouter(testService(&stubLedger{}, &stubQuotes{}, &stubStats{}))

	w := doRequest(t, router, http.MethodGet, "/api/v1/addresses/top?profit2btc_min=lots", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateAddresses(t *testing.T) {
	body := `{"addresses":["addr1","nobody"],"end":"2026-01-10","count_out_min":0}`
	w := doRequest(t, defaultTestRouter(), http.MethodPost, "/api/v1/addresses/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp EvaluateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Evaluated)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "addr1", resp.Data[0].Address)
}

func TestEvaluateAddresses_EmptyBody(t *testing.T) {
	w := doRequest(t, defaultTestRouter(), http.MethodPost, "/api/v1/addresses/evaluate", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateAddresses_BadEndDate(t *testing.T) {
	body := `{"addresses":["addr1"],"end":"January"}`
	w := doRequest(t, defaultTestRouter(), http.MethodPost, "/api/v1/addresses/evaluate", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvaluateAddresses_BatchTooLarge(t *testing.T) {
	addresses := make([]string, maxEvaluateBatch+1)
	for i := range addresses {
		addresses[i] = "a"
	}
	payload, err := json.Marshal(EvaluateRequest{Addresses: addresses})
	require.NoError(t, err)

	w := doRequest(t, defaultTestRouter(), http.MethodPost, "/api/v1/addresses/evaluate", string(payload))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
