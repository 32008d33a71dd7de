package analytics

import (
	"fmt"

	"github.com/avolkov/chainstats/internal/models"
)

// ComputeBenchmark calculates buy-and-hold metrics over a quote window: buy
// one unit at the first close, hold through the last. Only the quote series
// is needed; no ledger is involved, so the result is identical for every
// address evaluated over the same window and safe to cache keyed on
// (start, end).
//
// The window start is supplied by the caller; for batch evaluation it should
// be the earliest transfer date observed across the whole population so the
// benchmark is comparable across addresses.
func ComputeBenchmark(series []models.Quote) (models.BenchmarkMetrics, error) {
	if len(series) == 0 {
		return models.BenchmarkMetrics{}, fmt.Errorf("%w: empty quote window", ErrDataUnavailable)
	}

	values := make([]float64, len(series))
	for i, q := range series {
		values[i] = q.Close
	}

	m := models.BenchmarkMetrics{
		Sharpe:   sharpeRatio(dailyReturns(values)),
		Drawdown: maxDrawdown(values),
	}
	if values[0] != 0 {
		m.ProfitPct = values[len(values)-1]/values[0] - 1
	}
	return m, nil
}
