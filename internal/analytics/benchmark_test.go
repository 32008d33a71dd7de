package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/chainstats/internal/models"
)

func TestComputeBenchmark_BuyAndHoldProfit(t *testing.T) {
	series := []models.Quote{
		{Date: day(2026, 1, 1), Close: 10_000},
		{Date: day(2026, 1, 2), Close: 9_000},
		{Date: day(2026, 1, 3), Close: 12_000},
	}

	m, err := ComputeBenchmark(series)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, m.ProfitPct, 1e-9)
	assert.InDelta(t, -0.1, m.Drawdown, 1e-9)
	require.NotNil(t, m.Sharpe)
}

func TestComputeBenchmark_ConstantPrice(t *testing.T) {
	m, err := ComputeBenchmark(flatSeries(day(2026, 1, 1), day(2026, 1, 5), 10_000))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, m.ProfitPct, 1e-12)
	assert.Equal(t, 0.0, m.Drawdown)
	assert.Nil(t, m.Sharpe)
}

func TestComputeBenchmark_EmptyWindow(t *testing.T) {
	_, err := ComputeBenchmark(nil)
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

func TestComputeBenchmark_SingleDay(t *testing.T) {
	m, err := ComputeBenchmark([]models.Quote{{Date: day(2026, 1, 1), Close: 10_000}})
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.ProfitPct)
	assert.Equal(t, 0.0, m.Drawdown)
	assert.Nil(t, m.Sharpe)
}
