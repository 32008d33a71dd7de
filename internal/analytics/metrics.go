package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/avolkov/chainstats/internal/models"
)

// daysInMarketThresholdSat is the minimum satoshi balance for a day to count
// as "in market" (0.001 BTC).
const daysInMarketThresholdSat = 100_000

// tradingDaysPerYear annualizes daily Sharpe ratios. Calendar days: BTC
// trades every day of the year.
const tradingDaysPerYear = 365

// ComputeAddressStats derives the performance statistics for one address from
// its balance history. Benchmark fields are left zero; the caller attaches
// them (they belong to the window, not the address).
//
// An empty history yields the defined neutral values: profit 0, Sharpe nil,
// drawdown 0, exposure 0, zero days in market.
func ComputeAddressStats(address string, hist BalanceHistory) models.AddressStats {
	stats := models.AddressStats{Address: address}
	if hist.Empty() {
		return stats
	}

	if hist.TotalInvested.IsPositive() {
		finalUSD := hist.Samples[len(hist.Samples)-1].BalanceUSD
		unrealized := decimal.NewFromFloat(finalUSD).Sub(hist.RemainingBasis)
		pnl := unrealized.Add(hist.RealizedPnL)
		stats.ProfitPct, _ = pnl.Div(hist.TotalInvested).Float64()
	}

	maxSat := hist.MaxBalanceSat()
	var exposureSum float64
	for _, s := range hist.Samples {
		if s.BalanceSat > daysInMarketThresholdSat {
			stats.CountDaysInMarket++
		}
		if maxSat > 0 {
			exposureSum += float64(s.BalanceSat) / float64(maxSat)
		}
	}
	if maxSat > 0 {
		stats.Exposure = exposureSum / float64(len(hist.Samples))
	}

	values := make([]float64, len(hist.Samples))
	for i, s := range hist.Samples {
		values[i] = s.BalanceUSD
	}
	stats.SharpeRatio = sharpeRatio(dailyReturns(values))
	stats.Drawdown = maxDrawdown(values)
	return stats
}

// dailyReturns computes day-over-day simple returns, emitting an observation
// only when the prior day's value is positive. Days with no market exposure
// contribute no observation, so inactive periods do not pollute the risk
// statistics.
func dailyReturns(values []float64) []float64 {
	var returns []float64
	for i := 1; i < len(values); i++ {
		if values[i-1] > 0 {
			returns = append(returns, values[i]/values[i-1]-1)
		}
	}
	return returns
}

// sharpeRatio annualizes mean/stdev of daily returns with a risk-free rate of
// zero. Returns nil when the ratio is undefined: fewer than two observations,
// or zero variance. Callers must treat nil as distinct from a true zero.
func sharpeRatio(returns []float64) *float64 {
	if len(returns) < 2 {
		return nil
	}
	m := mean(returns)
	sd := sampleStddev(returns, m)
	if sd == 0 {
		return nil
	}
	s := m / sd * math.Sqrt(tradingDaysPerYear)
	return &s
}

// maxDrawdown returns the worst peak-to-trough decline of a value series as a
// negative fraction. 0 means no drawdown was observed, which is valid for a
// monotonically non-decreasing series. Days before the first positive peak
// are skipped.
func maxDrawdown(values []float64) float64 {
	var peak, worst float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (v - peak) / peak; dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStddev uses the n-1 denominator.
func sampleStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(n-1))
}
