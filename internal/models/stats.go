package models

import "time"

// BalanceSample is one day of reconstructed holdings for an address.
// BalanceSat is the running cumulative sum of all signed transfer values up
// to and including Date; BalanceUSD prices it with that day's close.
type BalanceSample struct {
	Date       time.Time `json:"date"`
	BalanceSat int64     `json:"balance_sat"`
	BalanceUSD float64   `json:"balance_usd"`
}

// AddressStats carries the standardized performance statistics for one
// address. SharpeRatio and BenchmarkSharpe are nil when the metric is
// undefined (fewer than two return observations, or zero variance); a nil
// Sharpe is distinct from a true zero and marshals as JSON null.
type AddressStats struct {
	Address           string   `json:"address"`
	ProfitPct         float64  `json:"profit_pct"`
	SharpeRatio       *float64 `json:"sharpe_ratio"`
	Drawdown          float64  `json:"drawdown"`
	Exposure          float64  `json:"exposure"`
	CountDaysInMarket int      `json:"count_days_in_market"`
	BenchmarkProfit   float64  `json:"benchmark_profit"`
	BenchmarkSharpe   *float64 `json:"benchmark_sharpe"`
	BenchmarkDrawdown float64  `json:"benchmark_drawdown"`
}

// BenchmarkMetrics describes a passive buy-and-hold position over a date
// window. It is a pure function of the window and is safe to cache keyed on
// (start, end).
type BenchmarkMetrics struct {
	Sharpe    *float64 `json:"sharpe"`
	Drawdown  float64  `json:"drawdown"`
	ProfitPct float64  `json:"profit_pct"`
}

// AddressFilter selects addresses from a ranked batch. Nil fields impose no
// constraint; populated fields combine with logical AND.
type AddressFilter struct {
	Profit2BTCMin    *float64   `json:"profit2btc_min,omitempty" form:"profit2btc_min"`
	MaxBTCMin        *int64     `json:"max_btc_min,omitempty" form:"max_btc_min"`
	BTCValueRatioMin *float64   `json:"btcvalue_ratio_min,omitempty" form:"btcvalue_ratio_min"`
	CountOutMin      *int       `json:"count_out_min,omitempty" form:"count_out_min"`
	FirstInAfter     *time.Time `json:"first_in_after,omitempty"`
}

// Empty reports whether the filter constrains anything at all.
func (f AddressFilter) Empty() bool {
	return f.Profit2BTCMin == nil && f.MaxBTCMin == nil && f.BTCValueRatioMin == nil &&
		f.CountOutMin == nil && f.FirstInAfter == nil
}

// RankedAddress is an AddressStats row joined with the auxiliary fields the
// ranking filter evaluates: peak holdings, current holdings, outbound
// transfer count and the date of the first inbound transfer. The auxiliary
// fields are not part of AddressStats itself.
type RankedAddress struct {
	AddressStats
	MaxBTC   int64     `json:"max_btc" db:"max_btc"`
	BTCValue int64     `json:"btcvalue" db:"btcvalue"`
	CountOut int       `json:"count_out" db:"count_out"`
	FirstIn  time.Time `json:"first_in" db:"first_in"`
}
