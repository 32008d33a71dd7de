package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avolkov/chainstats/internal/models"
)

// BalanceHistory is the reconstructed daily holdings of one address over its
// active window, together with the cost-basis bookkeeping the profit
// calculation needs.
//
// Cost basis follows the transfer-time policy: each inbound event adds its
// own recorded USD value to the basis; each outbound event releases basis
// proportionally to the fraction of holdings it spends and realizes the
// difference between its recorded USD proceeds and the released basis.
// Historical transfers are never re-priced at the current quote.
type BalanceHistory struct {
	Samples []models.BalanceSample

	TotalInvested  decimal.Decimal
	RemainingBasis decimal.Decimal
	RealizedPnL    decimal.Decimal

	// CountOut is the number of outbound events, FirstIn the calendar day of
	// the first inbound event (zero when there is none). Carried for the
	// ranking filter's auxiliary join fields.
	CountOut int
	FirstIn  time.Time

	// LedgerInconsistent is set when spends exceed cumulative receipts at any
	// point. The computed (possibly negative) balances are kept as-is; this
	// flag is the data integrity signal, remediation belongs to the caller.
	LedgerInconsistent bool
}

// Empty reports whether the history covers no days (address with no events).
func (h BalanceHistory) Empty() bool { return len(h.Samples) == 0 }

// MaxBalanceSat returns the peak satoshi balance over the window, never
// negative.
func (h BalanceHistory) MaxBalanceSat() int64 {
	var max int64
	for _, s := range h.Samples {
		if s.BalanceSat > max {
			max = s.BalanceSat
		}
	}
	return max
}

// FinalBalanceSat returns the last day's satoshi balance, 0 for an empty
// history.
func (h BalanceHistory) FinalBalanceSat() int64 {
	if len(h.Samples) == 0 {
		return 0
	}
	return h.Samples[len(h.Samples)-1].BalanceSat
}

// BuildBalanceHistory reconstructs the daily balance of one address from its
// transfer events, one BalanceSample per calendar day from the first event's
// date through end. series must cover every day of that window with exactly
// one quote per day (see BuildQuoteSeries); each day's USD balance uses that
// day's close.
//
// Events are stable-sorted by timestamp, so same-timestamp events keep their
// ledger insertion order. Multiple events on one day net into that day's
// single balance change. An empty event slice yields an empty history and a
// nil error: an address with no activity is a valid case, not a failure.
func BuildBalanceHistory(events []models.TransferEvent, series []models.Quote, end time.Time) (BalanceHistory, error) {
	var hist BalanceHistory
	if len(events) == 0 {
		return hist, nil
	}

	sorted := make([]models.TransferEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	end = models.Day(end)
	first := sorted[0].Date()
	if end.Before(first) {
		return hist, fmt.Errorf("%w: end %s before first transfer %s", ErrInvalidWindow,
			end.Format(time.DateOnly), first.Format(time.DateOnly))
	}

	closes := make(map[time.Time]float64, len(series))
	for _, q := range series {
		closes[models.Day(q.Date)] = q.Close
	}

	hist.TotalInvested = decimal.Zero
	hist.RemainingBasis = decimal.Zero
	hist.RealizedPnL = decimal.Zero

	days := int(end.Sub(first).Hours()/24) + 1
	hist.Samples = make([]models.BalanceSample, 0, days)

	var balance int64
	i := 0
	for d := first; !d.After(end); d = d.AddDate(0, 0, 1) {
		for i < len(sorted) && !sorted[i].Date().After(d) {
			ev := sorted[i]
			i++
			if ev.Inbound() {
				hist.TotalInvested = hist.TotalInvested.Add(ev.USDValue)
				hist.RemainingBasis = hist.RemainingBasis.Add(ev.USDValue)
				if hist.FirstIn.IsZero() {
					hist.FirstIn = ev.Date()
				}
			} else {
				hist.CountOut++
				spent := -ev.ValueSat
				if balance <= 0 || spent > balance {
					hist.LedgerInconsistent = true
				}
				if balance > 0 {
					if spent > balance {
						spent = balance
					}
					released := hist.RemainingBasis.Mul(
						decimal.NewFromInt(spent).Div(decimal.NewFromInt(balance)))
					hist.RemainingBasis = hist.RemainingBasis.Sub(released)
					hist.RealizedPnL = hist.RealizedPnL.Add(ev.USDValue.Sub(released))
				}
			}
			balance += ev.ValueSat
		}
		if balance < 0 {
			hist.LedgerInconsistent = true
		}
		hist.Samples = append(hist.Samples, models.BalanceSample{
			Date:       d,
			BalanceSat: balance,
			BalanceUSD: float64(balance) / 1e8 * closes[d],
		})
	}
	return hist, nil
}
