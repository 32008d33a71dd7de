package analytics

import (
	"sort"

	"github.com/avolkov/chainstats/internal/models"
)

// FilterAddresses returns the entries satisfying every populated field of the
// filter (logical AND; nil fields impose no constraint), sorted by profit
// descending with ties broken by address ascending for determinism. Empty
// input or a filter matching nothing yields an empty slice, never an error.
func FilterAddresses(entries []models.RankedAddress, f models.AddressFilter) []models.RankedAddress {
	matched := make([]models.RankedAddress, 0, len(entries))
	for _, e := range entries {
		if matches(e, f) {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].ProfitPct != matched[j].ProfitPct {
			return matched[i].ProfitPct > matched[j].ProfitPct
		}
		return matched[i].Address < matched[j].Address
	})
	return matched
}

func matches(e models.RankedAddress, f models.AddressFilter) bool {
	if f.Profit2BTCMin != nil && e.ProfitPct <= *f.Profit2BTCMin {
		return false
	}
	if f.MaxBTCMin != nil && e.MaxBTC <= *f.MaxBTCMin {
		return false
	}
	if f.BTCValueRatioMin != nil && float64(e.BTCValue) <= float64(e.MaxBTC)**f.BTCValueRatioMin {
		return false
	}
	if f.CountOutMin != nil && e.CountOut < *f.CountOutMin {
		return false
	}
	if f.FirstInAfter != nil && !e.FirstIn.After(*f.FirstInAfter) {
		return false
	}
	return true
}
