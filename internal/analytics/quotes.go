package analytics

import (
	"fmt"
	"time"

	"github.com/avolkov/chainstats/internal/models"
)

// BuildQuoteSeries produces one quote per calendar day over [start, end],
// forward-filling the last known close across gaps in the source series.
// Prices are never interpolated and days are never dropped; the seed for the
// fill is the latest quote on or before start. quotes must be ordered by date
// ascending; duplicate dates collapse to the last value seen.
//
// Returns ErrInvalidWindow when end precedes start, and ErrDataUnavailable
// when no quote exists on or before start.
func BuildQuoteSeries(quotes []models.Quote, start, end time.Time) ([]models.Quote, error) {
	start = models.Day(start)
	end = models.Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow,
			end.Format(time.DateOnly), start.Format(time.DateOnly))
	}

	// Seed: latest close on or before start.
	i := 0
	last := 0.0
	seeded := false
	for ; i < len(quotes); i++ {
		if models.Day(quotes[i].Date).After(start) {
			break
		}
		last = quotes[i].Close
		seeded = true
	}
	if !seeded {
		return nil, fmt.Errorf("%w: start %s", ErrDataUnavailable, start.Format(time.DateOnly))
	}

	days := int(end.Sub(start).Hours()/24) + 1
	series := make([]models.Quote, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		for i < len(quotes) && !models.Day(quotes[i].Date).After(d) {
			last = quotes[i].Close
			i++
		}
		series = append(series, models.Quote{Date: d, Close: last})
	}
	return series, nil
}
