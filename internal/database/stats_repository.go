package database

import (
	"context"
	"fmt"
	"time"

	"github.com/avolkov/chainstats/internal/models"
)

// DailyStatsRepository reads the per-address daily statistics materialized by
// the offline PnL pipeline. It implements analytics.StatsReader.
type DailyStatsRepository struct {
	pool DatabasePool
}

// NewDailyStatsRepository creates a new daily stats repository.
func NewDailyStatsRepository(pool DatabasePool) *DailyStatsRepository {
	return &DailyStatsRepository{pool: pool}
}

// GetDailyStats returns the ranked-address rows for one calendar date. The
// profit column is the materialized profit_pct; ordering is left to the
// ranking filter.
func (r *DailyStatsRepository) GetDailyStats(ctx context.Context, date time.Time) ([]models.RankedAddress, error) {
	query := `
		SELECT address, profit2btc, max_btc, btcvalue, count_out, first_in
		FROM address_daily_stats
		WHERE date_ = $1
	`

	rows, err := r.pool.Query(ctx, query, models.Day(date))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var entries []models.RankedAddress
	for rows.Next() {
		var e models.RankedAddress
		if err := rows.Scan(&e.Address, &e.ProfitPct, &e.MaxBTC, &e.BTCValue, &e.CountOut, &e.FirstIn); err != nil {
			return nil, fmt.Errorf("failed to scan daily stats row: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily stats: %w", err)
	}

	return entries, nil
}
