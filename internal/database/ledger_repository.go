package database

import (
	"context"
	"fmt"
	"hash/crc32"

	"github.com/shopspring/decimal"

	"github.com/avolkov/chainstats/internal/models"
)

// LedgerRepository reads transfer events for an address from the partitioned
// ledger tables. Inbound transfers live in ledger_outputs (the address
// received an output), outbound transfers in ledger_inputs (the address spent
// an input); the repository unions both into a single signed event stream.
// It implements analytics.LedgerReader.
type LedgerRepository struct {
	pool       DatabasePool
	partitions int
}

// NewLedgerRepository creates a ledger repository over tables partitioned
// into the given number of buckets.
func NewLedgerRepository(pool DatabasePool, partitions int) *LedgerRepository {
	if partitions <= 0 {
		partitions = 1000
	}
	return &LedgerRepository{pool: pool, partitions: partitions}
}

// partition computes the partition bucket holding an address's rows.
func (r *LedgerRepository) partition(address string) int {
	return int(crc32.ChecksumIEEE([]byte(address))) % r.partitions
}

// GetTransferEvents returns all transfer events for one address ordered by
// timestamp ascending, outputs positive and inputs negative. The row order
// within equal timestamps follows the ledger's insertion order (id), which
// downstream tie-breaking relies on.
func (r *LedgerRepository) GetTransferEvents(ctx context.Context, address string) ([]models.TransferEvent, error) {
	query := `
		SELECT t_time, address, t_value, t_usdvalue
		FROM (
			SELECT id, t_time, address, t_value, t_usdvalue
			FROM ledger_outputs
			WHERE partition_ = $1 AND address = $2
			UNION ALL
			SELECT id, t_time, address, -t_value, t_usdvalue
			FROM ledger_inputs
			WHERE partition_ = $1 AND address = $2
		) events
		ORDER BY t_time, id
	`

	rows, err := r.pool.Query(ctx, query, r.partition(address), address)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer events for %s: %w", address, err)
	}
	defer rows.Close()

	var events []models.TransferEvent
	for rows.Next() {
		var ev models.TransferEvent
		var usd *float64
		if err := rows.Scan(&ev.Timestamp, &ev.Address, &ev.ValueSat, &usd); err != nil {
			return nil, fmt.Errorf("failed to scan transfer event: %w", err)
		}
		if usd != nil {
			ev.USDValue = decimal.NewFromFloat(*usd)
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer events: %w", err)
	}

	return events, nil
}
