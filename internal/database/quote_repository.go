package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/avolkov/chainstats/internal/models"
)

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// QuoteRepository reads the daily BTC close-price series from the quotes
// table. It implements analytics.QuoteReader.
type QuoteRepository struct {
	pool DatabasePool
}

// NewQuoteRepository creates a new quote repository.
func NewQuoteRepository(pool DatabasePool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// GetQuotes returns quotes with start <= date <= end, ordered by date
// ascending. Gaps in the series are allowed; the analytics engine
// forward-fills them.
func (r *QuoteRepository) GetQuotes(ctx context.Context, start, end time.Time) ([]models.Quote, error) {
	query := `
		SELECT date_, close_
		FROM quotes
		WHERE date_ >= $1 AND date_ <= $2
		ORDER BY date_
	`

	rows, err := r.pool.Query(ctx, query, models.Day(start), models.Day(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	var quotes []models.Quote
	for rows.Next() {
		var q models.Quote
		if err := rows.Scan(&q.Date, &q.Close); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quotes: %w", err)
	}

	return quotes, nil
}
