package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferEvent represents a single value transfer touching an address.
// ValueSat is signed: positive for an inbound transfer (the address received
// coins), negative for an outbound transfer (the address spent coins).
// USDValue is the USD value of the transferred amount at transfer time and is
// always non-negative; the direction is carried by ValueSat alone.
type TransferEvent struct {
	Timestamp time.Time       `json:"timestamp" db:"t_time"`
	Address   string          `json:"address" db:"address"`
	ValueSat  int64           `json:"value_sat" db:"t_value"`
	USDValue  decimal.Decimal `json:"usd_value" db:"t_usdvalue"`
}

// Inbound reports whether the event credits the address.
func (e TransferEvent) Inbound() bool {
	return e.ValueSat > 0
}

// Date returns the UTC calendar day of the event.
func (e TransferEvent) Date() time.Time {
	t := e.Timestamp.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
