package models

import "time"

// Quote is a single daily closing price. Date is a UTC calendar day
// (midnight); Close is the closing price in USD.
type Quote struct {
	Date  time.Time `json:"date" db:"date_"`
	Close float64   `json:"close" db:"close_"`
}

// Day truncates t to its UTC calendar day. All date arithmetic in the
// analytics engine runs on values produced by this function.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
