package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one symbol's daily OHLC row. Only open and close are carried;
// the simulation executes at opens and marks at closes.
type Bar struct {
	Symbol string
	Date   time.Time
	Open   decimal.Decimal
	Close  decimal.Decimal
	Volume int64
}

// Day normalizes a timestamp to midnight UTC. All per-day lookups key on
// this so bars and simulation dates can never drift apart by clock time.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextDay returns the calendar day after t, normalized.
func NextDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1)
}

// DaysBetween returns the whole calendar days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
