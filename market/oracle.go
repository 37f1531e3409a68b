package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceOracle supplies daily open and close prices by symbol and date.
// The boolean result is false when no data is available for that day;
// callers must treat that as "skip", never as an error.
type PriceOracle interface {
	OpeningPrice(symbol string, date time.Time) (decimal.Decimal, bool)
	ClosingPrice(symbol string, date time.Time) (decimal.Decimal, bool)
}

// Universe reports the symbols that are tradable on a given date.
type Universe interface {
	Symbols(date time.Time) []string
}

// BarReader exposes full daily bars for strategies that need more than
// the open/close pair (volume filters, gain lookbacks).
type BarReader interface {
	Bar(symbol string, date time.Time) (Bar, bool)
}
