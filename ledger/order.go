package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Order is a single executed fill. It is immutable once created; the
// ledger emits exactly one per fill at the moment of execution.
type Order struct {
	ID              string
	Side            Side
	Symbol          string
	RequestedShares int64
	Shares          int64 // executed shares, after any position-size cap
	RequestedPrice  decimal.Decimal
	ExecPrice       decimal.Decimal // after slippage
	Commission      decimal.Decimal
	CashDelta       decimal.Decimal // negative for buys, positive for sells
	Date            time.Time
}

// Notional is the executed value excluding commission.
func (o Order) Notional() decimal.Decimal {
	return o.ExecPrice.Mul(decimal.NewFromInt(o.Shares))
}
