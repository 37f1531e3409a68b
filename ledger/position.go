package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Position is one open holding. The cost basis is carried as the exact
// decimal total paid for the open shares; the per-share entry price is
// derived from it for reporting. Positions are owned by the Ledger and
// mutated only through Buy, Sell and MarkToMarket.
type Position struct {
	Symbol    string
	Shares    int64
	Basis     decimal.Decimal // total cost of the open shares
	EntryDate time.Time
	Current   decimal.Decimal // last marked price
	MarkedAt  time.Time
}

// EntryPrice is the weighted-average price paid per share.
func (p Position) EntryPrice() decimal.Decimal {
	if p.Shares == 0 {
		return decimal.Decimal{}
	}
	return p.Basis.Div(decimal.NewFromInt(p.Shares))
}

// CurrentValue marks the position at its last known price.
func (p Position) CurrentValue() decimal.Decimal {
	return p.Current.Mul(decimal.NewFromInt(p.Shares))
}

func (p Position) UnrealizedPL() decimal.Decimal {
	return p.CurrentValue().Sub(p.Basis)
}

func (p Position) UnrealizedPct() decimal.Decimal {
	if p.Basis.IsZero() {
		return decimal.Decimal{}
	}
	return p.UnrealizedPL().Div(p.Basis).Mul(hundred)
}

// HoldingDays is the calendar days held as of the given date.
func (p Position) HoldingDays(asOf time.Time) int {
	d := int(asOf.Sub(p.EntryDate).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}
