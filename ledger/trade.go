package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one completed round trip: a position fully entered and fully
// exited. Created only when a position's share count drops to zero,
// immutable thereafter.
type Trade struct {
	ID          string
	Symbol      string
	Shares      int64
	EntryPrice  decimal.Decimal
	ExitPrice   decimal.Decimal
	EntryDate   time.Time
	ExitDate    time.Time
	PnL         decimal.Decimal // realized, net of commissions
	PnLPct      decimal.Decimal
	HoldingDays int
}

// NewTrade validates at the boundary; a trade that fails construction is
// a ledger bug, not a market condition.
func NewTrade(id, symbol string, shares int64, entry, exit decimal.Decimal, entryDate, exitDate time.Time, pnl, pnlPct decimal.Decimal) (Trade, error) {
	if symbol == "" {
		return Trade{}, fmt.Errorf("new trade: empty symbol")
	}
	if shares <= 0 {
		return Trade{}, fmt.Errorf("new trade %s: %w: %d", symbol, ErrInvalidShares, shares)
	}
	if !entry.IsPositive() || !exit.IsPositive() {
		return Trade{}, fmt.Errorf("new trade %s: %w", symbol, ErrInvalidPrice)
	}
	if exitDate.Before(entryDate) {
		return Trade{}, fmt.Errorf("new trade %s: exit %s before entry %s",
			symbol, exitDate.Format("2006-01-02"), entryDate.Format("2006-01-02"))
	}

	days := int(exitDate.Sub(entryDate).Hours() / 24)

	return Trade{
		ID:          id,
		Symbol:      symbol,
		Shares:      shares,
		EntryPrice:  entry,
		ExitPrice:   exit,
		EntryDate:   entryDate,
		ExitDate:    exitDate,
		PnL:         pnl,
		PnLPct:      pnlPct,
		HoldingDays: days,
	}, nil
}
