// Package journal persists the engine's event stream: fills, completed
// trades, daily equity rows and the non-fill signal events. Backends are
// interchangeable behind the Journal interface.
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderRecord is one executed fill. Exactly one is recorded per fill, at
// the moment the ledger creates it.
type OrderRecord struct {
	OrderID         string
	Side            string // "BUY" or "SELL"
	Symbol          string
	RequestedShares int64
	Shares          int64 // executed shares after any position-size cap
	RequestedPrice  decimal.Decimal
	ExecPrice       decimal.Decimal // after slippage
	Commission      decimal.Decimal
	CashDelta       decimal.Decimal // negative for buys
	CashAfter       decimal.Decimal
	Date            time.Time
}

// TradeRecord is one completed round trip, recorded when a position's
// share count drops to zero.
type TradeRecord struct {
	TradeID     string
	Symbol      string
	Shares      int64
	EntryPrice  decimal.Decimal
	ExitPrice   decimal.Decimal
	EntryDate   time.Time
	ExitDate    time.Time
	PnL         decimal.Decimal
	PnLPct      decimal.Decimal
	HoldingDays int
}

// EquitySnapshot is one end-of-day portfolio row.
type EquitySnapshot struct {
	Date           time.Time
	Cash           decimal.Decimal
	PositionsValue decimal.Decimal
	Equity         decimal.Decimal
	OpenPositions  int
}

// Signal kinds as they appear in the event stream.
const (
	SignalQueued   = "queued"          // entry queued for next open
	SignalMissed   = "missed"          // no opening price, signal dropped
	SignalDropped  = "dropped"         // still queued when the run ended
	SignalRejected = "rejected"        // ledger refused the order
	SignalExit     = "exit"            // strategy exit decision
	SignalExitSkip = "exit-skipped"    // exit wanted but no closing price
)

// SignalRecord covers the non-fill events: queued/dropped/missed entry
// signals, rejected orders and exit decisions.
type SignalRecord struct {
	Date       time.Time
	Kind       string
	Symbol     string
	Shares     int64
	Price      decimal.Decimal // reference price when known, zero otherwise
	SignalDate time.Time       // day the signal was generated
	Reason     string
}

// Journal consumes the engine's event stream. Implementations must not
// mutate records and should tolerate being called once per event only.
type Journal interface {
	RecordOrder(OrderRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquitySnapshot) error
	RecordSignal(SignalRecord) error
	Close() error
}

// Nop discards everything. Useful default for tests and dry runs.
type Nop struct{}

func (Nop) RecordOrder(OrderRecord) error     { return nil }
func (Nop) RecordTrade(TradeRecord) error     { return nil }
func (Nop) RecordEquity(EquitySnapshot) error { return nil }
func (Nop) RecordSignal(SignalRecord) error   { return nil }
func (Nop) Close() error                      { return nil }

// Multi fans out every record to each journal in order, stopping on the
// first error.
type Multi []Journal

func (m Multi) RecordOrder(r OrderRecord) error {
	for _, j := range m {
		if err := j.RecordOrder(r); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) RecordTrade(r TradeRecord) error {
	for _, j := range m {
		if err := j.RecordTrade(r); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) RecordEquity(r EquitySnapshot) error {
	for _, j := range m {
		if err := j.RecordEquity(r); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) RecordSignal(r SignalRecord) error {
	for _, j := range m {
		if err := j.RecordSignal(r); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, j := range m {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
