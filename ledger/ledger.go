package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"backcast/internal/id"
	"backcast/journal"
)

var one = decimal.NewFromInt(1)

// Costs are the execution frictions applied to every fill. Percentages
// are human-scale: SlippagePct 0.1 means 0.1%.
type Costs struct {
	SlippagePct    decimal.Decimal
	CommissionFlat decimal.Decimal
	CommissionPct  decimal.Decimal // of executed notional
	MaxPositionPct decimal.Decimal // of total equity; non-positive disables the cap
}

// Ledger owns the cash balance and the set of open positions. It is the
// only mutable state in a run and must be owned by exactly one scheduler;
// parallel runs each get their own instance.
type Ledger struct {
	cash      decimal.Decimal
	initial   decimal.Decimal
	costs     Costs
	positions map[string]*Position

	// Conservation accumulators: at any point,
	// cash + sum(basis) == initial + grossRealized - commissions, exactly.
	grossRealized decimal.Decimal // exec notional minus basis removed, before commissions
	commissions   decimal.Decimal

	journal journal.Journal
	log     zerolog.Logger
}

func New(initialCash decimal.Decimal, costs Costs, j journal.Journal, log zerolog.Logger) (*Ledger, error) {
	if !initialCash.IsPositive() {
		return nil, fmt.Errorf("ledger: initial cash must be positive, got %s", initialCash)
	}
	if j == nil {
		j = journal.Nop{}
	}
	return &Ledger{
		cash:      initialCash,
		initial:   initialCash,
		costs:     costs,
		positions: make(map[string]*Position),
		journal:   j,
		log:       log,
	}, nil
}

// Buy executes a market buy at the given price plus slippage. Shares may
// be reduced by the position-size cap; that is an adjustment, not an
// error. ErrInsufficientCash and ErrPositionLimit are rejections with no
// state change. Other errors are contract violations.
func (l *Ledger) Buy(symbol string, shares int64, marketPrice decimal.Decimal, date time.Time) (Order, error) {
	if symbol == "" {
		return Order{}, fmt.Errorf("buy: empty symbol")
	}
	if shares <= 0 {
		return Order{}, fmt.Errorf("buy %s: %w: %d", symbol, ErrInvalidShares, shares)
	}
	if !marketPrice.IsPositive() {
		return Order{}, fmt.Errorf("buy %s: %w: %s", symbol, ErrInvalidPrice, marketPrice)
	}

	requested := shares
	exec := marketPrice.Mul(one.Add(l.costs.SlippagePct.Div(hundred)))

	// Position-size cap, computed against current total equity. A cap that
	// truncates to zero shares is a rejection, distinct from lack of cash.
	if l.costs.MaxPositionPct.IsPositive() {
		capValue := l.TotalEquity().Mul(l.costs.MaxPositionPct).Div(hundred)
		if exec.Mul(decimal.NewFromInt(shares)).GreaterThan(capValue) {
			shares = capValue.Div(exec).IntPart()
			if shares <= 0 {
				return Order{}, fmt.Errorf("buy %s: %w: cap %s below one share at %s",
					symbol, ErrPositionLimit, capValue, exec)
			}
		}
	}

	notional := exec.Mul(decimal.NewFromInt(shares))
	commission := l.commission(notional)
	cost := notional.Add(commission)

	if cost.GreaterThan(l.cash) {
		return Order{}, fmt.Errorf("buy %s: %w: need %s, have %s",
			symbol, ErrInsufficientCash, cost, l.cash)
	}

	l.cash = l.cash.Sub(cost)
	l.commissions = l.commissions.Add(commission)

	if pos, ok := l.positions[symbol]; ok {
		// Weighted-average merge: the basis total absorbs the new cost and
		// the entry price follows from it. Entry date keeps the original.
		pos.Shares += shares
		pos.Basis = pos.Basis.Add(notional)
		pos.Current = exec
		pos.MarkedAt = date
	} else {
		l.positions[symbol] = &Position{
			Symbol:    symbol,
			Shares:    shares,
			Basis:     notional,
			EntryDate: date,
			Current:   exec,
			MarkedAt:  date,
		}
	}

	order := Order{
		ID:              id.New(),
		Side:            Buy,
		Symbol:          symbol,
		RequestedShares: requested,
		Shares:          shares,
		RequestedPrice:  marketPrice,
		ExecPrice:       exec,
		Commission:      commission,
		CashDelta:       cost.Neg(),
		Date:            date,
	}

	if err := l.journal.RecordOrder(l.orderRecord(order)); err != nil {
		return Order{}, fmt.Errorf("record order: %w", err)
	}

	l.log.Info().
		Str("symbol", symbol).
		Int64("shares", shares).
		Str("price", exec.StringFixed(4)).
		Str("cash", l.cash.StringFixed(2)).
		Msg("buy")

	return order, nil
}

// Sell executes a market sell at the given price minus slippage. When the
// full position is sold, the position is closed and the completed Trade
// is returned (nil otherwise). Selling what is not held is a contract
// violation, never a rejection.
func (l *Ledger) Sell(symbol string, shares int64, marketPrice decimal.Decimal, date time.Time) (Order, *Trade, error) {
	if shares <= 0 {
		return Order{}, nil, fmt.Errorf("sell %s: %w: %d", symbol, ErrInvalidShares, shares)
	}
	if !marketPrice.IsPositive() {
		return Order{}, nil, fmt.Errorf("sell %s: %w: %s", symbol, ErrInvalidPrice, marketPrice)
	}

	pos, ok := l.positions[symbol]
	if !ok {
		return Order{}, nil, fmt.Errorf("sell %s: %w", symbol, ErrNoPosition)
	}
	if shares > pos.Shares {
		return Order{}, nil, fmt.Errorf("sell %s: %w: want %d, hold %d",
			symbol, ErrInsufficientShares, shares, pos.Shares)
	}

	exec := marketPrice.Mul(one.Sub(l.costs.SlippagePct.Div(hundred)))
	notional := exec.Mul(decimal.NewFromInt(shares))
	commission := l.commission(notional)
	proceeds := notional.Sub(commission)

	// Basis removed in proportion to shares sold; a full exit removes the
	// exact remaining total so conservation cannot drift.
	var basisOut decimal.Decimal
	if shares == pos.Shares {
		basisOut = pos.Basis
	} else {
		basisOut = pos.Basis.Mul(decimal.NewFromInt(shares)).Div(decimal.NewFromInt(pos.Shares))
	}

	entryPrice := pos.EntryPrice()
	entryDate := pos.EntryDate

	l.cash = l.cash.Add(proceeds)
	l.grossRealized = l.grossRealized.Add(notional.Sub(basisOut))
	l.commissions = l.commissions.Add(commission)

	pnl := proceeds.Sub(basisOut)
	var pnlPct decimal.Decimal
	if basisOut.IsPositive() {
		pnlPct = pnl.Div(basisOut).Mul(hundred)
	}

	order := Order{
		ID:              id.New(),
		Side:            Sell,
		Symbol:          symbol,
		RequestedShares: shares,
		Shares:          shares,
		RequestedPrice:  marketPrice,
		ExecPrice:       exec,
		Commission:      commission,
		CashDelta:       proceeds,
		Date:            date,
	}

	var closed *Trade
	if shares == pos.Shares {
		trade, err := NewTrade(id.New(), symbol, shares, entryPrice, exec, entryDate, date, pnl, pnlPct)
		if err != nil {
			return Order{}, nil, err
		}
		delete(l.positions, symbol)
		closed = &trade
	} else {
		pos.Shares -= shares
		pos.Basis = pos.Basis.Sub(basisOut)
	}

	if err := l.journal.RecordOrder(l.orderRecord(order)); err != nil {
		return Order{}, nil, fmt.Errorf("record order: %w", err)
	}
	if closed != nil {
		if err := l.journal.RecordTrade(tradeRecord(*closed)); err != nil {
			return Order{}, nil, fmt.Errorf("record trade: %w", err)
		}
	}

	l.log.Info().
		Str("symbol", symbol).
		Int64("shares", shares).
		Str("price", exec.StringFixed(4)).
		Str("pnl", pnl.StringFixed(2)).
		Bool("closed", closed != nil).
		Msg("sell")

	return order, closed, nil
}

// MarkToMarket updates a held position's current price. Cash is not
// touched. Marking a symbol that is not held is a contract violation.
func (l *Ledger) MarkToMarket(symbol string, price decimal.Decimal, date time.Time) error {
	pos, ok := l.positions[symbol]
	if !ok {
		return fmt.Errorf("mark %s: %w", symbol, ErrNoPosition)
	}
	if !price.IsPositive() {
		return fmt.Errorf("mark %s: %w: %s", symbol, ErrInvalidPrice, price)
	}
	pos.Current = price
	pos.MarkedAt = date
	return nil
}

// Snapshot is a pure read of the current portfolio state.
func (l *Ledger) Snapshot(date time.Time) Snapshot {
	pv := l.PositionsValue()
	return Snapshot{
		Date:           date,
		Cash:           l.cash,
		PositionsValue: pv,
		TotalEquity:    l.cash.Add(pv),
		OpenPositions:  len(l.positions),
	}
}

func (l *Ledger) Cash() decimal.Decimal        { return l.cash }
func (l *Ledger) InitialCash() decimal.Decimal { return l.initial }

// CommissionsPaid is the running total of commissions on all fills.
func (l *Ledger) CommissionsPaid() decimal.Decimal { return l.commissions }

// GrossRealized is realized P&L before commissions; see the conservation
// identity on Ledger.
func (l *Ledger) GrossRealized() decimal.Decimal { return l.grossRealized }

func (l *Ledger) PositionsValue() decimal.Decimal {
	v := decimal.Decimal{}
	for _, pos := range l.positions {
		v = v.Add(pos.CurrentValue())
	}
	return v
}

func (l *Ledger) TotalEquity() decimal.Decimal {
	return l.cash.Add(l.PositionsValue())
}

// OpenBasis is the summed cost basis of all open positions.
func (l *Ledger) OpenBasis() decimal.Decimal {
	b := decimal.Decimal{}
	for _, pos := range l.positions {
		b = b.Add(pos.Basis)
	}
	return b
}

func (l *Ledger) Position(symbol string) (Position, bool) {
	pos, ok := l.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns copies of all open positions, sorted by symbol for
// deterministic iteration.
func (l *Ledger) Positions() []Position {
	out := make([]Position, 0, len(l.positions))
	for _, pos := range l.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (l *Ledger) Symbols() []string {
	out := make([]string, 0, len(l.positions))
	for sym := range l.positions {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func (l *Ledger) OpenPositions() int { return len(l.positions) }

func (l *Ledger) commission(notional decimal.Decimal) decimal.Decimal {
	return l.costs.CommissionFlat.Add(notional.Mul(l.costs.CommissionPct).Div(hundred))
}

func (l *Ledger) orderRecord(o Order) journal.OrderRecord {
	return journal.OrderRecord{
		OrderID:         o.ID,
		Side:            string(o.Side),
		Symbol:          o.Symbol,
		RequestedShares: o.RequestedShares,
		Shares:          o.Shares,
		RequestedPrice:  o.RequestedPrice,
		ExecPrice:       o.ExecPrice,
		Commission:      o.Commission,
		CashDelta:       o.CashDelta,
		CashAfter:       l.cash,
		Date:            o.Date,
	}
}

func tradeRecord(t Trade) journal.TradeRecord {
	return journal.TradeRecord{
		TradeID:     t.ID,
		Symbol:      t.Symbol,
		Shares:      t.Shares,
		EntryPrice:  t.EntryPrice,
		ExitPrice:   t.ExitPrice,
		EntryDate:   t.EntryDate,
		ExitDate:    t.ExitDate,
		PnL:         t.PnL,
		PnLPct:      t.PnLPct,
		HoldingDays: t.HoldingDays,
	}
}
