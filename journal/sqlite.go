package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite persists the full event stream. Prices are stored as TEXT so the
// exact decimal representation survives the round trip.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordOrder(o OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, side, symbol, requested_shares, shares, requested_price, exec_price, commission, cash_delta, cash_after, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.Side, o.Symbol, o.RequestedShares, o.Shares,
		o.RequestedPrice, o.ExecPrice, o.Commission, o.CashDelta, o.CashAfter, o.Date,
	)
	return err
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, symbol, shares, entry_price, exit_price, entry_date, exit_date, pnl, pnl_pct, holding_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Symbol, t.Shares, t.EntryPrice, t.ExitPrice,
		t.EntryDate, t.ExitDate, t.PnL, t.PnLPct, t.HoldingDays,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(date, cash, positions_value, equity, open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		e.Date, e.Cash, e.PositionsValue, e.Equity, e.OpenPositions,
	)
	return err
}

func (j *SQLite) RecordSignal(s SignalRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO signals
		(date, kind, symbol, shares, price, signal_date, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Date, s.Kind, s.Symbol, s.Shares, s.Price, s.SignalDate, s.Reason,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
