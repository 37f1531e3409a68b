package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	var rec TradeRecord

	row := j.db.QueryRow(`
		SELECT trade_id, symbol, shares, entry_price, exit_price, entry_date, exit_date, pnl, pnl_pct, holding_days
		FROM trades
		WHERE trade_id = ?`, tradeID)

	err := row.Scan(
		&rec.TradeID,
		&rec.Symbol,
		&rec.Shares,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.EntryDate,
		&rec.ExitDate,
		&rec.PnL,
		&rec.PnLPct,
		&rec.HoldingDays,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTradesClosedBetween returns trades whose exit_date is within [start, end).
func (j *SQLite) ListTradesClosedBetween(start, end time.Time) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, symbol, shares, entry_price, exit_price, entry_date, exit_date, pnl, pnl_pct, holding_days
		FROM trades
		WHERE exit_date >= ? AND exit_date < ?
		ORDER BY exit_date ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var rec TradeRecord
		if err := rows.Scan(
			&rec.TradeID,
			&rec.Symbol,
			&rec.Shares,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.EntryDate,
			&rec.ExitDate,
			&rec.PnL,
			&rec.PnLPct,
			&rec.HoldingDays,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns the equity curve within [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquitySnapshot, error) {
	rows, err := j.db.Query(`
		SELECT date, cash, positions_value, equity, open_positions
		FROM equity
		WHERE date >= ? AND date < ?
		ORDER BY date ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquitySnapshot
	for rows.Next() {
		var rec EquitySnapshot
		if err := rows.Scan(
			&rec.Date,
			&rec.Cash,
			&rec.PositionsValue,
			&rec.Equity,
			&rec.OpenPositions,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListSignals returns signal events of the given kind; all kinds when
// kind is empty.
func (j *SQLite) ListSignals(kind string) ([]SignalRecord, error) {
	q := `
		SELECT date, kind, symbol, shares, price, signal_date, reason
		FROM signals`
	args := []any{}
	if kind != "" {
		q += ` WHERE kind = ?`
		args = append(args, kind)
	}
	q += ` ORDER BY date ASC`

	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SignalRecord
	for rows.Next() {
		var rec SignalRecord
		if err := rows.Scan(
			&rec.Date,
			&rec.Kind,
			&rec.Symbol,
			&rec.Shares,
			&rec.Price,
			&rec.SignalDate,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
