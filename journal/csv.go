package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CSV writes orders, trades and equity rows to three flat files. Signal
// events are folded into the orders file with an empty order_id.
type CSV struct {
	orders *csv.Writer
	trades *csv.Writer
	equity *csv.Writer
	of, tf, ef *os.File
}

func NewCSV(ordersPath, tradesPath, equityPath string) (*CSV, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		return nil, err
	}

	ow := csv.NewWriter(of)
	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := ow.Write([]string{"order_id", "side", "symbol", "requested_shares", "shares", "requested_price", "exec_price", "commission", "cash_delta", "cash_after", "date"}); err != nil {
		return nil, err
	}
	if err := tw.Write([]string{"trade_id", "symbol", "shares", "entry_price", "exit_price", "entry_date", "exit_date", "pnl", "pnl_pct", "holding_days"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"date", "cash", "positions_value", "equity", "open_positions"}); err != nil {
		return nil, err
	}

	for _, w := range []*csv.Writer{ow, tw, ew} {
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
	}

	return &CSV{orders: ow, trades: tw, equity: ew, of: of, tf: tf, ef: ef}, nil
}

func (j *CSV) RecordOrder(o OrderRecord) error {
	err := j.orders.Write([]string{
		o.OrderID,
		o.Side,
		o.Symbol,
		itoa(o.RequestedShares),
		itoa(o.Shares),
		d(o.RequestedPrice),
		d(o.ExecPrice),
		d(o.Commission),
		d(o.CashDelta),
		d(o.CashAfter),
		o.Date.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	err := j.trades.Write([]string{
		t.TradeID,
		t.Symbol,
		itoa(t.Shares),
		d(t.EntryPrice),
		d(t.ExitPrice),
		t.EntryDate.Format(time.RFC3339),
		t.ExitDate.Format(time.RFC3339),
		d(t.PnL),
		d(t.PnLPct),
		strconv.Itoa(t.HoldingDays),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquitySnapshot) error {
	err := j.equity.Write([]string{
		e.Date.Format(time.RFC3339),
		d(e.Cash),
		d(e.PositionsValue),
		d(e.Equity),
		strconv.Itoa(e.OpenPositions),
	})
	if err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) RecordSignal(s SignalRecord) error {
	err := j.orders.Write([]string{
		"",
		s.Kind,
		s.Symbol,
		itoa(s.Shares),
		itoa(s.Shares),
		d(s.Price),
		d(s.Price),
		"0",
		"0",
		s.Reason,
		s.Date.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSV) Close() error {
	for _, w := range []*csv.Writer{j.orders, j.trades, j.equity} {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	}
	for _, f := range []*os.File{j.of, j.tf, j.ef} {
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func d(x decimal.Decimal) string {
	return x.String()
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
