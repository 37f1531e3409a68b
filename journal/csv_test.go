package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCSV(t *testing.T) (*CSV, string, string, string) {
	t.Helper()

	dir := t.TempDir()
	op := filepath.Join(dir, "orders.csv")
	tp := filepath.Join(dir, "trades.csv")
	ep := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(op, tp, ep)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	return j, op, tp, ep
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSV_WritesHeaders(t *testing.T) {
	t.Parallel()

	_, op, tp, ep := newTestCSV(t)

	assert.Equal(t, "order_id", readRows(t, op)[0][0])
	assert.Equal(t, "trade_id", readRows(t, tp)[0][0])
	assert.Equal(t, "date", readRows(t, ep)[0][0])
}

func TestCSV_Records(t *testing.T) {
	t.Parallel()

	j, op, tp, ep := newTestCSV(t)

	require.NoError(t, j.RecordOrder(OrderRecord{
		OrderID:         "o1",
		Side:            "BUY",
		Symbol:          "AAPL",
		RequestedShares: 50,
		Shares:          10,
		RequestedPrice:  dec("197.50"),
		ExecPrice:       dec("197.6975"),
		CashDelta:       dec("-1976.975"),
		CashAfter:       dec("8023.025"),
		Date:            day("2023-03-01"),
	}))
	require.NoError(t, j.RecordTrade(sampleTrade("t1", "2023-03-08", "120.925")))
	require.NoError(t, j.RecordEquity(EquitySnapshot{
		Date:   day("2023-03-01"),
		Cash:   dec("8023.025"),
		Equity: dec("10000"),
	}))

	orders := readRows(t, op)
	require.Len(t, orders, 2)
	assert.Equal(t, []string{"o1", "BUY", "AAPL", "50", "10", "197.5", "197.6975", "0", "-1976.975", "8023.025", "2023-03-01T00:00:00Z"}, orders[1])

	trades := readRows(t, tp)
	require.Len(t, trades, 2)
	assert.Equal(t, "t1", trades[1][0])
	assert.Equal(t, "120.925", trades[1][7])

	equity := readRows(t, ep)
	require.Len(t, equity, 2)
	assert.Equal(t, "10000", equity[1][3])
}

func TestCSV_SignalsFoldIntoOrders(t *testing.T) {
	t.Parallel()

	j, op, _, _ := newTestCSV(t)

	require.NoError(t, j.RecordSignal(SignalRecord{
		Date:   day("2023-03-01"),
		Kind:   SignalQueued,
		Symbol: "AAPL",
		Shares: 10,
		Price:  dec("101"),
		Reason: "queued for next open",
	}))

	rows := readRows(t, op)
	require.Len(t, rows, 2)
	assert.Equal(t, "", rows[1][0], "signal rows carry no order id")
	assert.Equal(t, SignalQueued, rows[1][1])
	assert.Equal(t, "AAPL", rows[1][2])
}

func TestCSV_RowsFlushedPerRecord(t *testing.T) {
	t.Parallel()

	j, _, tp, _ := newTestCSV(t)
	require.NoError(t, j.RecordTrade(sampleTrade("t1", "2023-03-08", "1")))

	// Visible before Close; a crashed run still leaves its rows behind.
	assert.Len(t, readRows(t, tp), 2)
}
