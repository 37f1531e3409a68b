package journal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReport_WriteOrg(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.org")

	r := &RunReport{
		RunID:    "01HTEST",
		Created:  time.Date(2023, 12, 30, 9, 0, 0, 0, time.UTC),
		Strategy: "gainers",
		Dataset:  "prices.csv",

		Start: day("2023-01-02"),
		End:   day("2023-12-29"),

		InitialCapital: "50000.00",
		FinalCapital:   "55750.00",
		TotalReturn:    "5750.00",
		TotalReturnPct: 11.5,
		CAGR:           11.65,
		SharpeRatio:    1.21,
		SortinoRatio:   1.64,
		MaxDrawdownPct: 6.2,

		Trades:       42,
		Wins:         25,
		Losses:       17,
		WinRate:      59.52,
		ProfitFactor: 1.8,

		DroppedSignals: 1,
		RejectedOrders: 3,

		OrgPath: path,
		Notes:   []string{"volume filter disabled"},
	}

	require.NoError(t, r.WriteOrg())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	org := string(data)

	assert.Contains(t, org, "* BACKTEST: gainers 2023-01-02..2023-12-29")
	assert.Contains(t, org, ":RUN_ID:      01HTEST")
	assert.Contains(t, org, ":NET_PL:      5750.00")
	assert.Contains(t, org, ":WIN_RATE:    59.52")
	assert.Contains(t, org, "| Wins    | 25 |")
	assert.Contains(t, org, "- Profit Factor:    1.80")
	assert.Contains(t, org, "** Observations")
	assert.Contains(t, org, "- volume filter disabled")
}

func TestRunReport_OmitsEmptyNotes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.org")
	r := &RunReport{Strategy: "noop", Start: day("2023-01-02"), End: day("2023-01-03"), OrgPath: path}

	require.NoError(t, r.WriteOrg())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "** Observations")
}
