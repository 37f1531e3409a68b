package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is one end-of-day portfolio row: cash plus mark-to-market
// position value. Appended once per trading day; read-only history.
type Snapshot struct {
	Date           time.Time
	Cash           decimal.Decimal
	PositionsValue decimal.Decimal
	TotalEquity    decimal.Decimal
	OpenPositions  int
}
