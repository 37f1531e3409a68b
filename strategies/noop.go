package strategies

import (
	"time"

	"github.com/shopspring/decimal"

	"backcast/ledger"
)

// Noop never trades. Baseline for cost-free equity curves.
type Noop struct{}

func (Noop) EvaluateExits(time.Time, []ledger.Position) []Exit { return nil }

func (Noop) GenerateEntries(time.Time, decimal.Decimal, int) []Entry { return nil }
