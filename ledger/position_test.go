package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPosition_Derived(t *testing.T) {
	t.Parallel()

	p := Position{
		Symbol:    "AAPL",
		Shares:    10,
		Basis:     dec("1976.975"),
		EntryDate: day("2023-03-01"),
		Current:   dec("205"),
	}

	assert.True(t, p.EntryPrice().Equal(dec("197.6975")))
	assert.True(t, p.CurrentValue().Equal(dec("2050")))
	assert.True(t, p.UnrealizedPL().Equal(dec("73.025")))

	// 73.025 / 1976.975 * 100
	pct, _ := p.UnrealizedPct().Float64()
	assert.InDelta(t, 3.6938, pct, 0.001)

	assert.Equal(t, 7, p.HoldingDays(day("2023-03-08")))
	assert.Equal(t, 0, p.HoldingDays(day("2023-03-01")))
	assert.Equal(t, 0, p.HoldingDays(day("2023-02-01")), "never negative")
}

func TestPosition_ZeroValues(t *testing.T) {
	t.Parallel()

	var p Position
	assert.True(t, p.EntryPrice().IsZero())
	assert.True(t, p.UnrealizedPct().IsZero())
}
