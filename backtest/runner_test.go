package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backcast/strategies"
)

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	strat := &scriptStrategy{
		entries: map[string][]strategies.Entry{
			"2023-03-01": {{Symbol: "AAPL", Shares: 10}},
		},
		exits: map[string][]strategies.Exit{
			"2023-03-03": {{Symbol: "AAPL", Shares: 10, Reason: "test exit"}},
		},
	}

	s, _ := newTestScheduler(t, threeDayStore(), strat, nil, 5)
	r := &Runner{Scheduler: s, RiskFreeRate: 0.04}

	res, sum, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, sum.InitialCapital.Equal(res.Snapshots[0].TotalEquity))
	assert.True(t, sum.FinalCapital.Equal(res.FinalEquity))
	assert.Equal(t, 1, sum.TotalTrades)
	assert.Equal(t, 1, sum.LosingTrades)
	assert.True(t, sum.TotalReturn.Equal(dec("-30")))
}

func TestRunner_Run_PropagatesError(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(t, threeDayStore(), &scriptStrategy{}, nil, 5)
	r := &Runner{Scheduler: s}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Run(ctx)
	require.Error(t, err)
}
