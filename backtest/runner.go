package backtest

import (
	"context"

	"backcast/metrics"
)

// Runner drives a scheduler to completion and computes the performance
// summary over the recorded history.
type Runner struct {
	Scheduler    *Scheduler
	RiskFreeRate float64 // annual, 0.04 = 4%
}

func (r *Runner) Run(ctx context.Context) (Result, metrics.Summary, error) {
	res, err := r.Scheduler.Run(ctx)
	if err != nil {
		return res, metrics.Summary{}, err
	}
	return res, metrics.Calculate(res.Snapshots, res.Trades, r.RiskFreeRate), nil
}
