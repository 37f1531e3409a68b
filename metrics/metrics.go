// Package metrics turns a recorded equity curve and trade list into
// return, risk and trade statistics. Calculate is a pure function: the
// same inputs always produce the same Summary.
package metrics

import (
	"math"

	"github.com/shopspring/decimal"

	"backcast/ledger"
)

// Trading days per year, used to annualize daily return statistics.
const tradingDays = 252

// Summary holds the headline numbers for one run. Money figures stay
// decimal; ratios and percentages are float64 since they are statistics,
// not balances.
type Summary struct {
	InitialCapital decimal.Decimal
	FinalCapital   decimal.Decimal
	TotalReturn    decimal.Decimal // dollars
	TotalReturnPct float64
	CAGR           float64 // percent

	SharpeRatio     float64
	SortinoRatio    float64
	MaxDrawdownPct  float64
	MaxDrawdownDays int

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // percent
	ProfitFactor  float64

	AvgGainPct     float64
	AvgLossPct     float64
	LargestGainPct float64
	LargestLossPct float64
	AvgHoldingDays float64

	AvgOpenPositions float64
	MaxOpenPositions int

	DaysTraded int
}

// Calculate computes a Summary. Degenerate inputs (no trades, a single
// snapshot, a flat curve) produce defined neutral zeros, never NaN or an
// error. riskFreeRate is annual (0.04 = 4%).
func Calculate(snapshots []ledger.Snapshot, trades []ledger.Trade, riskFreeRate float64) Summary {
	var sum Summary

	if len(snapshots) == 0 {
		return sum
	}

	sum.InitialCapital = snapshots[0].TotalEquity
	sum.FinalCapital = snapshots[len(snapshots)-1].TotalEquity
	sum.TotalReturn = sum.FinalCapital.Sub(sum.InitialCapital)
	if sum.InitialCapital.IsPositive() {
		pct, _ := sum.TotalReturn.Div(sum.InitialCapital).Mul(decimal.NewFromInt(100)).Float64()
		sum.TotalReturnPct = pct
	}

	sum.DaysTraded = int(snapshots[len(snapshots)-1].Date.Sub(snapshots[0].Date).Hours() / 24)
	sum.CAGR = cagr(sum.InitialCapital, sum.FinalCapital, sum.DaysTraded)

	equity := make([]float64, len(snapshots))
	for i, s := range snapshots {
		equity[i], _ = s.TotalEquity.Float64()
	}

	sum.MaxDrawdownPct, sum.MaxDrawdownDays = maxDrawdown(equity)

	daily := dailyReturns(equity)
	sum.SharpeRatio = sharpe(daily, riskFreeRate)
	sum.SortinoRatio = sortino(daily, riskFreeRate)

	sum.AvgOpenPositions, sum.MaxOpenPositions = exposure(snapshots)

	tradeStats(trades, &sum)

	return sum
}

func cagr(initial, final decimal.Decimal, days int) float64 {
	if days <= 0 || !initial.IsPositive() || !final.IsPositive() {
		return 0
	}
	i, _ := initial.Float64()
	f, _ := final.Float64()
	years := float64(days) / 365.25
	return (math.Pow(f/i, 1/years) - 1) * 100
}

// maxDrawdown scans the curve once against a running peak, returning the
// deepest peak-to-trough decline in percent and its duration in curve
// points (daily snapshots, so days).
func maxDrawdown(equity []float64) (float64, int) {
	if len(equity) == 0 {
		return 0, 0
	}

	peak := equity[0]
	maxDD := 0.0
	maxDur := 0
	curDur := 0

	for _, v := range equity {
		if v >= peak {
			peak = v
			curDur = 0
			continue
		}
		if peak > 0 {
			dd := (peak - v) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
		curDur++
		if curDur > maxDur {
			maxDur = curDur
		}
	}
	return maxDD, maxDur
}

func dailyReturns(equity []float64) []float64 {
	if len(equity) < 2 {
		return nil
	}
	out := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, equity[i]/equity[i-1]-1)
	}
	return out
}

func sharpe(daily []float64, riskFreeRate float64) float64 {
	if len(daily) == 0 {
		return 0
	}

	dailyRF := riskFreeRate / tradingDays
	excess := make([]float64, len(daily))
	for i, r := range daily {
		excess[i] = r - dailyRF
	}

	sd := stdev(excess)
	if sd == 0 {
		return 0
	}
	return mean(excess) / sd * math.Sqrt(tradingDays)
}

func sortino(daily []float64, riskFreeRate float64) float64 {
	if len(daily) == 0 {
		return 0
	}

	dailyRF := riskFreeRate / tradingDays
	excess := make([]float64, len(daily))
	var downside []float64
	for i, r := range daily {
		excess[i] = r - dailyRF
		if excess[i] < 0 {
			downside = append(downside, excess[i])
		}
	}

	sd := stdev(downside)
	if sd == 0 {
		return 0
	}
	return mean(excess) / sd * math.Sqrt(tradingDays)
}

func tradeStats(trades []ledger.Trade, sum *Summary) {
	sum.TotalTrades = len(trades)
	if len(trades) == 0 {
		return
	}

	grossProfit := decimal.Decimal{}
	grossLoss := decimal.Decimal{}
	var gainPcts, lossPcts []float64
	totalHold := 0

	for _, t := range trades {
		pct, _ := t.PnLPct.Float64()
		totalHold += t.HoldingDays

		if pct > sum.LargestGainPct {
			sum.LargestGainPct = pct
		}
		if pct < sum.LargestLossPct {
			sum.LargestLossPct = pct
		}

		switch {
		case t.PnL.IsPositive():
			sum.WinningTrades++
			grossProfit = grossProfit.Add(t.PnL)
			gainPcts = append(gainPcts, pct)
		case t.PnL.IsNegative():
			sum.LosingTrades++
			grossLoss = grossLoss.Add(t.PnL.Abs())
			lossPcts = append(lossPcts, pct)
		}
	}

	sum.WinRate = float64(sum.WinningTrades) / float64(sum.TotalTrades) * 100
	sum.AvgHoldingDays = float64(totalHold) / float64(sum.TotalTrades)
	sum.AvgGainPct = mean(gainPcts)
	sum.AvgLossPct = mean(lossPcts)

	if grossLoss.IsPositive() {
		pf, _ := grossProfit.Div(grossLoss).Float64()
		sum.ProfitFactor = pf
	}
}

func exposure(snapshots []ledger.Snapshot) (avg float64, max int) {
	if len(snapshots) == 0 {
		return 0, 0
	}
	total := 0
	for _, s := range snapshots {
		total += s.OpenPositions
		if s.OpenPositions > max {
			max = s.OpenPositions
		}
	}
	return float64(total) / float64(len(snapshots)), max
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var t float64
	for _, x := range xs {
		t += x
	}
	return t / float64(len(xs))
}

// stdev is the population standard deviation, matching the convention
// used for the annualized ratios.
func stdev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}
