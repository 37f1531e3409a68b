package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"backcast/journal"
	"backcast/ledger"
	"backcast/market"
	"backcast/strategies"
)

// Signal is a buy decision queued for execution at the next day's open.
// The queue lives on the Scheduler instance; it is never shared between
// runs.
type Signal struct {
	Symbol string
	Shares int64
	Date   time.Time // day the signal was generated
}

type Config struct {
	Start        time.Time
	End          time.Time
	MaxPositions int
}

// Scheduler drives the simulation one trading day at a time. The per-day
// step order is the engine's correctness property: queued signals execute
// at today's open before anything reads today's close, so no decision can
// see the price it executes at.
type Scheduler struct {
	cfg     Config
	ledger  *ledger.Ledger
	oracle  market.PriceOracle
	strat   strategies.Strategy
	journal journal.Journal
	log     zerolog.Logger

	pending []Signal
}

func NewScheduler(cfg Config, l *ledger.Ledger, oracle market.PriceOracle, strat strategies.Strategy, j journal.Journal, log zerolog.Logger) (*Scheduler, error) {
	if l == nil {
		return nil, fmt.Errorf("backtest: ledger is required")
	}
	if oracle == nil {
		return nil, fmt.Errorf("backtest: price oracle is required")
	}
	if strat == nil {
		return nil, fmt.Errorf("backtest: strategy is required")
	}
	if cfg.End.Before(cfg.Start) {
		return nil, fmt.Errorf("backtest: end %s before start %s",
			cfg.End.Format("2006-01-02"), cfg.Start.Format("2006-01-02"))
	}
	if cfg.MaxPositions <= 0 {
		return nil, fmt.Errorf("backtest: max positions must be positive")
	}
	if j == nil {
		j = journal.Nop{}
	}

	return &Scheduler{
		cfg:     cfg,
		ledger:  l,
		oracle:  oracle,
		strat:   strat,
		journal: j,
		log:     log,
	}, nil
}

// Result is the raw output of a run. Metrics are computed separately so
// they stay a pure function of this data.
type Result struct {
	Start       time.Time
	End         time.Time
	InitialCash decimal.Decimal
	FinalEquity decimal.Decimal

	Snapshots []ledger.Snapshot
	Trades    []ledger.Trade

	// Signals that never became orders: still queued at the end of the
	// run. Reported, never silently lost.
	Dropped []Signal

	RejectedOrders int
	MissedSignals  int
}

// Run executes the day loop from start to end inclusive. Rejected orders
// and missing prices are absorbed and reported; contract violations and
// journal failures abort the run. The context is checked between days
// only, so cancellation always lands on a day boundary.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	res := Result{
		Start:       market.Day(s.cfg.Start),
		End:         market.Day(s.cfg.End),
		InitialCash: s.ledger.InitialCash(),
	}

	s.log.Info().
		Time("start", res.Start).
		Time("end", res.End).
		Str("cash", res.InitialCash.String()).
		Msg("backtest starting")

	for day := res.Start; !day.After(res.End); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.step(day, &res); err != nil {
			return res, fmt.Errorf("day %s: %w", day.Format("2006-01-02"), err)
		}
	}

	// Signals generated on the final day can never execute. Report them
	// dropped rather than letting them vanish.
	for _, sig := range s.pending {
		res.Dropped = append(res.Dropped, sig)
		if err := s.journal.RecordSignal(journal.SignalRecord{
			Date:       res.End,
			Kind:       journal.SignalDropped,
			Symbol:     sig.Symbol,
			Shares:     sig.Shares,
			SignalDate: sig.Date,
			Reason:     "backtest ended before execution",
		}); err != nil {
			return res, err
		}
		s.log.Warn().Str("symbol", sig.Symbol).Msg("pending signal dropped at end of run")
	}
	s.pending = nil

	res.FinalEquity = s.ledger.TotalEquity()

	s.log.Info().
		Str("final_equity", res.FinalEquity.StringFixed(2)).
		Int("trades", len(res.Trades)).
		Int("dropped", len(res.Dropped)).
		Msg("backtest complete")

	return res, nil
}

// step runs one trading day in the fixed order that eliminates look-ahead
// bias: open executions, marks, exits, entry generation, snapshot.
func (s *Scheduler) step(day time.Time, res *Result) error {
	// 1) Apply pending signals from the previous day at today's open.
	// The queue drains regardless of outcome.
	queued := s.pending
	s.pending = nil

	for _, sig := range queued {
		open, ok := s.oracle.OpeningPrice(sig.Symbol, day)
		if !ok {
			res.MissedSignals++
			if err := s.journal.RecordSignal(journal.SignalRecord{
				Date:       day,
				Kind:       journal.SignalMissed,
				Symbol:     sig.Symbol,
				Shares:     sig.Shares,
				SignalDate: sig.Date,
				Reason:     "no opening price",
			}); err != nil {
				return err
			}
			continue
		}

		_, err := s.ledger.Buy(sig.Symbol, sig.Shares, open, day)
		if err != nil {
			if !ledger.IsRejection(err) {
				return err
			}
			res.RejectedOrders++
			if rerr := s.journal.RecordSignal(journal.SignalRecord{
				Date:       day,
				Kind:       journal.SignalRejected,
				Symbol:     sig.Symbol,
				Shares:     sig.Shares,
				Price:      open,
				SignalDate: sig.Date,
				Reason:     err.Error(),
			}); rerr != nil {
				return rerr
			}
		}
	}

	// 2) Mark open positions at today's close. Missing data keeps the
	// stale mark; no forced update, no error.
	for _, sym := range s.ledger.Symbols() {
		if clos, ok := s.oracle.ClosingPrice(sym, day); ok {
			if err := s.ledger.MarkToMarket(sym, clos, day); err != nil {
				return err
			}
		}
	}

	// 3) Exit evaluation against the marked positions, executed at
	// today's close.
	for _, exit := range s.strat.EvaluateExits(day, s.ledger.Positions()) {
		clos, ok := s.oracle.ClosingPrice(exit.Symbol, day)
		if !ok {
			if err := s.journal.RecordSignal(journal.SignalRecord{
				Date:   day,
				Kind:   journal.SignalExitSkip,
				Symbol: exit.Symbol,
				Shares: exit.Shares,
				Reason: "no closing price",
			}); err != nil {
				return err
			}
			continue
		}

		if err := s.journal.RecordSignal(journal.SignalRecord{
			Date:       day,
			Kind:       journal.SignalExit,
			Symbol:     exit.Symbol,
			Shares:     exit.Shares,
			Price:      clos,
			SignalDate: day,
			Reason:     exit.Reason,
		}); err != nil {
			return err
		}

		_, trade, err := s.ledger.Sell(exit.Symbol, exit.Shares, clos, day)
		if err != nil {
			return err
		}
		if trade != nil {
			res.Trades = append(res.Trades, *trade)
		}
	}

	// 4) Entry generation for tomorrow's open.
	if slots := s.cfg.MaxPositions - s.ledger.OpenPositions(); slots > 0 {
		for _, entry := range s.strat.GenerateEntries(day, s.ledger.Cash(), slots) {
			sig := Signal{Symbol: entry.Symbol, Shares: entry.Shares, Date: day}
			s.pending = append(s.pending, sig)

			price, _ := s.oracle.ClosingPrice(entry.Symbol, day)
			if err := s.journal.RecordSignal(journal.SignalRecord{
				Date:       day,
				Kind:       journal.SignalQueued,
				Symbol:     entry.Symbol,
				Shares:     entry.Shares,
				Price:      price,
				SignalDate: day,
				Reason:     "queued for next open",
			}); err != nil {
				return err
			}
		}
	}

	// 5) Snapshot.
	snap := s.ledger.Snapshot(day)
	res.Snapshots = append(res.Snapshots, snap)

	return s.journal.RecordEquity(journal.EquitySnapshot{
		Date:           snap.Date,
		Cash:           snap.Cash,
		PositionsValue: snap.PositionsValue,
		Equity:         snap.TotalEquity,
		OpenPositions:  snap.OpenPositions,
	})
}
