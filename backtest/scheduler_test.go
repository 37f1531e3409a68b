package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backcast/journal"
	"backcast/ledger"
	"backcast/market"
	"backcast/strategies"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// scriptStrategy plays back canned entries and exits keyed by day.
type scriptStrategy struct {
	entries map[string][]strategies.Entry
	exits   map[string][]strategies.Exit
}

func (s *scriptStrategy) EvaluateExits(date time.Time, _ []ledger.Position) []strategies.Exit {
	return s.exits[date.Format("2006-01-02")]
}

func (s *scriptStrategy) GenerateEntries(date time.Time, _ decimal.Decimal, _ int) []strategies.Entry {
	return s.entries[date.Format("2006-01-02")]
}

// signalJournal keeps only the signal stream.
type signalJournal struct {
	journal.Nop
	signals []journal.SignalRecord
}

func (j *signalJournal) RecordSignal(s journal.SignalRecord) error {
	j.signals = append(j.signals, s)
	return nil
}

func (j *signalJournal) kinds() []string {
	out := make([]string, 0, len(j.signals))
	for _, s := range j.signals {
		out = append(out, s.Kind)
	}
	return out
}

// threeDayStore has AAPL bars for 2023-03-01 through 2023-03-03.
func threeDayStore() *market.Store {
	s := market.NewStore()
	add := func(sym, d, open, clos string) {
		s.Add(market.Bar{Symbol: sym, Date: day(d), Open: dec(open), Close: dec(clos)})
	}
	add("AAPL", "2023-03-01", "100", "101")
	add("AAPL", "2023-03-02", "102", "103")
	add("AAPL", "2023-03-03", "104", "99")
	return s
}

func newTestScheduler(t *testing.T, store *market.Store, strat strategies.Strategy, j journal.Journal, maxPositions int) (*Scheduler, *ledger.Ledger) {
	t.Helper()

	l, err := ledger.New(dec("10000"), ledger.Costs{}, j, zerolog.Nop())
	require.NoError(t, err)

	s, err := NewScheduler(Config{
		Start:        day("2023-03-01"),
		End:          day("2023-03-03"),
		MaxPositions: maxPositions,
	}, l, store, strat, j, zerolog.Nop())
	require.NoError(t, err)

	return s, l
}

func TestNewScheduler_Validation(t *testing.T) {
	t.Parallel()

	store := threeDayStore()
	l, err := ledger.New(dec("10000"), ledger.Costs{}, nil, zerolog.Nop())
	require.NoError(t, err)
	strat := &scriptStrategy{}
	cfg := Config{Start: day("2023-03-01"), End: day("2023-03-03"), MaxPositions: 5}

	_, err = NewScheduler(cfg, nil, store, strat, nil, zerolog.Nop())
	require.Error(t, err)

	_, err = NewScheduler(cfg, l, nil, strat, nil, zerolog.Nop())
	require.Error(t, err)

	_, err = NewScheduler(cfg, l, store, nil, nil, zerolog.Nop())
	require.Error(t, err)

	bad := cfg
	bad.End = day("2023-02-01")
	_, err = NewScheduler(bad, l, store, strat, nil, zerolog.Nop())
	require.Error(t, err)

	bad = cfg
	bad.MaxPositions = 0
	_, err = NewScheduler(bad, l, store, strat, nil, zerolog.Nop())
	require.Error(t, err)
}

func TestRun_EntryExecutesAtNextOpen(t *testing.T) {
	t.Parallel()

	strat := &scriptStrategy{
		entries: map[string][]strategies.Entry{
			"2023-03-01": {{Symbol: "AAPL", Shares: 10}},
		},
	}

	s, l := newTestScheduler(t, threeDayStore(), strat, nil, 5)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	pos, ok := l.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, int64(10), pos.Shares)
	assert.True(t, pos.EntryPrice().Equal(dec("102")), "fills at the NEXT day's open, got %s", pos.EntryPrice())
	assert.Equal(t, day("2023-03-02"), pos.EntryDate)

	require.Len(t, res.Snapshots, 3, "one snapshot per calendar day")

	// Signal day: still all cash, the order has not executed yet.
	assert.Equal(t, 0, res.Snapshots[0].OpenPositions)
	assert.True(t, res.Snapshots[0].TotalEquity.Equal(dec("10000")))

	// Fill day: 10 shares at 102 open, marked at 103 close.
	assert.Equal(t, 1, res.Snapshots[1].OpenPositions)
	assert.True(t, res.Snapshots[1].Cash.Equal(dec("8980")))
	assert.True(t, res.Snapshots[1].TotalEquity.Equal(dec("10010")))

	// Next close: marked down to 99.
	assert.True(t, res.Snapshots[2].TotalEquity.Equal(dec("9970")))
	assert.True(t, res.FinalEquity.Equal(dec("9970")))

	assert.Empty(t, res.Dropped)
	assert.Zero(t, res.MissedSignals)
	assert.Zero(t, res.RejectedOrders)
}

func TestRun_FinalDaySignalDropped(t *testing.T) {
	t.Parallel()

	strat := &scriptStrategy{
		entries: map[string][]strategies.Entry{
			"2023-03-03": {{Symbol: "AAPL", Shares: 10}},
		},
	}

	j := &signalJournal{}
	s, l := newTestScheduler(t, threeDayStore(), strat, j, 5)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Dropped, 1)
	assert.Equal(t, "AAPL", res.Dropped[0].Symbol)
	assert.Equal(t, day("2023-03-03"), res.Dropped[0].Date)
	assert.Equal(t, 0, l.OpenPositions())

	assert.Contains(t, j.kinds(), journal.SignalQueued)
	assert.Contains(t, j.kinds(), journal.SignalDropped)
}

func TestRun_MissedSignalOnMissingOpen(t *testing.T) {
	t.Parallel()

	store := threeDayStore()
	// GONE trades on the signal day only, so there is no open to fill at.
	store.Add(market.Bar{Symbol: "GONE", Date: day("2023-03-01"), Open: dec("10"), Close: dec("11")})

	strat := &scriptStrategy{
		entries: map[string][]strategies.Entry{
			"2023-03-01": {{Symbol: "GONE", Shares: 10}},
		},
	}

	j := &signalJournal{}
	s, l := newTestScheduler(t, store, strat, j, 5)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, res.MissedSignals)
	assert.Equal(t, 0, l.OpenPositions())
	assert.Empty(t, res.Dropped, "a missed signal is consumed, not requeued")
	assert.Contains(t, j.kinds(), journal.SignalMissed)
}

func TestRun_RejectionAbsorbed(t *testing.T) {
	t.Parallel()

	strat := &scriptStrategy{
		entries: map[string][]strategies.Entry{
			"2023-03-01": {{Symbol: "AAPL", Shares: 1000}}, // ~102,000 against 10,000 cash
		},
	}

	j := &signalJournal{}
	s, l := newTestScheduler(t, threeDayStore(), strat, j, 5)
	res, err := s.Run(context.Background())
	require.NoError(t, err, "rejections never abort the run")

	assert.Equal(t, 1, res.RejectedOrders)
	assert.Equal(t, 0, l.OpenPositions())
	assert.True(t, l.Cash().Equal(dec("10000")))
	assert.Contains(t, j.kinds(), journal.SignalRejected)
}

func TestRun_ExitAtClose(t *testing.T) {
	t.Parallel()

	strat := &scriptStrategy{
		entries: map[string][]strategies.Entry{
			"2023-03-01": {{Symbol: "AAPL", Shares: 10}},
		},
		exits: map[string][]strategies.Exit{
			"2023-03-03": {{Symbol: "AAPL", Shares: 10, Reason: "test exit"}},
		},
	}

	j := &signalJournal{}
	s, l := newTestScheduler(t, threeDayStore(), strat, j, 5)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Trades, 1)
	tr := res.Trades[0]
	assert.True(t, tr.EntryPrice.Equal(dec("102")))
	assert.True(t, tr.ExitPrice.Equal(dec("99")), "exits fill at the same day's close")
	assert.True(t, tr.PnL.Equal(dec("-30")))
	assert.Equal(t, 1, tr.HoldingDays)

	assert.Equal(t, 0, l.OpenPositions())
	assert.True(t, res.FinalEquity.Equal(dec("9970")))
	assert.Contains(t, j.kinds(), journal.SignalExit)
}

func TestRun_ExitSkippedWithoutClose(t *testing.T) {
	t.Parallel()

	store := market.NewStore()
	store.Add(market.Bar{Symbol: "AAPL", Date: day("2023-03-01"), Open: dec("100"), Close: dec("101")})
	store.Add(market.Bar{Symbol: "AAPL", Date: day("2023-03-02"), Open: dec("102"), Close: dec("103")})
	// No AAPL bar on 03-03.

	strat := &scriptStrategy{
		entries: map[string][]strategies.Entry{
			"2023-03-01": {{Symbol: "AAPL", Shares: 10}},
		},
		exits: map[string][]strategies.Exit{
			"2023-03-03": {{Symbol: "AAPL", Shares: 10, Reason: "halted"}},
		},
	}

	j := &signalJournal{}
	s, l := newTestScheduler(t, store, strat, j, 5)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, l.OpenPositions(), "no close, no exit")
	assert.Empty(t, res.Trades)
	assert.Contains(t, j.kinds(), journal.SignalExitSkip)

	// The stale 03-02 mark carries into the final snapshot.
	pos, _ := l.Position("AAPL")
	assert.True(t, pos.Current.Equal(dec("103")))
	assert.Equal(t, day("2023-03-02"), pos.MarkedAt)
}

func TestRun_EntryGenerationSkippedWhenFull(t *testing.T) {
	t.Parallel()

	store := threeDayStore()
	store.Add(market.Bar{Symbol: "MSFT", Date: day("2023-03-02"), Open: dec("200"), Close: dec("201")})
	store.Add(market.Bar{Symbol: "MSFT", Date: day("2023-03-03"), Open: dec("202"), Close: dec("203")})

	strat := &scriptStrategy{
		entries: map[string][]strategies.Entry{
			"2023-03-01": {{Symbol: "AAPL", Shares: 10}},
			"2023-03-02": {{Symbol: "MSFT", Shares: 5}},
		},
	}

	s, l := newTestScheduler(t, store, strat, nil, 1)
	res, err := s.Run(context.Background())
	require.NoError(t, err)

	// AAPL fills on 03-02 and uses the single slot, so the MSFT script
	// line is never consulted.
	assert.Equal(t, 1, l.OpenPositions())
	_, ok := l.Position("MSFT")
	assert.False(t, ok)
	assert.Empty(t, res.Dropped)
	assert.Zero(t, res.MissedSignals)
}

func TestRun_ContextCancelled(t *testing.T) {
	t.Parallel()

	s, _ := newTestScheduler(t, threeDayStore(), &scriptStrategy{}, nil, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_SingleDay(t *testing.T) {
	t.Parallel()

	l, err := ledger.New(dec("10000"), ledger.Costs{}, nil, zerolog.Nop())
	require.NoError(t, err)

	s, err := NewScheduler(Config{
		Start:        day("2023-03-01"),
		End:          day("2023-03-01"),
		MaxPositions: 5,
	}, l, threeDayStore(), &scriptStrategy{}, nil, zerolog.Nop())
	require.NoError(t, err)

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Snapshots, 1)
	assert.True(t, res.FinalEquity.Equal(dec("10000")))
}
