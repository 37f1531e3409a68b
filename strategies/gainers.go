package strategies

import (
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"backcast/ledger"
	"backcast/market"
)

// GainersConfig drives the highest-gainer strategy: buy the strongest
// one-day (or lookback-day) movers, exit on a gain target, a stop loss,
// or a holding-period limit.
type GainersConfig struct {
	GainTargetPct  decimal.Decimal // sell when unrealized gain reaches this
	StopLossPct    decimal.Decimal // sell when loss reaches this; zero disables
	MaxHoldingDays int             // zero disables

	MinPrice  decimal.Decimal
	MaxPrice  decimal.Decimal // zero disables
	MinVolume int64           // zero disables

	LookbackDays int // gain measured over this many calendar days back
	BuysPerDay   int // candidates queued per day
}

func GainersDefaults() GainersConfig {
	return GainersConfig{
		GainTargetPct: decimal.NewFromFloat(5.0),
		MinPrice:      decimal.NewFromFloat(5.0),
		LookbackDays:  1,
		BuysPerDay:    1,
	}
}

// Gainers buys the top daily gainers from the tradable universe. Entries
// are sized by an equal cash split across the day's candidates; the
// ledger's position-size cap still applies at execution.
type Gainers struct {
	cfg  GainersConfig
	bars market.BarReader
	uni  market.Universe
	log  zerolog.Logger

	// Symbols seen held during the day's exit pass; entry generation
	// skips them so we don't pyramid into the same name.
	held map[string]bool
}

func NewGainers(cfg GainersConfig, bars market.BarReader, uni market.Universe, log zerolog.Logger) *Gainers {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 1
	}
	if cfg.BuysPerDay <= 0 {
		cfg.BuysPerDay = 1
	}
	return &Gainers{
		cfg:  cfg,
		bars: bars,
		uni:  uni,
		log:  log,
		held: make(map[string]bool),
	}
}

func (g *Gainers) EvaluateExits(date time.Time, positions []ledger.Position) []Exit {
	g.held = make(map[string]bool, len(positions))

	var exits []Exit
	for _, pos := range positions {
		g.held[pos.Symbol] = true

		pct := pos.UnrealizedPct()

		switch {
		case pct.GreaterThanOrEqual(g.cfg.GainTargetPct):
			exits = append(exits, Exit{
				Symbol: pos.Symbol,
				Shares: pos.Shares,
				Reason: "gain target " + pct.StringFixed(2) + "%",
			})

		case g.cfg.StopLossPct.IsPositive() && pct.LessThanOrEqual(g.cfg.StopLossPct.Neg()):
			exits = append(exits, Exit{
				Symbol: pos.Symbol,
				Shares: pos.Shares,
				Reason: "stop loss " + pct.StringFixed(2) + "%",
			})

		case g.cfg.MaxHoldingDays > 0 && pos.HoldingDays(date) >= g.cfg.MaxHoldingDays:
			exits = append(exits, Exit{
				Symbol: pos.Symbol,
				Shares: pos.Shares,
				Reason: "max holding days",
			})
		}
	}
	return exits
}

type candidate struct {
	symbol string
	close  decimal.Decimal
	gain   decimal.Decimal
}

func (g *Gainers) GenerateEntries(date time.Time, cash decimal.Decimal, openSlots int) []Entry {
	if openSlots <= 0 || !cash.IsPositive() {
		return nil
	}

	var cands []candidate
	for _, sym := range g.uni.Symbols(date) {
		if g.held[sym] {
			continue
		}

		bar, ok := g.bars.Bar(sym, date)
		if !ok {
			continue
		}
		if bar.Close.LessThan(g.cfg.MinPrice) {
			continue
		}
		if g.cfg.MaxPrice.IsPositive() && bar.Close.GreaterThan(g.cfg.MaxPrice) {
			continue
		}
		if g.cfg.MinVolume > 0 && bar.Volume < g.cfg.MinVolume {
			continue
		}

		prior, ok := g.priorClose(sym, date)
		if !ok || !prior.IsPositive() {
			continue
		}

		gain := bar.Close.Sub(prior).Div(prior).Mul(decimal.NewFromInt(100))
		cands = append(cands, candidate{symbol: sym, close: bar.Close, gain: gain})
	}

	if len(cands) == 0 {
		return nil
	}

	sort.Slice(cands, func(i, j int) bool {
		if !cands[i].gain.Equal(cands[j].gain) {
			return cands[i].gain.GreaterThan(cands[j].gain)
		}
		return cands[i].symbol < cands[j].symbol
	})

	n := g.cfg.BuysPerDay
	if n > openSlots {
		n = openSlots
	}
	if n > len(cands) {
		n = len(cands)
	}

	cashPer := cash.Div(decimal.NewFromInt(int64(n)))

	var entries []Entry
	for _, c := range cands[:n] {
		shares := cashPer.Div(c.close).IntPart()
		if shares <= 0 {
			continue
		}
		entries = append(entries, Entry{Symbol: c.symbol, Shares: shares})

		g.log.Debug().
			Str("symbol", c.symbol).
			Str("gain", c.gain.StringFixed(2)).
			Int64("shares", shares).
			Msg("entry candidate")
	}
	return entries
}

// priorClose finds the most recent close before date, scanning past
// weekends and data holes with a few days of grace.
func (g *Gainers) priorClose(symbol string, date time.Time) (decimal.Decimal, bool) {
	day := market.Day(date)
	for i := 0; i < g.cfg.LookbackDays+4; i++ {
		day = day.AddDate(0, 0, -1)
		if bar, ok := g.bars.Bar(symbol, day); ok {
			return bar.Close, true
		}
	}
	return decimal.Decimal{}, false
}
