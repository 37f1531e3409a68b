package strategies

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"backcast/indicators"
	"backcast/ledger"
	"backcast/market"
)

// CrossoverConfig drives the EMA crossover strategy: enter when the fast
// average crosses above the slow one, exit the day it crosses back
// below.
type CrossoverConfig struct {
	FastPeriod int
	SlowPeriod int

	MinPrice   decimal.Decimal
	BuysPerDay int
}

func CrossoverDefaults() CrossoverConfig {
	return CrossoverConfig{
		FastPeriod: 12,
		SlowPeriod: 26,
		MinPrice:   decimal.NewFromFloat(5.0),
		BuysPerDay: 1,
	}
}

// Crossover keeps one fast/slow EMA pair per symbol, fed one close per
// trading day. The exit pass performs the day's indicator update for the
// whole universe; entry generation reads the crossings it found.
type Crossover struct {
	cfg  CrossoverConfig
	bars market.BarReader
	uni  market.Universe
	log  zerolog.Logger

	crosses map[string]*indicators.Cross
	held    map[string]bool
	signals map[string]indicators.CrossSignal
	closes  map[string]decimal.Decimal
}

func NewCrossover(cfg CrossoverConfig, bars market.BarReader, uni market.Universe, log zerolog.Logger) *Crossover {
	if cfg.FastPeriod <= 0 {
		cfg.FastPeriod = 12
	}
	if cfg.SlowPeriod <= cfg.FastPeriod {
		cfg.SlowPeriod = cfg.FastPeriod * 2
	}
	if cfg.BuysPerDay <= 0 {
		cfg.BuysPerDay = 1
	}
	return &Crossover{
		cfg:     cfg,
		bars:    bars,
		uni:     uni,
		log:     log,
		crosses: make(map[string]*indicators.Cross),
		held:    make(map[string]bool),
	}
}

func (c *Crossover) cross(symbol string) *indicators.Cross {
	x, ok := c.crosses[symbol]
	if !ok {
		x = indicators.NewCross(
			indicators.NewEMA(c.cfg.FastPeriod),
			indicators.NewEMA(c.cfg.SlowPeriod),
		)
		c.crosses[symbol] = x
	}
	return x
}

func (c *Crossover) EvaluateExits(date time.Time, positions []ledger.Position) []Exit {
	// One indicator update per symbol per day, using today's close.
	c.signals = make(map[string]indicators.CrossSignal)
	c.closes = make(map[string]decimal.Decimal)
	for _, sym := range c.uni.Symbols(date) {
		bar, ok := c.bars.Bar(sym, date)
		if !ok {
			continue
		}
		f, _ := bar.Close.Float64()
		c.signals[sym] = c.cross(sym).Update(f)
		c.closes[sym] = bar.Close
	}

	c.held = make(map[string]bool, len(positions))

	var exits []Exit
	for _, pos := range positions {
		c.held[pos.Symbol] = true
		if c.signals[pos.Symbol] == indicators.CrossDown {
			exits = append(exits, Exit{
				Symbol: pos.Symbol,
				Shares: pos.Shares,
				Reason: fmt.Sprintf("EMA(%d) crossed below EMA(%d)", c.cfg.FastPeriod, c.cfg.SlowPeriod),
			})
		}
	}
	return exits
}

func (c *Crossover) GenerateEntries(date time.Time, cash decimal.Decimal, openSlots int) []Entry {
	if openSlots <= 0 || !cash.IsPositive() {
		return nil
	}

	var ups []string
	for sym, sig := range c.signals {
		if sig != indicators.CrossUp || c.held[sym] {
			continue
		}
		if c.closes[sym].LessThan(c.cfg.MinPrice) {
			continue
		}
		ups = append(ups, sym)
	}
	if len(ups) == 0 {
		return nil
	}
	sort.Strings(ups)

	n := c.cfg.BuysPerDay
	if n > openSlots {
		n = openSlots
	}
	if n > len(ups) {
		n = len(ups)
	}

	cashPer := cash.Div(decimal.NewFromInt(int64(n)))

	var entries []Entry
	for _, sym := range ups[:n] {
		shares := cashPer.Div(c.closes[sym]).IntPart()
		if shares <= 0 {
			continue
		}
		entries = append(entries, Entry{Symbol: sym, Shares: shares})

		c.log.Debug().
			Str("symbol", sym).
			Int64("shares", shares).
			Msg("crossover entry")
	}
	return entries
}
