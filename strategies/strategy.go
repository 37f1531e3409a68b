package strategies

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"backcast/ledger"
	"backcast/market"
)

// Exit is a sell instruction for a currently held position.
type Exit struct {
	Symbol string
	Shares int64
	Reason string
}

// Entry is a buy candidate. It executes at the NEXT day's open, never the
// same day; the scheduler owns that deferral.
type Entry struct {
	Symbol string
	Shares int64
}

// Strategy is the narrow port the scheduler calls into, once per trading
// day for each operation. Implementations must only read prices dated
// today or earlier.
type Strategy interface {
	EvaluateExits(date time.Time, positions []ledger.Position) []Exit
	GenerateEntries(date time.Time, cash decimal.Decimal, openSlots int) []Entry
}

var registry = make(map[string]Strategy)

func Register(name string, strat Strategy) {
	registry[name] = strat
}

func Get(name string) Strategy {
	return registry[name]
}

// Params carries the per-strategy tuning; only the block matching the
// requested name is read.
type Params struct {
	Gainers   GainersConfig
	Crossover CrossoverConfig
}

// ByName builds one of the bundled strategies.
func ByName(name string, p Params, bars market.BarReader, uni market.Universe, log zerolog.Logger) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return Noop{}, nil

	case "gainers", "highest-gainer":
		return NewGainers(p.Gainers, bars, uni, log), nil

	case "crossover", "emacross":
		return NewCrossover(p.Crossover, bars, uni, log), nil

	default:
		if s := Get(name); s != nil {
			return s, nil
		}
		return nil, fmt.Errorf("unknown strategy %q (supported: noop, gainers, crossover)", name)
	}
}
