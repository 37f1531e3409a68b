package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Config represents a complete backtest run configuration. It is
// validated once, before the run starts, and is immutable for the run's
// duration: the engine never sees an invalid or changing configuration.
type Config struct {
	Backtest BacktestConfig `json:"backtest" yaml:"backtest"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Data     DataConfig     `json:"data" yaml:"data"`
}

// BacktestConfig contains the engine parameters.
type BacktestConfig struct {
	StartDate string `json:"start_date" yaml:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date" yaml:"end_date"`

	InitialCash float64 `json:"initial_cash" yaml:"initial_cash"`

	MaxPositions       int     `json:"max_positions" yaml:"max_positions"`
	MaxPositionSizePct float64 `json:"max_position_size_pct" yaml:"max_position_size_pct"`

	SlippagePct        float64 `json:"slippage_pct" yaml:"slippage_pct"`
	CommissionPerTrade float64 `json:"commission_per_trade" yaml:"commission_per_trade"`
	CommissionPct      float64 `json:"commission_pct" yaml:"commission_pct"`

	RiskFreeRate float64 `json:"risk_free_rate" yaml:"risk_free_rate"` // annual, 0.04 = 4%
}

// StrategyConfig contains strategy parameters.
type StrategyConfig struct {
	Name string `json:"name" yaml:"name"`

	GainTargetPct  float64 `json:"gain_target_pct" yaml:"gain_target_pct"`
	StopLossPct    float64 `json:"stop_loss_pct,omitempty" yaml:"stop_loss_pct,omitempty"`
	MaxHoldingDays int     `json:"max_holding_days,omitempty" yaml:"max_holding_days,omitempty"`

	MinPrice  float64 `json:"min_price,omitempty" yaml:"min_price,omitempty"`
	MaxPrice  float64 `json:"max_price,omitempty" yaml:"max_price,omitempty"`
	MinVolume int64   `json:"min_volume,omitempty" yaml:"min_volume,omitempty"`

	LookbackDays int `json:"lookback_days,omitempty" yaml:"lookback_days,omitempty"`
	BuysPerDay   int `json:"buys_per_day,omitempty" yaml:"buys_per_day,omitempty"`

	// Crossover strategy only.
	FastPeriod int `json:"fast_period,omitempty" yaml:"fast_period,omitempty"`
	SlowPeriod int `json:"slow_period,omitempty" yaml:"slow_period,omitempty"`
}

// JournalConfig selects the event-stream backends.
type JournalConfig struct {
	Type string `json:"type" yaml:"type"` // "none", "csv", "sqlite" or "jsonl"

	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	EventsFile string `json:"events_file,omitempty" yaml:"events_file,omitempty"`
}

// DataConfig locates the price data.
type DataConfig struct {
	PricesFile string `json:"prices_file" yaml:"prices_file"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file, choosing the format by
// extension (.yaml/.yml = YAML, otherwise JSON).
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration before a run. Configuration errors
// are rejected here, never surfaced mid-simulation.
func (c *Config) Validate() error {
	start, err := c.Backtest.Start()
	if err != nil {
		return fmt.Errorf("backtest.start_date: %w", err)
	}
	end, err := c.Backtest.End()
	if err != nil {
		return fmt.Errorf("backtest.end_date: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("backtest.end_date %s before start_date %s", c.Backtest.EndDate, c.Backtest.StartDate)
	}
	if c.Backtest.InitialCash <= 0 {
		return fmt.Errorf("backtest.initial_cash must be positive")
	}
	if c.Backtest.MaxPositions <= 0 {
		return fmt.Errorf("backtest.max_positions must be positive")
	}
	if c.Backtest.MaxPositionSizePct <= 0 || c.Backtest.MaxPositionSizePct > 100 {
		return fmt.Errorf("backtest.max_position_size_pct must be in (0, 100]")
	}
	if c.Backtest.SlippagePct < 0 || c.Backtest.SlippagePct >= 100 {
		return fmt.Errorf("backtest.slippage_pct must be in [0, 100)")
	}
	if c.Backtest.CommissionPerTrade < 0 {
		return fmt.Errorf("backtest.commission_per_trade must not be negative")
	}
	if c.Backtest.CommissionPct < 0 || c.Backtest.CommissionPct >= 100 {
		return fmt.Errorf("backtest.commission_pct must be in [0, 100)")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal orders_file, trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "jsonl":
		if c.Journal.EventsFile == "" {
			return fmt.Errorf("journal events_file required for JSONL type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv', 'sqlite' or 'jsonl'")
	}
	return nil
}

// Start returns the parsed start date (midnight UTC).
func (b BacktestConfig) Start() (time.Time, error) {
	return time.Parse(dateLayout, b.StartDate)
}

// End returns the parsed end date (midnight UTC).
func (b BacktestConfig) End() (time.Time, error) {
	return time.Parse(dateLayout, b.EndDate)
}

// Cash returns the initial cash as an exact decimal.
func (b BacktestConfig) Cash() decimal.Decimal {
	return decimal.NewFromFloat(b.InitialCash)
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Backtest: BacktestConfig{
			StartDate:          "2023-01-02",
			EndDate:            "2023-12-29",
			InitialCash:        50000,
			MaxPositions:       10,
			MaxPositionSizePct: 20,
			SlippagePct:        0.1,
			CommissionPerTrade: 0,
			CommissionPct:      0,
			RiskFreeRate:       0.04,
		},
		Strategy: StrategyConfig{
			Name:          "gainers",
			GainTargetPct: 5.0,
			MinPrice:      5.0,
			LookbackDays:  1,
			BuysPerDay:    1,
		},
		Journal: JournalConfig{
			Type:       "csv",
			OrdersFile: "./orders.csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Data: DataConfig{
			PricesFile: "./prices.csv",
		},
	}
}
