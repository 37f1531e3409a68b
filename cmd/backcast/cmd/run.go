package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"backcast/backtest"
	"backcast/config"
	"backcast/internal/id"
	"backcast/journal"
	"backcast/ledger"
	"backcast/market"
	"backcast/metrics"
	"backcast/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a backtest",
	Long: `Run replays a strategy against a daily-bar CSV dataset.

The prices file contains rows of the form:

  date,symbol,open,close[,volume]

Entry signals queue on the day they are generated and execute at the
NEXT day's opening price.

Example:
  backcast run -c backtest.yaml --report results.org`,
	RunE: runBacktest,
}

var (
	runConfigPath string
	runPricesPath string
	runReportPath string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML/JSON config (defaults used when empty)")
	runCmd.Flags().StringVarP(&runPricesPath, "prices", "p", "", "path to daily-bar CSV (overrides config)")
	runCmd.Flags().StringVar(&runReportPath, "report", "", "write an org-mode run report to this path")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if runPricesPath != "" {
		cfg.Data.PricesFile = runPricesPath
	}

	start, err := cfg.Backtest.Start()
	if err != nil {
		return err
	}
	end, err := cfg.Backtest.End()
	if err != nil {
		return err
	}

	store, err := market.LoadCSV(cfg.Data.PricesFile, start, end)
	if err != nil {
		return fmt.Errorf("load prices: %w", err)
	}

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	costs := ledger.Costs{
		SlippagePct:    decimal.NewFromFloat(cfg.Backtest.SlippagePct),
		CommissionFlat: decimal.NewFromFloat(cfg.Backtest.CommissionPerTrade),
		CommissionPct:  decimal.NewFromFloat(cfg.Backtest.CommissionPct),
		MaxPositionPct: decimal.NewFromFloat(cfg.Backtest.MaxPositionSizePct),
	}

	led, err := ledger.New(cfg.Backtest.Cash(), costs, j, log)
	if err != nil {
		return err
	}

	strat, err := strategies.ByName(cfg.Strategy.Name, strategyParams(cfg.Strategy), store, store, log)
	if err != nil {
		return err
	}

	sched, err := backtest.NewScheduler(backtest.Config{
		Start:        start,
		End:          end,
		MaxPositions: cfg.Backtest.MaxPositions,
	}, led, store, strat, j, log)
	if err != nil {
		return err
	}

	runner := &backtest.Runner{Scheduler: sched, RiskFreeRate: cfg.Backtest.RiskFreeRate}
	res, sum, err := runner.Run(context.Background())
	if err != nil {
		return err
	}

	printSummary(res, sum)

	if runReportPath != "" {
		rep := buildReport(cfg, res, sum)
		rep.OrgPath = runReportPath
		if err := rep.WriteOrg(); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info().Str("path", runReportPath).Msg("report written")
	}

	return nil
}

func strategyParams(s config.StrategyConfig) strategies.Params {
	return strategies.Params{
		Gainers:   gainersConfig(s),
		Crossover: crossoverConfig(s),
	}
}

func crossoverConfig(s config.StrategyConfig) strategies.CrossoverConfig {
	cfg := strategies.CrossoverDefaults()
	if s.FastPeriod > 0 {
		cfg.FastPeriod = s.FastPeriod
	}
	if s.SlowPeriod > 0 {
		cfg.SlowPeriod = s.SlowPeriod
	}
	if s.MinPrice > 0 {
		cfg.MinPrice = decimal.NewFromFloat(s.MinPrice)
	}
	if s.BuysPerDay > 0 {
		cfg.BuysPerDay = s.BuysPerDay
	}
	return cfg
}

func gainersConfig(s config.StrategyConfig) strategies.GainersConfig {
	cfg := strategies.GainersDefaults()
	if s.GainTargetPct > 0 {
		cfg.GainTargetPct = decimal.NewFromFloat(s.GainTargetPct)
	}
	if s.StopLossPct > 0 {
		cfg.StopLossPct = decimal.NewFromFloat(s.StopLossPct)
	}
	cfg.MaxHoldingDays = s.MaxHoldingDays
	if s.MinPrice > 0 {
		cfg.MinPrice = decimal.NewFromFloat(s.MinPrice)
	}
	if s.MaxPrice > 0 {
		cfg.MaxPrice = decimal.NewFromFloat(s.MaxPrice)
	}
	cfg.MinVolume = s.MinVolume
	if s.LookbackDays > 0 {
		cfg.LookbackDays = s.LookbackDays
	}
	if s.BuysPerDay > 0 {
		cfg.BuysPerDay = s.BuysPerDay
	}
	return cfg
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(jc.OrdersFile, jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "jsonl":
		return journal.NewJSONL(jc.EventsFile)
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}

func printSummary(res backtest.Result, sum metrics.Summary) {
	fmt.Println()
	fmt.Println("BACKTEST RESULTS")
	fmt.Println("================")
	fmt.Printf("Period:          %s to %s (%d days)\n",
		res.Start.Format("2006-01-02"), res.End.Format("2006-01-02"), sum.DaysTraded)
	fmt.Printf("Initial Capital: %s\n", sum.InitialCapital.StringFixed(2))
	fmt.Printf("Final Capital:   %s\n", sum.FinalCapital.StringFixed(2))
	fmt.Println()
	fmt.Printf("Total Return:    %s (%.2f%%)\n", sum.TotalReturn.StringFixed(2), sum.TotalReturnPct)
	fmt.Printf("CAGR:            %.2f%%\n", sum.CAGR)
	fmt.Printf("Sharpe Ratio:    %.2f\n", sum.SharpeRatio)
	fmt.Printf("Sortino Ratio:   %.2f\n", sum.SortinoRatio)
	fmt.Printf("Max Drawdown:    %.2f%% (%d days)\n", sum.MaxDrawdownPct, sum.MaxDrawdownDays)
	fmt.Println()
	fmt.Printf("Trades:          %d (%dW / %dL)\n", sum.TotalTrades, sum.WinningTrades, sum.LosingTrades)
	fmt.Printf("Win Rate:        %.2f%%\n", sum.WinRate)
	fmt.Printf("Profit Factor:   %.2f\n", sum.ProfitFactor)
	fmt.Printf("Avg Gain/Loss:   %.2f%% / %.2f%%\n", sum.AvgGainPct, sum.AvgLossPct)
	fmt.Printf("Avg Holding:     %.1f days\n", sum.AvgHoldingDays)
	fmt.Println()
	fmt.Printf("Dropped Signals: %d\n", len(res.Dropped))
	fmt.Printf("Missed Signals:  %d\n", res.MissedSignals)
	fmt.Printf("Rejected Orders: %d\n", res.RejectedOrders)
	fmt.Println()
}

func buildReport(cfg *config.Config, res backtest.Result, sum metrics.Summary) *journal.RunReport {
	return &journal.RunReport{
		RunID:    id.New(),
		Created:  time.Now(),
		Strategy: cfg.Strategy.Name,
		Dataset:  cfg.Data.PricesFile,

		Start: res.Start,
		End:   res.End,

		InitialCapital:  sum.InitialCapital.StringFixed(2),
		FinalCapital:    sum.FinalCapital.StringFixed(2),
		TotalReturn:     sum.TotalReturn.StringFixed(2),
		TotalReturnPct:  sum.TotalReturnPct,
		CAGR:            sum.CAGR,
		SharpeRatio:     sum.SharpeRatio,
		SortinoRatio:    sum.SortinoRatio,
		MaxDrawdownPct:  sum.MaxDrawdownPct,
		MaxDrawdownDays: sum.MaxDrawdownDays,

		Trades:         sum.TotalTrades,
		Wins:           sum.WinningTrades,
		Losses:         sum.LosingTrades,
		WinRate:        sum.WinRate,
		ProfitFactor:   sum.ProfitFactor,
		AvgHoldingDays: sum.AvgHoldingDays,

		DroppedSignals: len(res.Dropped),
		RejectedOrders: res.RejectedOrders,
	}
}
