package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "backcast",
	Short: "A day-by-day stock backtesting engine",
	Long: `Backcast replays trading strategies against historical daily data.

It provides tools for:
  - Running next-day-open backtests free of look-ahead bias
  - Exact-decimal portfolio accounting with slippage and commissions
  - Journaling fills, trades and equity curves to CSV, SQLite or JSONL
  - Return, risk and trade statistics over the resulting history`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
