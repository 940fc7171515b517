package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sku-pricing/internal/config"
	"sku-pricing/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
)

// rootCmd is the base command for the pricing CLI
var rootCmd = &cobra.Command{
	Use:   "pricing",
	Short: "SKU daily pricing engine and backtester",
	Long: `Prices SKUs day by day from a demand forecast, replays pricing
strategies over historical panels, and runs the daily pricing job.

Examples:
  pricing backtest --features data/features.csv --predictions data/predictions.csv
  pricing decide --prev-price 100 --cost-price 70 --predicted-units 20 --inventory 300
  pricing job run --date 2024-03-01 --db pricing.db`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		// stdout carries command output; logs go to stderr.
		logger = logging.NewWriter(os.Stderr, level, cfg.Log.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (default: built-in thresholds)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug|info|warn|error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
