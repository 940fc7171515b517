package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sku-pricing/internal/analysis"
	"sku-pricing/internal/backtest"
	"sku-pricing/internal/data"
	"sku-pricing/internal/model"
	"sku-pricing/internal/strategy"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay pricing strategies over a historical panel",
	Long: `Joins the feature and prediction CSVs into a SKU-day panel, replays
each strategy over it and writes outcomes.csv and strategy_summary.csv.

Examples:
  pricing backtest --features features.csv --predictions predictions.csv
  pricing backtest --panel panel.json --strategy ml --strategy static`,
	RunE: runBacktest,
}

var (
	backtestFeatures    string
	backtestPredictions string
	backtestPanel       string
	backtestOutDir      string
	backtestStrategies  []string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&backtestFeatures, "features", "", "Features CSV (one row per SKU-day)")
	backtestCmd.Flags().StringVar(&backtestPredictions, "predictions", "", "Predictions CSV (predicted_units_sold per SKU-day)")
	backtestCmd.Flags().StringVar(&backtestPanel, "panel", "", "Panel JSON, instead of --features/--predictions")
	backtestCmd.Flags().StringVar(&backtestOutDir, "out-dir", "", "Output directory (default: backtest.out_dir)")
	backtestCmd.Flags().StringSliceVar(&backtestStrategies, "strategy", nil, "Strategies to run (default: backtest.strategies)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	panel, err := loadPanel()
	if err != nil {
		return err
	}

	names := backtestStrategies
	if len(names) == 0 {
		names = cfg.Backtest.Strategies
	}
	engine, err := cfg.Pricing.Engine()
	if err != nil {
		return err
	}
	strats := make([]strategy.Strategy, 0, len(names))
	for _, name := range names {
		s, err := strategy.New(name, engine, cfg.RuleBased.ToRuleParams())
		if err != nil {
			return err
		}
		strats = append(strats, s)
	}

	runner := backtest.New(backtest.WithWorkers(cfg.Backtest.Workers), backtest.WithLogger(logger))
	results, err := runner.RunAll(panel, strats)
	if err != nil {
		return err
	}
	outcomes := backtest.Flatten(results)

	outDir := backtestOutDir
	if outDir == "" {
		outDir = cfg.Backtest.OutDir
	}
	outcomesPath := filepath.Join(outDir, "outcomes.csv")
	if err := backtest.WriteOutcomesCSV(outcomesPath, outcomes); err != nil {
		return err
	}
	fmt.Printf("Wrote %d rows to %s\n", len(outcomes), outcomesPath)

	summaries, err := backtest.Summarize(outcomes)
	if err != nil {
		// Without a static run there is no uplift baseline; outcomes are still useful.
		logger.Warn().Err(err).Msg("skipping strategy summary")
	} else {
		summaryPath := filepath.Join(outDir, "strategy_summary.csv")
		if err := backtest.WriteSummaryCSV(summaryPath, summaries); err != nil {
			return err
		}
		fmt.Printf("Wrote %d strategies to %s\n\n", len(summaries), summaryPath)
		printSummary(analysis.RankByRevenue(summaries))
	}

	printCategories(analysis.CategoryBreakdown(outcomes))
	printPriceChanges(analysis.PriceChangeSummary(outcomes))
	return nil
}

func loadPanel() (model.Panel, error) {
	switch {
	case backtestPanel != "":
		return data.LoadPanelJSON(backtestPanel)
	case backtestFeatures != "" && backtestPredictions != "":
		return data.LoadPanelCSV(backtestFeatures, backtestPredictions)
	default:
		return nil, fmt.Errorf("either --panel or both --features and --predictions are required")
	}
}

func printSummary(ranked []analysis.RankedStrategy) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "rank\tstrategy\trows\ttotal_revenue\tavg_revenue\tunits\tstockout_rate\tuplift_pct")
	for _, r := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%d\t%.2f\t%.2f\t%.1f\t%.4f\t%.2f\n",
			r.Rank, r.Strategy, r.Rows, r.TotalRevenue, r.AvgRevenuePerSKUDay,
			r.TotalUnitsSold, r.StockoutRate, r.RevenueUpliftPct)
	}
	w.Flush()
	fmt.Println()
}

func printCategories(stats []analysis.CategoryStats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "category\tstrategy\trows\ttotal_revenue\tstockout_rate\tavg_price")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%.4f\t%.2f\n",
			s.Category, s.Strategy, s.Rows, s.TotalRevenue, s.StockoutRate, s.AvgPrice)
	}
	w.Flush()
	fmt.Println()
}

func printPriceChanges(stats []analysis.PriceChangeStats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "strategy\tchanges\tmean_pct\tp95_abs_pct\tmax_abs_pct")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.2f\n",
			s.Strategy, s.Count, s.MeanChangePct, s.P95AbsPct, s.MaxAbsPct)
	}
	w.Flush()
}
