package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sku-pricing/internal/data"
	"sku-pricing/internal/job"
	"sku-pricing/internal/model"
	"sku-pricing/internal/store"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Daily pricing job",
}

var jobRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Price every SKU with stored inputs for one day",
	Long: `Reads the day's feature snapshots from the store, applies any active
operator override and persists one decision per SKU.

Example:
  pricing job run --date 2024-03-01 --db pricing.db`,
	RunE: runJob,
}

var jobIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load a feature/prediction panel into the store",
	Long: `Joins the feature and prediction CSVs and stores every row as a feature
snapshot, so later job runs can price those days.

Example:
  pricing job ingest --features features.csv --predictions predictions.csv --db pricing.db`,
	RunE: runIngest,
}

var (
	jobDate        string
	jobDB          string
	jobFeatures    string
	jobPredictions string
)

func init() {
	rootCmd.AddCommand(jobCmd)
	jobCmd.AddCommand(jobRunCmd, jobIngestCmd)

	jobCmd.PersistentFlags().StringVar(&jobDB, "db", "", "SQLite database path (default: store.path)")

	jobRunCmd.Flags().StringVar(&jobDate, "date", "", "Pricing day (YYYY-MM-DD)")
	_ = jobRunCmd.MarkFlagRequired("date")

	jobIngestCmd.Flags().StringVar(&jobFeatures, "features", "", "Features CSV")
	jobIngestCmd.Flags().StringVar(&jobPredictions, "predictions", "", "Predictions CSV")
	_ = jobIngestCmd.MarkFlagRequired("features")
	_ = jobIngestCmd.MarkFlagRequired("predictions")
}

func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	path := jobDB
	if path == "" {
		path = cfg.Store.Path
	}
	st, err := store.NewSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func runJob(cmd *cobra.Command, args []string) error {
	day, err := model.ParseDate(jobDate)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	engine, err := cfg.Pricing.Engine()
	if err != nil {
		return err
	}
	runner, err := job.NewRunner(st, engine, cfg.RuleBased.ToRuleParams(), job.WithLogger(logger))
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx, day)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Printf("No inputs for %s; nothing priced\n", day)
		return nil
	}
	override := string(res.Override)
	if override == "" {
		override = "none"
	}
	fmt.Printf("Priced %d SKUs for %s with %s (override: %s)\n", res.Decisions, day, res.Strategy, override)
	return nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	panel, err := data.LoadPanelCSV(jobFeatures, jobPredictions)
	if err != nil {
		return err
	}
	if err := panel.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.SaveFeatureSnapshots(ctx, panel); err != nil {
		return err
	}
	fmt.Printf("Stored %d feature snapshots\n", len(panel))
	return nil
}
