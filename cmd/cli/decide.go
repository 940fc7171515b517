package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sku-pricing/internal/model"
	"sku-pricing/internal/pricing"
)

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Price a single SKU-day and print the decision as JSON",
	Long: `Runs the decision engine on one SKU-day given on the command line.

Example:
  pricing decide --prev-price 100 --cost-price 70 --category grocery \
    --predicted-units 20 --inventory 300 --sales-roll-mean-7 20 --clearance-days 30`,
	RunE: runDecide,
}

var (
	decideRow        model.PanelRow
	decideCategory   string
	decideCandidates bool
)

func init() {
	rootCmd.AddCommand(decideCmd)

	f := decideCmd.Flags()
	f.StringVar(&decideRow.ProductID, "product-id", "SKU", "Product id")
	f.Float64Var(&decideRow.PrevPrice, "prev-price", 0, "Yesterday's price")
	f.Float64Var(&decideRow.CostPrice, "cost-price", 0, "Unit cost")
	f.Float64Var(&decideRow.MinMarginPct, "min-margin-pct", 0.15, "Row-level minimum margin (fraction)")
	f.StringVar(&decideCategory, "category", "", "Product category (grocery|personal_care|stationery|home)")
	f.Float64Var(&decideRow.PredictedUnitsSold, "predicted-units", 0, "Forecast units sold at yesterday's price")
	f.IntVar(&decideRow.PrevInventory, "inventory", 0, "Inventory at the start of the day")
	f.Float64Var(&decideRow.SalesRollMean7, "sales-roll-mean-7", 0, "7-day rolling mean of units sold")
	f.IntVar(&decideRow.ClearanceDays, "clearance-days", 30, "Days until the SKU must clear")
	f.BoolVar(&decideCandidates, "candidates", false, "Include every evaluated candidate")
	_ = decideCmd.MarkFlagRequired("prev-price")
	_ = decideCmd.MarkFlagRequired("cost-price")
}

func runDecide(cmd *cobra.Command, args []string) error {
	row := decideRow
	row.Date = model.NewDate(time.Now())
	row.Category = model.Category(decideCategory)
	if err := row.Validate(); err != nil {
		return err
	}

	engine, err := cfg.Pricing.Engine()
	if err != nil {
		return err
	}

	out := struct {
		model.Decision
		Candidates []pricing.Evaluation `json:"candidates,omitempty"`
	}{Decision: engine.Decide(row)}
	if decideCandidates {
		out.Candidates = engine.Evaluate(pricing.InputFromRow(row))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
