package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"sku-pricing/internal/config"
	"sku-pricing/internal/logging"
	"sku-pricing/internal/model"
	"sku-pricing/internal/pricing"
)

type scenario struct {
	name string
	note string
	row  model.PanelRow
}

// Demo:
// - Build three SKU-days that exercise the engine's guardrails
// - Price each with the configured thresholds
// - Print every candidate and the decision
func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	asJSON := flag.Bool("json", false, "Print decisions as JSON")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logging.NewWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	engine, err := cfg.Pricing.Engine()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid pricing config")
	}

	for _, sc := range scenarios() {
		d := engine.Decide(sc.row)
		if *asJSON {
			b, err := json.Marshal(struct {
				Scenario string `json:"scenario"`
				model.Decision
			}{sc.name, d})
			if err != nil {
				log.Fatal().Err(err).Msg("encode decision")
			}
			fmt.Println(string(b))
			continue
		}

		fmt.Printf("Scenario %s: %s\n", sc.name, sc.note)
		fmt.Printf("  %-8s %-10s %-10s %-8s\n", "price", "units", "revenue", "feasible")
		for _, ev := range engine.Evaluate(pricing.InputFromRow(sc.row)) {
			fmt.Printf("  %-8.2f %-10.1f %-10.2f %-8t\n", ev.Price, ev.ExpectedUnitsSold, ev.ExpectedRevenue, ev.Feasible)
		}
		fmt.Printf("  -> final_price=%.2f reason=%s", d.FinalPrice, d.Reason)
		if d.ExpectedRevenue != nil {
			fmt.Printf(" expected_revenue=%.2f", *d.ExpectedRevenue)
		}
		fmt.Print("\n\n")
	}
}

func scenarios() []scenario {
	base := model.PanelRow{
		Date:               model.NewDate(time.Now()),
		ProductID:          "SKU_001",
		PrevPrice:          100,
		CostPrice:          70,
		MinMarginPct:       0.15,
		Category:           model.CategoryGrocery,
		PredictedUnitsSold: 20,
		PrevInventory:      300,
		SalesRollMean7:     20,
		ClearanceDays:      30,
	}

	clearance := base
	clearance.ProductID = "SKU_002"
	clearance.ClearanceDays = 10

	scarce := base
	scarce.ProductID = "SKU_003"
	scarce.PrevInventory = 40

	return []scenario{
		{name: "A", note: "elastic grocery SKU with ample stock", row: base},
		{name: "B", note: "near expiry, markups blocked", row: clearance},
		{name: "C", note: "low stock, every candidate breaches the buffer", row: scarce},
	}
}
