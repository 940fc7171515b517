package backtest

import "sku-pricing/internal/model"

// Outcome is one simulated SKU-day for one strategy.
// This is the primary artifact for "what happened" in a backtest.
type Outcome struct {
	Index int `json:"index"`

	Date      model.Date     `json:"date"`
	ProductID string         `json:"product_id"`
	Category  model.Category `json:"category"`
	Strategy  string         `json:"strategy"`

	PrevPrice      float64 `json:"prev_price"`
	Price          float64 `json:"price"`
	PriorInventory int     `json:"prior_inventory"`

	UnitsSold float64 `json:"units_sold"`
	Revenue   float64 `json:"revenue"`
	Stockout  bool    `json:"stockout"`
}

type Result struct {
	Strategy     string    `json:"strategy"`
	Outcomes     []Outcome `json:"outcomes"`
	TotalRevenue float64   `json:"total_revenue"`
}

// Simulate prices one row. The forecast is treated as realized demand and
// inventory is taken from the row, not carried over from earlier days.
func Simulate(index int, row model.PanelRow, strategy string, price float64) Outcome {
	units := model.UnitsSold(row.PredictedUnitsSold, row.PrevInventory)
	return Outcome{
		Index:          index,
		Date:           row.Date,
		ProductID:      row.ProductID,
		Category:       row.CategoryOrUnknown(),
		Strategy:       strategy,
		PrevPrice:      row.PrevPrice,
		Price:          price,
		PriorInventory: row.PrevInventory,
		UnitsSold:      units,
		Revenue:        price * units,
		Stockout:       model.IsStockout(units, row.PrevInventory),
	}
}

// Flatten concatenates the outcomes of several runs.
func Flatten(results []*Result) []Outcome {
	n := 0
	for _, r := range results {
		n += len(r.Outcomes)
	}
	out := make([]Outcome, 0, n)
	for _, r := range results {
		out = append(out, r.Outcomes...)
	}
	return out
}
