package analysis

import (
	"sort"

	"sku-pricing/internal/backtest"
	"sku-pricing/internal/model"
)

type CategoryStats struct {
	Category     model.Category `json:"category"`
	Strategy     string         `json:"strategy"`
	Rows         int            `json:"rows"`
	TotalRevenue float64        `json:"total_revenue"`
	StockoutRate float64        `json:"stockout_rate"`
	AvgPrice     float64        `json:"avg_price"`
}

type categoryKey struct {
	category model.Category
	strategy string
}

// CategoryBreakdown aggregates outcomes per (category, strategy), sorted by
// category then strategy.
func CategoryBreakdown(outcomes []backtest.Outcome) []CategoryStats {
	acc := map[categoryKey]*CategoryStats{}
	stockouts := map[categoryKey]int{}
	priceSum := map[categoryKey]float64{}

	for _, o := range outcomes {
		k := categoryKey{category: o.Category, strategy: o.Strategy}
		s, ok := acc[k]
		if !ok {
			s = &CategoryStats{Category: o.Category, Strategy: o.Strategy}
			acc[k] = s
		}
		s.Rows++
		s.TotalRevenue += o.Revenue
		priceSum[k] += o.Price
		if o.Stockout {
			stockouts[k]++
		}
	}

	out := make([]CategoryStats, 0, len(acc))
	for k, s := range acc {
		s.StockoutRate = float64(stockouts[k]) / float64(s.Rows)
		s.AvgPrice = priceSum[k] / float64(s.Rows)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}
