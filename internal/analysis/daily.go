package analysis

import (
	"sort"

	"sku-pricing/internal/backtest"
	"sku-pricing/internal/model"
)

type DailyRevenuePoint struct {
	Date     model.Date `json:"date"`
	Strategy string     `json:"strategy"`
	Revenue  float64    `json:"revenue"`
	Stockout int        `json:"stockouts"`
}

// DailyRevenue sums revenue per (date, strategy), ordered by date then strategy.
func DailyRevenue(outcomes []backtest.Outcome) []DailyRevenuePoint {
	type key struct {
		date     string
		strategy string
	}
	acc := map[key]*DailyRevenuePoint{}
	for _, o := range outcomes {
		k := key{date: o.Date.String(), strategy: o.Strategy}
		p, ok := acc[k]
		if !ok {
			p = &DailyRevenuePoint{Date: o.Date, Strategy: o.Strategy}
			acc[k] = p
		}
		p.Revenue += o.Revenue
		if o.Stockout {
			p.Stockout++
		}
	}

	out := make([]DailyRevenuePoint, 0, len(acc))
	for _, p := range acc {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Strategy < out[j].Strategy
	})
	return out
}
