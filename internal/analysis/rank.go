package analysis

import (
	"sort"

	"sku-pricing/internal/backtest"
)

type RankedStrategy struct {
	Rank int `json:"rank"`
	backtest.StrategySummary
}

// RankByRevenue sorts summaries by total revenue, highest first. Ties keep
// name order.
func RankByRevenue(summaries []backtest.StrategySummary) []RankedStrategy {
	out := make([]RankedStrategy, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, RankedStrategy{StrategySummary: s})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].Strategy < out[j].Strategy
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
