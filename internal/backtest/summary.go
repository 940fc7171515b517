package backtest

import (
	"errors"
	"sort"
)

// ErrNoStaticBaseline is returned when uplift cannot be computed.
var ErrNoStaticBaseline = errors.New("no static strategy outcomes: uplift baseline is undefined")

const baselineStrategy = "static"

// StrategySummary holds the business metrics of one strategy.
type StrategySummary struct {
	Strategy            string  `json:"strategy"`
	Rows                int     `json:"rows"`
	TotalRevenue        float64 `json:"total_revenue"`
	AvgRevenuePerSKUDay float64 `json:"avg_revenue_per_sku_day"`
	TotalUnitsSold      float64 `json:"total_units_sold"`
	StockoutRate        float64 `json:"stockout_rate"`
	RevenueUpliftPct    float64 `json:"revenue_uplift_pct"`
}

// Summarize groups outcomes by strategy (sorted by name) and computes revenue
// uplift against the static strategy's total revenue.
func Summarize(outcomes []Outcome) ([]StrategySummary, error) {
	byStrategy := map[string]*StrategySummary{}
	stockouts := map[string]int{}
	for _, o := range outcomes {
		s, ok := byStrategy[o.Strategy]
		if !ok {
			s = &StrategySummary{Strategy: o.Strategy}
			byStrategy[o.Strategy] = s
		}
		s.Rows++
		s.TotalRevenue += o.Revenue
		s.TotalUnitsSold += o.UnitsSold
		if o.Stockout {
			stockouts[o.Strategy]++
		}
	}

	base, ok := byStrategy[baselineStrategy]
	if !ok {
		return nil, ErrNoStaticBaseline
	}

	out := make([]StrategySummary, 0, len(byStrategy))
	for name, s := range byStrategy {
		s.AvgRevenuePerSKUDay = s.TotalRevenue / float64(s.Rows)
		s.StockoutRate = float64(stockouts[name]) / float64(s.Rows)
		if name == baselineStrategy {
			s.RevenueUpliftPct = 0
		} else {
			s.RevenueUpliftPct = upliftPct(s.TotalRevenue, base.TotalRevenue)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })
	return out, nil
}

// upliftPct is the percent change of total versus baseline. A zero baseline
// gives 0 for a zero total and +/-Inf otherwise, mirroring float division.
func upliftPct(total, baseline float64) float64 {
	if baseline == 0 && total == 0 {
		return 0
	}
	return (total - baseline) / baseline * 100
}
