package analysis

import (
	"math"
	"sort"

	"sku-pricing/internal/backtest"
	"sku-pricing/internal/model"
)

// PriceChangeStats summarizes day-over-day price moves of one strategy, in percent.
type PriceChangeStats struct {
	Strategy string `json:"strategy"`
	Count    int    `json:"count"`

	MeanChangePct float64 `json:"mean_change_pct"`
	P95AbsPct     float64 `json:"p95_abs_change_pct"`
	MaxAbsPct     float64 `json:"max_abs_change_pct"`
}

// PriceChangeSummary compares each simulated price with the same SKU's
// simulated price on its previous panel day. The first day of each SKU has no
// predecessor and is skipped. Results are sorted by strategy.
func PriceChangeSummary(outcomes []backtest.Outcome) []PriceChangeStats {
	byStrategy := map[string][]backtest.Outcome{}
	for _, o := range outcomes {
		byStrategy[o.Strategy] = append(byStrategy[o.Strategy], o)
	}

	out := make([]PriceChangeStats, 0, len(byStrategy))
	for name, rows := range byStrategy {
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].ProductID != rows[j].ProductID {
				return rows[i].ProductID < rows[j].ProductID
			}
			return rows[i].Date.Before(rows[j].Date)
		})

		changes := []float64{}
		for i := 1; i < len(rows); i++ {
			if rows[i].ProductID != rows[i-1].ProductID {
				continue
			}
			changes = append(changes, model.PriceChangePct(rows[i-1].Price, rows[i].Price))
		}
		out = append(out, changeStats(name, changes))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })
	return out
}

func changeStats(name string, changes []float64) PriceChangeStats {
	s := PriceChangeStats{Strategy: name, Count: len(changes)}
	if len(changes) == 0 {
		return s
	}
	sum := 0.0
	abs := make([]float64, 0, len(changes))
	for _, c := range changes {
		sum += c
		abs = append(abs, math.Abs(c))
	}
	sort.Float64s(abs)
	s.MeanChangePct = sum / float64(len(changes))
	s.P95AbsPct = percentileSorted(abs, 0.95)
	s.MaxAbsPct = abs[len(abs)-1]
	return s
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
