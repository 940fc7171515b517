package pricing

import (
	"math"
	"sort"

	"sku-pricing/internal/model"
)


// Engine is the constrained price-decision engine.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	params Params
}

func New(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params.clone()}, nil
}

// Params returns a copy of the engine thresholds.
func (e *Engine) Params() Params { return e.params.clone() }

// Candidates returns the legal next-day prices in ascending order.
//
// The margin floor and the daily change cap are checked on the unrounded
// price, with no tolerance; survivors are then rounded to cents and
// deduplicated. The result is never empty: with no survivors the previous
// price is returned on its own.
func (e *Engine) Candidates(prevPrice, costPrice float64) []float64 {
	if prevPrice <= 0 {
		return []float64{model.Round2(prevPrice)}
	}
	floor := costPrice * (1 + e.params.MinMarginPct)

	seen := make(map[float64]struct{}, len(e.params.CandidateMultipliers))
	out := make([]float64, 0, len(e.params.CandidateMultipliers))
	for _, m := range e.params.CandidateMultipliers {
		raw := prevPrice * m
		if raw < floor {
			continue
		}
		if math.Abs(raw-prevPrice)/prevPrice > e.params.MaxDailyPriceChangePct {
			continue
		}
		price := model.Round2(raw)
		if _, dup := seen[price]; dup {
			continue
		}
		seen[price] = struct{}{}
		out = append(out, price)
	}

	if len(out) == 0 {
		return []float64{model.Round2(prevPrice)}
	}
	sort.Float64s(out)
	return out
}

// Elasticity looks up the constant elasticity for a category.
func (e *Engine) Elasticity(c model.Category) float64 {
	if v, ok := e.params.Elasticities[c]; ok {
		return v
	}
	return e.params.DefaultElasticity
}

// Estimate is the expected outcome of one candidate price, rounded to cents.
type Estimate struct {
	Price             float64 `json:"price"`
	ExpectedUnitsSold float64 `json:"expected_units_sold"`
	ExpectedRevenue   float64 `json:"expected_revenue"`
}

// Estimate applies the constant-elasticity demand model:
// units = baseDemand * (candidate/prev)^e, clamped to [0, priorInventory].
func (e *Engine) Estimate(candidate, prevPrice, baseDemand float64, category model.Category, priorInventory float64) Estimate {
	multiplier := 1.0
	if prevPrice > 0 {
		multiplier = math.Pow(candidate/prevPrice, e.Elasticity(category))
	}
	units := baseDemand * multiplier
	units = math.Max(0, math.Min(units, priorInventory))

	return Estimate{
		Price:             model.Round2(candidate),
		ExpectedUnitsSold: model.Round2(units),
		ExpectedRevenue:   model.Round2(candidate * units),
	}
}

// Feasible applies the stock-out buffer and clearance-pressure rules.
func (e *Engine) Feasible(candidate, prevPrice, expectedUnits, priorInventory, salesRollMean7 float64, daysToExpiry int) bool {
	// Safety stock is expressed in days of recent demand, so it scales per SKU.
	remaining := priorInventory - expectedUnits
	if remaining < e.params.StockoutBufferDays*salesRollMean7 {
		return false
	}

	// A near-expiry SKU that will outlast its shelf life is never priced up.
	if daysToExpiry <= e.params.ClearanceWarningDays &&
		model.DaysOfStock(priorInventory, salesRollMean7) > float64(daysToExpiry) &&
		candidate > prevPrice {
		return false
	}
	return true
}
