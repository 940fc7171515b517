package pricing

import (
	"errors"
	"fmt"
	"math"

	"sku-pricing/internal/model"
)

// Params defines the business thresholds of the decision engine.
// Units:
// - MinMarginPct, MaxDailyPriceChangePct: fractions (0.15 = 15%)
// - StockoutBufferDays: days of recent average demand kept as safety stock
// - ClearanceWarningDays: days to expiry at which clearance pressure starts
type Params struct {
	CandidateMultipliers []float64

	MinMarginPct           float64
	MaxDailyPriceChangePct float64

	StockoutBufferDays   float64
	ClearanceWarningDays int

	// Elasticities are constant price elasticities per category.
	// Categories not listed use DefaultElasticity.
	Elasticities      map[model.Category]float64
	DefaultElasticity float64
}

// DefaultParams returns the production thresholds.
func DefaultParams() Params {
	return Params{
		CandidateMultipliers:   []float64{0.95, 0.97, 1.00, 1.03, 1.05},
		MinMarginPct:           0.15,
		MaxDailyPriceChangePct: 0.05,
		StockoutBufferDays:     3,
		ClearanceWarningDays:   14,
		Elasticities: map[model.Category]float64{
			model.CategoryGrocery:      -1.5,
			model.CategoryPersonalCare: -1.2,
			model.CategoryStationery:   -1.0,
			model.CategoryHome:         -0.6,
		},
		DefaultElasticity: -1.0,
	}
}

func (p Params) Validate() error {
	if len(p.CandidateMultipliers) == 0 {
		return errors.New("at least one candidate multiplier is required")
	}
	for _, m := range p.CandidateMultipliers {
		if math.IsNaN(m) || m <= 0 {
			return fmt.Errorf("candidate multiplier must be > 0, got %v", m)
		}
	}
	if p.MinMarginPct < 0 || p.MinMarginPct >= 1 {
		return errors.New("MinMarginPct must be in [0, 1)")
	}
	if p.MaxDailyPriceChangePct <= 0 || p.MaxDailyPriceChangePct >= 1 {
		return errors.New("MaxDailyPriceChangePct must be in (0, 1)")
	}
	if p.StockoutBufferDays < 0 {
		return errors.New("StockoutBufferDays must be >= 0")
	}
	if p.ClearanceWarningDays < 0 {
		return errors.New("ClearanceWarningDays must be >= 0")
	}
	for c, e := range p.Elasticities {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return fmt.Errorf("elasticity for %q must be finite", c)
		}
	}
	if math.IsNaN(p.DefaultElasticity) || math.IsInf(p.DefaultElasticity, 0) {
		return errors.New("DefaultElasticity must be finite")
	}
	return nil
}

// clone deep-copies the slice and map so an Engine never shares them with callers.
func (p Params) clone() Params {
	out := p
	out.CandidateMultipliers = append([]float64(nil), p.CandidateMultipliers...)
	out.Elasticities = make(map[model.Category]float64, len(p.Elasticities))
	for k, v := range p.Elasticities {
		out.Elasticities[k] = v
	}
	return out
}
