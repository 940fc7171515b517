package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sku-pricing/internal/model"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultParams())
	require.NoError(t, err)
	return e
}

func scenarioA() SelectInput {
	return SelectInput{
		PrevPrice:      100,
		CostPrice:      70,
		BaseDemand:     20,
		Category:       model.CategoryGrocery,
		PriorInventory: 300,
		SalesRollMean7: 20,
		DaysToExpiry:   30,
	}
}

func TestCandidates(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name string
		prev float64
		cost float64
		want []float64
	}{
		{"all legal", 100, 70, []float64{95, 97, 100, 103, 105}},
		{"margin floor cuts discounts", 100, 85, []float64{100, 103, 105}},
		{"nothing legal falls back", 100, 95, []float64{100}},
		{"rounded and deduplicated", 0.1, 0.01, []float64{0.1}},
		{"limits checked before rounding", 0.19, 0.01, []float64{0.18, 0.19, 0.2}},
		{"cap is exact on the unrounded price", 100.004, 70, []float64{97, 100, 103}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Candidates(tt.prev, tt.cost))
		})
	}
}

func TestCandidatesRespectConstraints(t *testing.T) {
	e := newEngine(t)
	for prev := 1.0; prev < 400; prev += 7.37 {
		for _, costRatio := range []float64{0.2, 0.5, 0.8, 0.85, 0.9, 1.2} {
			cost := prev * costRatio
			got := e.Candidates(prev, cost)
			require.NotEmpty(t, got)

			if len(got) == 1 && got[0] == model.Round2(prev) {
				continue
			}
			for i, p := range got {
				// Limits hold before rounding, so a rounded price may move by half a cent.
				assert.GreaterOrEqual(t, p, cost*1.15-0.005, "margin floor prev=%v cost=%v", prev, cost)
				assert.LessOrEqual(t, math.Abs(p-prev), prev*0.05+0.005, "daily cap prev=%v", prev)
				assert.Equal(t, model.Round2(p), p, "rounded to cents")
				if i > 0 {
					assert.Greater(t, p, got[i-1], "strictly ascending")
				}
			}
		}
	}
}

func TestCandidatesIdempotent(t *testing.T) {
	e := newEngine(t)
	assert.Equal(t, e.Candidates(123.45, 80), e.Candidates(123.45, 80))
}

func TestEstimate(t *testing.T) {
	e := newEngine(t)

	est := e.Estimate(95, 100, 20, model.CategoryGrocery, 300)
	units := 20 * math.Pow(0.95, -1.5)
	assert.Equal(t, model.Round2(units), est.ExpectedUnitsSold)
	assert.Equal(t, model.Round2(95*units), est.ExpectedRevenue)

	capped := e.Estimate(95, 100, 20, model.CategoryGrocery, 10)
	assert.Equal(t, 10.0, capped.ExpectedUnitsSold, "demand cannot exceed stock")
	assert.Equal(t, 950.0, capped.ExpectedRevenue)

	none := e.Estimate(95, 100, 0, model.CategoryHome, 10)
	assert.Equal(t, 0.0, none.ExpectedUnitsSold)

	assert.Equal(t, e.Estimate(97, 100, 20, "mystery", 300), e.Estimate(97, 100, 20, model.CategoryStationery, 300),
		"unknown categories use the default elasticity")
}

func TestElasticity(t *testing.T) {
	e := newEngine(t)
	assert.Equal(t, -1.5, e.Elasticity(model.CategoryGrocery))
	assert.Equal(t, -1.2, e.Elasticity(model.CategoryPersonalCare))
	assert.Equal(t, -1.0, e.Elasticity(model.CategoryStationery))
	assert.Equal(t, -0.6, e.Elasticity(model.CategoryHome))
	assert.Equal(t, -1.0, e.Elasticity(model.CategoryUnknown))
}

func TestFeasible(t *testing.T) {
	e := newEngine(t)

	tests := []struct {
		name      string
		candidate float64
		units     float64
		inventory float64
		rollMean  float64
		expiry    int
		want      bool
	}{
		{"plenty of stock", 105, 20, 300, 20, 30, true},
		{"buffer breached", 95, 21.6, 80, 20, 30, false},
		{"buffer exactly met", 95, 20, 80, 20, 30, true},
		{"clearance blocks markup", 103, 19.13, 300, 20, 10, false},
		{"clearance allows discount", 97, 20.93, 300, 20, 10, true},
		{"clearance allows hold", 100, 20, 300, 20, 10, true},
		{"fast mover may mark up near expiry", 105, 18.59, 300, 40, 10, true},
		{"zero sales means infinite stock", 105, 0, 50, 0, 14, false},
		{"outside warning window", 105, 18.59, 300, 20, 15, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Feasible(tt.candidate, 100, tt.units, tt.inventory, tt.rollMean, tt.expiry))
		})
	}
}

func TestNewRejectsBadParams(t *testing.T) {
	p := DefaultParams()
	p.MinMarginPct = 1
	_, err := New(p)
	assert.Error(t, err)

	p = DefaultParams()
	p.CandidateMultipliers = nil
	_, err = New(p)
	assert.Error(t, err)
}

func TestEngineCopiesParams(t *testing.T) {
	p := DefaultParams()
	e, err := New(p)
	require.NoError(t, err)

	p.CandidateMultipliers[0] = 0.5
	p.Elasticities[model.CategoryGrocery] = -9

	assert.Equal(t, 0.95, e.Params().CandidateMultipliers[0])
	assert.Equal(t, -1.5, e.Elasticity(model.CategoryGrocery))
}
