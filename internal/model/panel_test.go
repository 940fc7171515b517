package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func validRow(t *testing.T) PanelRow {
	return PanelRow{
		Date:               day(t, "2024-03-01"),
		ProductID:          "SKU_001",
		PrevPrice:          100,
		CostPrice:          70,
		MinMarginPct:       0.15,
		Category:           CategoryGrocery,
		PredictedUnitsSold: 20,
		PrevInventory:      300,
		SalesRollMean7:     20,
		ClearanceDays:      30,
	}
}

func TestPanelRowValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *PanelRow)
	}{
		{"missing date", func(r *PanelRow) { r.Date = Date{} }},
		{"blank product", func(r *PanelRow) { r.ProductID = "  " }},
		{"zero prev price", func(r *PanelRow) { r.PrevPrice = 0 }},
		{"nan prev price", func(r *PanelRow) { r.PrevPrice = math.NaN() }},
		{"negative cost", func(r *PanelRow) { r.CostPrice = -1 }},
		{"margin of one", func(r *PanelRow) { r.MinMarginPct = 1 }},
		{"nan forecast", func(r *PanelRow) { r.PredictedUnitsSold = math.NaN() }},
		{"negative forecast", func(r *PanelRow) { r.PredictedUnitsSold = -2 }},
		{"negative inventory", func(r *PanelRow) { r.PrevInventory = -1 }},
		{"inf rolling mean", func(r *PanelRow) { r.SalesRollMean7 = math.Inf(1) }},
		{"zero clearance", func(r *PanelRow) { r.ClearanceDays = 0 }},
	}

	require.NoError(t, validRow(t).Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRow(t)
			tt.mutate(&r)
			err := r.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRow)
		})
	}
}

func TestPanelValidateEmpty(t *testing.T) {
	assert.ErrorIs(t, Panel{}.Validate(), ErrInvalidRow)
}

func TestPanelNormalized(t *testing.T) {
	a := validRow(t)
	b := validRow(t)
	b.ProductID = "SKU_000"
	c := validRow(t)
	c.Date = day(t, "2024-02-28")
	dup := validRow(t)
	dup.PrevPrice = 999

	in := Panel{a, b, dup, c}
	out := in.Normalized()

	require.Len(t, out, 3)
	assert.Equal(t, "2024-02-28", out[0].Date.String())
	assert.Equal(t, "SKU_000", out[1].ProductID)
	assert.Equal(t, "SKU_001", out[2].ProductID)
	assert.Equal(t, 100.0, out[2].PrevPrice, "first row for a key wins")

	assert.Equal(t, 999.0, in[2].PrevPrice, "input must not be mutated")
	assert.Equal(t, "SKU_001", in[0].ProductID)
}

func TestPanelOnDate(t *testing.T) {
	a := validRow(t)
	b := validRow(t)
	b.Date = day(t, "2024-03-02")

	got := Panel{a, b}.OnDate(day(t, "2024-03-02"))
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-02", got[0].Date.String())
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-03-01T00:00:00Z"`)))
	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01"`, string(b))

	assert.Error(t, d.UnmarshalJSON([]byte(`"03/01/2024"`)))
}

func TestCategoryOrUnknown(t *testing.T) {
	r := validRow(t)
	r.Category = ""
	assert.Equal(t, CategoryUnknown, r.CategoryOrUnknown())
}
