package data

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sku-pricing/internal/model"
)

const featuresCSV = `date,product_id,category,prev_price,cost_price,min_margin_pct,prev_inventory,sales_roll_mean_7,clearance_days,price_lag_7
2024-03-02,SKU_001,grocery,101.0,70,0.15,280.0,20.5,30,99
2024-03-01,SKU_002,home,40,20,0.1,50,3,60,
2024-03-01,SKU_001,grocery,100,70,0.15,300,20,30,98
2024-03-03,SKU_001,grocery,102,70,0.15,260,20,30,97
`

const predictionsCSV = `date,product_id,predicted_units_sold
2024-03-01,SKU_001,20.5
2024-03-01,SKU_002,4
2024-03-02,SKU_001,19
`

func TestParsePanelCSV(t *testing.T) {
	panel, err := ParsePanelCSV(strings.NewReader(featuresCSV), strings.NewReader(predictionsCSV))
	require.NoError(t, err)
	// 2024-03-03 has no forecast and is dropped by the inner join.
	require.Len(t, panel, 3)

	assert.Equal(t, "2024-03-01/SKU_001", panel[0].Key())
	assert.Equal(t, "2024-03-01/SKU_002", panel[1].Key())
	assert.Equal(t, "2024-03-02/SKU_001", panel[2].Key())

	r := panel[0]
	assert.Equal(t, 100.0, r.PrevPrice)
	assert.Equal(t, 70.0, r.CostPrice)
	assert.Equal(t, 0.15, r.MinMarginPct)
	assert.Equal(t, 300, r.PrevInventory)
	assert.Equal(t, 20.5, r.PredictedUnitsSold)
	assert.Equal(t, model.CategoryGrocery, r.Category)
	assert.NoError(t, panel.Validate())

	assert.Equal(t, 280, panel[2].PrevInventory)
	assert.Equal(t, model.CategoryHome, panel[1].Category)
}

func TestParsePanelCSVMissingCategory(t *testing.T) {
	features := "date,product_id,prev_price,cost_price,min_margin_pct,prev_inventory,sales_roll_mean_7,clearance_days\n" +
		"2024-03-01,SKU_001,100,70,0.15,300,20,30\n"
	panel, err := ParsePanelCSV(strings.NewReader(features), strings.NewReader(predictionsCSV))
	require.NoError(t, err)
	require.Len(t, panel, 1)
	assert.Equal(t, model.CategoryUnknown, panel[0].Category)
}

func TestParsePanelCSVErrors(t *testing.T) {
	t.Run("missing feature column", func(t *testing.T) {
		features := "date,product_id,prev_price\n2024-03-01,SKU_001,100\n"
		_, err := ParsePanelCSV(strings.NewReader(features), strings.NewReader(predictionsCSV))
		require.Error(t, err)
		assert.True(t, eris.Is(err, ErrMissingColumn))
		assert.Contains(t, err.Error(), "cost_price")
	})

	t.Run("missing prediction column", func(t *testing.T) {
		preds := "date,product_id,units\n2024-03-01,SKU_001,3\n"
		_, err := ParsePanelCSV(strings.NewReader(featuresCSV), strings.NewReader(preds))
		assert.True(t, eris.Is(err, ErrMissingColumn))
	})

	t.Run("nan forecast", func(t *testing.T) {
		preds := "date,product_id,predicted_units_sold\n2024-03-01,SKU_001,NaN\n"
		_, err := ParsePanelCSV(strings.NewReader(featuresCSV), strings.NewReader(preds))
		assert.True(t, eris.Is(err, ErrMissingPrediction))
	})

	t.Run("empty forecast", func(t *testing.T) {
		preds := "date,product_id,predicted_units_sold\n2024-03-01,SKU_001,\n"
		_, err := ParsePanelCSV(strings.NewReader(featuresCSV), strings.NewReader(preds))
		assert.True(t, eris.Is(err, ErrMissingPrediction))
	})

	t.Run("empty join", func(t *testing.T) {
		preds := "date,product_id,predicted_units_sold\n2025-01-01,SKU_009,3\n"
		_, err := ParsePanelCSV(strings.NewReader(featuresCSV), strings.NewReader(preds))
		assert.True(t, eris.Is(err, ErrNoRows))
	})

	t.Run("fractional inventory", func(t *testing.T) {
		features := strings.Replace(featuresCSV, "300,20,30", "300.5,20,30", 1)
		_, err := ParsePanelCSV(strings.NewReader(features), strings.NewReader(predictionsCSV))
		assert.Error(t, err)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ParsePanelCSV(strings.NewReader(""), strings.NewReader(predictionsCSV))
		assert.True(t, eris.Is(err, ErrMissingColumn))
	})
}

func TestLoadPanelCSVMissingFile(t *testing.T) {
	_, err := LoadPanelCSV(filepath.Join(t.TempDir(), "nope.csv"), "also-nope.csv")
	assert.Error(t, err)
}

func TestPanelJSONRoundTrip(t *testing.T) {
	panel, err := ParsePanelCSV(strings.NewReader(featuresCSV), strings.NewReader(predictionsCSV))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "panel.json")
	require.NoError(t, SavePanelJSON(panel, path))

	got, err := LoadPanelJSON(path)
	require.NoError(t, err)
	assert.Equal(t, panel, got)
}
