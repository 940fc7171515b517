package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sku-pricing/internal/backtest"
	"sku-pricing/internal/model"
)

func outcome(t *testing.T, date, sku string, cat model.Category, strategy string, price, units float64, stockout bool) backtest.Outcome {
	t.Helper()
	d, err := model.ParseDate(date)
	require.NoError(t, err)
	return backtest.Outcome{
		Date: d, ProductID: sku, Category: cat, Strategy: strategy,
		Price: price, UnitsSold: units, Revenue: price * units, Stockout: stockout,
	}
}

func TestPriceChangeSummary(t *testing.T) {
	g := model.CategoryGrocery
	outcomes := []backtest.Outcome{
		// Out of order on purpose.
		outcome(t, "2024-03-03", "A", g, "ml", 99, 1, false),
		outcome(t, "2024-03-01", "A", g, "ml", 100, 1, false),
		outcome(t, "2024-03-02", "A", g, "ml", 110, 1, false),
		outcome(t, "2024-03-01", "B", g, "ml", 50, 1, false),
		outcome(t, "2024-03-02", "B", g, "ml", 50, 1, false),
		outcome(t, "2024-03-01", "A", g, "static", 100, 1, false),
	}

	got := PriceChangeSummary(outcomes)
	require.Len(t, got, 2)

	ml := got[0]
	assert.Equal(t, "ml", ml.Strategy)
	// A: +10%, -10%; B: 0%.
	assert.Equal(t, 3, ml.Count)
	assert.InDelta(t, 0, ml.MeanChangePct, 1e-9)
	assert.InDelta(t, 10, ml.MaxAbsPct, 1e-9)
	// sorted abs: 0, 10, 10 -> p95 = 10
	assert.InDelta(t, 10, ml.P95AbsPct, 1e-9)

	static := got[1]
	assert.Equal(t, "static", static.Strategy)
	assert.Equal(t, 0, static.Count)
	assert.Equal(t, 0.0, static.MaxAbsPct)
}

func TestPercentileSorted(t *testing.T) {
	vals := []float64{0, 10, 20, 30, 40}
	assert.Equal(t, 0.0, percentileSorted(vals, 0))
	assert.Equal(t, 40.0, percentileSorted(vals, 1))
	assert.InDelta(t, 20.0, percentileSorted(vals, 0.5), 1e-9)
	assert.InDelta(t, 38.0, percentileSorted(vals, 0.95), 1e-9)
	assert.Equal(t, 0.0, percentileSorted(nil, 0.5))
}

func TestCategoryBreakdown(t *testing.T) {
	outcomes := []backtest.Outcome{
		outcome(t, "2024-03-01", "A", model.CategoryHome, "ml", 10, 2, true),
		outcome(t, "2024-03-02", "A", model.CategoryHome, "ml", 20, 1, false),
		outcome(t, "2024-03-01", "B", model.CategoryGrocery, "ml", 5, 4, false),
		outcome(t, "2024-03-01", "B", model.CategoryGrocery, "static", 5, 4, false),
	}
	got := CategoryBreakdown(outcomes)
	require.Len(t, got, 3)

	assert.Equal(t, model.CategoryGrocery, got[0].Category)
	assert.Equal(t, "ml", got[0].Strategy)
	assert.Equal(t, "static", got[1].Strategy)

	home := got[2]
	assert.Equal(t, model.CategoryHome, home.Category)
	assert.Equal(t, 2, home.Rows)
	assert.InDelta(t, 40, home.TotalRevenue, 1e-9)
	assert.InDelta(t, 0.5, home.StockoutRate, 1e-9)
	assert.InDelta(t, 15, home.AvgPrice, 1e-9)
}

func TestDailyRevenue(t *testing.T) {
	g := model.CategoryGrocery
	outcomes := []backtest.Outcome{
		outcome(t, "2024-03-02", "A", g, "static", 10, 1, false),
		outcome(t, "2024-03-01", "A", g, "static", 10, 2, true),
		outcome(t, "2024-03-01", "B", g, "static", 5, 2, false),
		outcome(t, "2024-03-01", "A", g, "ml", 11, 2, false),
	}
	got := DailyRevenue(outcomes)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-01", got[0].Date.String())
	assert.Equal(t, "ml", got[0].Strategy)
	assert.InDelta(t, 22, got[0].Revenue, 1e-9)
	assert.Equal(t, "static", got[1].Strategy)
	assert.InDelta(t, 30, got[1].Revenue, 1e-9)
	assert.Equal(t, 1, got[1].Stockout)
	assert.Equal(t, "2024-03-02", got[2].Date.String())
}

func TestRankByRevenue(t *testing.T) {
	got := RankByRevenue([]backtest.StrategySummary{
		{Strategy: "ml", TotalRevenue: 200},
		{Strategy: "rule_based", TotalRevenue: 100},
		{Strategy: "static", TotalRevenue: 300},
		{Strategy: "alpha", TotalRevenue: 100},
	})
	require.Len(t, got, 4)
	assert.Equal(t, "static", got[0].Strategy)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "ml", got[1].Strategy)
	assert.Equal(t, "alpha", got[2].Strategy)
	assert.Equal(t, "rule_based", got[3].Strategy)
	assert.Equal(t, 4, got[3].Rank)
}
