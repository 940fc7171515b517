package model

import "math"

// DaysOfStock is a demand-normalized inventory horizon.
// A zero (or negative) rolling mean means the SKU is not selling, so the
// horizon is +Inf rather than a division error.
func DaysOfStock(inventory, salesRollMean7 float64) float64 {
	if salesRollMean7 <= 0 {
		return math.Inf(1)
	}
	return inventory / salesRollMean7
}

// UnitsSold is the offline demand proxy: the forecast, capped by what was on hand.
func UnitsSold(predicted float64, inventory int) float64 {
	return math.Min(predicted, float64(inventory))
}

// IsStockout reports whether a day sold through all prior inventory.
// Selling exactly the inventory counts as a stock-out.
func IsStockout(unitsSold float64, inventory int) bool {
	return unitsSold >= float64(inventory)
}

// PriceChangePct is the percent change from prev to next; 0 when prev is not positive.
func PriceChangePct(prev, next float64) float64 {
	if prev <= 0 {
		return 0
	}
	return (next - prev) / prev * 100
}
