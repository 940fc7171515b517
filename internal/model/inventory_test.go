package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDaysOfStock(t *testing.T) {
	assert.Equal(t, 15.0, DaysOfStock(300, 20))
	assert.True(t, math.IsInf(DaysOfStock(300, 0), 1))
	assert.True(t, math.IsInf(DaysOfStock(0, 0), 1))
}

func TestIsStockout(t *testing.T) {
	assert.True(t, IsStockout(40, 40), "selling exactly the inventory is a stock-out")
	assert.True(t, IsStockout(0, 0))
	assert.False(t, IsStockout(39.5, 40))
}

func TestUnitsSold(t *testing.T) {
	assert.Equal(t, 20.0, UnitsSold(20, 300))
	assert.Equal(t, 40.0, UnitsSold(55.5, 40))
}

func TestPriceChangePct(t *testing.T) {
	assert.InDelta(t, -5.0, PriceChangePct(100, 95), 1e-9)
	assert.Equal(t, 0.0, PriceChangePct(0, 95))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.01, Round2(1.005))
	assert.Equal(t, 95.0, Round2(100*0.95))
	assert.Equal(t, 2051.95, Round2(2051.9453))
	assert.Equal(t, -1.01, Round2(-1.005))
}
