package model

import "github.com/shopspring/decimal"

// Round2 rounds to cents, half away from zero.
// Going through decimal avoids float artifacts like 1.005 -> 1.00.
func Round2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
