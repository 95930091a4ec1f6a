// internal/utils/numeric.go
package utils

import (
	"github.com/shopspring/decimal"
)

// Round2 rounds half to even at two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).RoundBank(2).InexactFloat64()
}

// Money multiplies a unit count by a unit price without float drift.
func Money(units int, price float64) decimal.Decimal {
	return decimal.NewFromInt(int64(units)).Mul(decimal.NewFromFloat(price))
}

// Ratio returns num/den, or zero when den is zero.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Percent returns num/den*100, or zero when den is zero.
func Percent(num, den float64) float64 {
	return Ratio(num, den) * 100
}
