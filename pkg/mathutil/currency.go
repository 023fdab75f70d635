// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves round away from zero.
func Round(val float64) float64 {
	return RoundDecimal(decimal.NewFromFloat(val))
}

// RoundDecimal rounds a decimal amount to cents and returns it as a float.
func RoundDecimal(val decimal.Decimal) float64 {
	return val.Round(constants.DecimalPlaces).InexactFloat64()
}

// IsZero checks if a value is effectively zero (within tolerance)
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// MonthlyRate converts a nominal annual percentage into a monthly fraction.
func MonthlyRate(annualRate float64) float64 {
	return annualRate / constants.PercentageMultiplier / constants.MonthsPerYear
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}
