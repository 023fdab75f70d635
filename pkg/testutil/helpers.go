// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
)

// FindResult finds the result of a scenario under a repayment type.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []calculator.Result, name string, repaymentType amortization.RepaymentType) *calculator.Result {
	for i := range results {
		if results[i].Name == name && results[i].Type == repaymentType {
			return &results[i]
		}
	}
	return nil
}

// FloatPtr returns a pointer to v, for optional parameters in test tables.
func FloatPtr(v float64) *float64 {
	return &v
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
