package testutil

import (
	"testing"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
)

func TestFindResult(t *testing.T) {
	results := []calculator.Result{
		{Name: "Scenario A", Type: amortization.Annuity, Parameters: amortization.LoanParameters{Amount: 1000}},
		{Name: "Scenario A", Type: amortization.Linear, Parameters: amortization.LoanParameters{Amount: 2000}},
		{Name: "Another Scenario", Type: amortization.Annuity, Parameters: amortization.LoanParameters{Amount: 3000}},
	}

	tests := []struct {
		name           string
		searchName     string
		searchType     amortization.RepaymentType
		expectFound    bool
		expectedAmount float64
	}{
		{"Find annuity result", "Scenario A", amortization.Annuity, true, 1000},
		{"Find linear result", "Scenario A", amortization.Linear, true, 2000},
		{"Find scenario with longer name", "Another Scenario", amortization.Annuity, true, 3000},
		{"Wrong type", "Another Scenario", amortization.Linear, false, 0},
		{"Non-existent scenario", "Non-existent", amortization.Annuity, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FindResult(results, tt.searchName, tt.searchType)
			if !tt.expectFound {
				if result != nil {
					t.Errorf("Expected not to find %s, but found it", tt.searchName)
				}
				return
			}
			if result == nil {
				t.Fatalf("Expected to find %s, but got nil", tt.searchName)
			}
			if result.Parameters.Amount != tt.expectedAmount {
				t.Errorf("Expected amount %.2f, got %.2f", tt.expectedAmount, result.Parameters.Amount)
			}
		})
	}
}

func TestPointers(t *testing.T) {
	if *FloatPtr(1.5) != 1.5 {
		t.Errorf("FloatPtr() returned the wrong value")
	}
	if *IntPtr(7) != 7 {
		t.Errorf("IntPtr() returned the wrong value")
	}
}
