package calculator

import (
	"errors"
	"math"
	"testing"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"go.uber.org/zap"
)

func floatPtr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func simpleScenario(name string) config.Scenario {
	return config.Scenario{
		Name:   name,
		Active: true,
		Amount: floatPtr(100000),
		Period: intPtr(12),
		Rate:   floatPtr(12),
	}
}

func TestCalculate(t *testing.T) {
	both := simpleScenario("both")
	both.Type = "both"
	both.StartDate = "2025-11"

	inactive := simpleScenario("inactive")
	inactive.Active = false

	incomplete := config.Scenario{Name: "incomplete", Active: true, Amount: floatPtr(1000)}

	conf := config.Configuration{Scenarios: []config.Scenario{simpleScenario("annuity"), both, inactive, incomplete}}

	results, err := Calculate(zap.NewNop(), conf)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	tests := []struct {
		index        int
		name         string
		typ          amortization.RepaymentType
		firstPayment float64
		firstMonth   string
	}{
		{0, "annuity", amortization.Annuity, 8884.88, ""},
		{1, "both", amortization.Annuity, 8884.88, "2025-11"},
		{2, "both", amortization.Linear, 9333.33, "2025-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+string(tt.typ), func(t *testing.T) {
			result := results[tt.index]
			if result.Name != tt.name || result.Type != tt.typ {
				t.Errorf("result %d = %s/%s, expected %s/%s", tt.index, result.Name, result.Type, tt.name, tt.typ)
			}
			if len(result.Schedule) != 12 {
				t.Errorf("expected 12 rows, got %d", len(result.Schedule))
			}
			if math.Abs(result.Summary.FirstPayment-tt.firstPayment) > 0.01 {
				t.Errorf("first payment = %.2f, expected %.2f", result.Summary.FirstPayment, tt.firstPayment)
			}
			if tt.firstMonth == "" {
				if result.Months != nil {
					t.Errorf("expected no month labels, got %v", result.Months)
				}
				return
			}
			if len(result.Months) != 12 || result.Months[0] != tt.firstMonth || result.Months[2] != "2026-01" {
				t.Errorf("unexpected month labels %v", result.Months)
			}
		})
	}
}

func TestCalculateEarlyRepayment(t *testing.T) {
	scenario := config.Scenario{
		Name:           "repayment",
		Active:         true,
		Amount:         floatPtr(50000),
		Period:         intPtr(60),
		Rate:           floatPtr(6),
		EarlyRepayment: &config.EarlyRepayment{Amount: 10000, Effect: "period"},
	}

	results, err := Calculate(nil, config.Configuration{Scenarios: []config.Scenario{scenario}})
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	repayment := results[0].Repayment
	if repayment == nil {
		t.Fatalf("expected a repayment simulation")
	}
	if repayment.Outcome != amortization.OutcomeApplied {
		t.Errorf("outcome = %s, expected %s", repayment.Outcome, amortization.OutcomeApplied)
	}
	if len(repayment.Schedule) != 47 {
		t.Errorf("expected 47 months after repayment, got %d", len(repayment.Schedule))
	}
	if repayment.Savings.Months != 13 {
		t.Errorf("expected 13 months saved, got %d", repayment.Savings.Months)
	}
	if repayment.Savings.Interest <= 0 {
		t.Errorf("expected positive interest savings, got %.2f", repayment.Savings.Interest)
	}
}

func TestCalculateErrors(t *testing.T) {
	invalid := simpleScenario("invalid")
	invalid.Rate = floatPtr(-3)

	badType := simpleScenario("bad type")
	badType.Type = "balloon"

	badEffect := simpleScenario("bad effect")
	badEffect.EarlyRepayment = &config.EarlyRepayment{Amount: 100, Effect: "sideways"}

	badStart := simpleScenario("bad start")
	badStart.StartDate = "soon"

	tests := []struct {
		name     string
		scenario config.Scenario
		wantErr  error
	}{
		{"Invalid parameters", invalid, amortization.ErrInvalidParameters},
		{"Unknown type", badType, amortization.ErrInvalidParameters},
		{"Unknown effect", badEffect, amortization.ErrInvalidParameters},
		{"Bad start date", badStart, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(zap.NewNop(), config.Configuration{Scenarios: []config.Scenario{tt.scenario}})
			if err == nil {
				t.Fatalf("Calculate() expected error but got none")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Calculate() error = %v, expected %v", err, tt.wantErr)
			}
		})
	}
}
