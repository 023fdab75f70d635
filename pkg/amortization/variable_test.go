package amortization

import (
	"math"
	"reflect"
	"testing"
)

func TestGenerateVariableAnnuitySchedule(t *testing.T) {
	rows, err := GenerateVariableAnnuitySchedule(120000, 24, 5, 12, 8, nil)
	if err != nil {
		t.Fatalf("GenerateVariableAnnuitySchedule() unexpected error: %v", err)
	}
	if len(rows) != 24 {
		t.Fatalf("expected 24 rows, got %d", len(rows))
	}

	paymentFixed, err := MonthlyPaymentAnnuity(120000, 24, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range rows[:12] {
		if row.Payment != paymentFixed {
			t.Errorf("month %d payment %.4f, expected fixed payment %.4f", row.Month, row.Payment, paymentFixed)
		}
	}

	paymentVariable, err := MonthlyPaymentAnnuity(rows[11].RemainingBalance, 12, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(rows[12].Payment-paymentFixed) < 0.01 {
		t.Errorf("month 13 payment should change after the rate reset, got %.4f", rows[12].Payment)
	}
	for _, row := range rows[12:] {
		if row.Payment != paymentVariable {
			t.Errorf("month %d payment %.4f, expected variable payment %.4f", row.Month, row.Payment, paymentVariable)
		}
		if math.Abs(row.Interest-(row.RemainingBalance+row.Principal)*8/1200) > 1e-6 {
			t.Errorf("month %d interest %.4f not charged at the variable rate", row.Month, row.Interest)
		}
	}

	if rows[23].RemainingBalance > 0.01 {
		t.Errorf("expected final balance of 0, got %.6f", rows[23].RemainingBalance)
	}
}

func TestVariableAnnuityMatchesSingleRateWhenFullyFixed(t *testing.T) {
	single, err := GenerateAnnuitySchedule(75000, 36, 5.5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	variable, err := GenerateVariableAnnuitySchedule(75000, 36, 5.5, 36, 5.5, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(single, variable) {
		t.Errorf("variable schedule with fixedMonths == period differs from the single-rate schedule")
	}
}

func TestVariableAnnuitySkipsVariablePhaseWhenRepaid(t *testing.T) {
	// 0.02 over 3 months at 0% leaves 0.0067 after the fixed phase.
	rows, err := GenerateVariableAnnuitySchedule(0.02, 3, 0, 2, 5, nil)
	if err != nil {
		t.Fatalf("GenerateVariableAnnuitySchedule() unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected the variable phase to be skipped leaving 2 rows, got %d", len(rows))
	}
	if rows[1].Month != 2 {
		t.Errorf("expected the last row to be month 2, got %d", rows[1].Month)
	}
	if rows[1].RemainingBalance > 0.01 {
		t.Errorf("expected a final balance within 0.01 of zero, got %.6f", rows[1].RemainingBalance)
	}
}

func TestGenerateVariableLinearSchedule(t *testing.T) {
	rows, err := GenerateVariableLinearSchedule(48000, 24, 3, 6, 9, floatPtr(0.02))
	if err != nil {
		t.Fatalf("GenerateVariableLinearSchedule() unexpected error: %v", err)
	}
	if len(rows) != 24 {
		t.Fatalf("expected 24 rows, got %d", len(rows))
	}

	for i, row := range rows {
		if row.Principal != 2000 {
			t.Errorf("month %d principal %.4f, expected 2000", row.Month, row.Principal)
		}
		balanceBefore := row.RemainingBalance + row.Principal
		rate := 3.0
		if row.Month > 6 {
			rate = 9.0
		}
		if math.Abs(row.Interest-balanceBefore*rate/1200) > 1e-6 {
			t.Errorf("month %d interest %.4f, expected %.4f", row.Month, row.Interest, balanceBefore*rate/1200)
		}
		// Payments only decline inside a rate regime.
		if i > 0 && i != 6 && row.Payment > rows[i-1].Payment {
			t.Errorf("month %d payment increased within a regime", row.Month)
		}
	}

	if rows[6].Payment <= rows[5].Payment {
		t.Errorf("expected the higher variable rate to raise month 7 payment")
	}
}

func TestGenerateVariableAmortizationScheduleDispatch(t *testing.T) {
	annuity, err := GenerateVariableAmortizationSchedule(30000, 12, 4, 6, 6, nil, Annuity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	linear, err := GenerateVariableAmortizationSchedule(30000, 12, 4, 6, 6, nil, Linear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if annuity[0].Principal == linear[0].Principal {
		t.Errorf("annuity and linear dispatch produced the same first principal")
	}
	if linear[0].Principal != 2500 {
		t.Errorf("linear principal %.4f, expected 2500", linear[0].Principal)
	}
}

func TestGenerateSchedule(t *testing.T) {
	simple := LoanParameters{Amount: 100000, Period: 12, AnnualRate: 12}
	rows, err := GenerateSchedule(simple, Annuity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected, _ := GenerateAnnuitySchedule(100000, 12, 12, nil)
	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("simple parameters should use the single-rate generator")
	}

	advanced := LoanParameters{Amount: 120000, Period: 24, AnnualRate: 5, FixedMonths: 12, VariableRate: floatPtr(8)}
	rows, err = GenerateSchedule(advanced, Annuity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected, _ = GenerateVariableAnnuitySchedule(120000, 24, 5, 12, 8, nil)
	if !reflect.DeepEqual(rows, expected) {
		t.Errorf("advanced parameters should use the variable generator")
	}

	advanced.FixedMonths = 0
	if _, err := GenerateSchedule(advanced, Annuity); err == nil {
		t.Errorf("expected an error for a variable loan without fixed months")
	}
}
