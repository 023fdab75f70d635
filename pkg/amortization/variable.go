package amortization

import (
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
)

// GenerateVariableAmortizationSchedule builds a fixed to variable schedule of
// the given type.
func GenerateVariableAmortizationSchedule(amount float64, totalPeriod int, fixedRate float64, fixedMonths int,
	variableRate float64, insuranceRate *float64, repaymentType RepaymentType) ([]PaymentScheduleRow, error) {
	switch repaymentType {
	case Annuity:
		return GenerateVariableAnnuitySchedule(amount, totalPeriod, fixedRate, fixedMonths, variableRate, insuranceRate)
	case Linear:
		return GenerateVariableLinearSchedule(amount, totalPeriod, fixedRate, fixedMonths, variableRate, insuranceRate)
	default:
		return nil, invalidf("unknown repayment type %q", repaymentType)
	}
}

// GenerateVariableAnnuitySchedule amortizes the way banks reset a rate: the
// first fixedMonths pay the annuity for the full term at fixedRate, then a
// new annuity is computed on the remaining balance and remaining term at
// variableRate.
//
// When the balance is already within a cent of zero after the fixed phase,
// the variable phase is skipped and fewer than totalPeriod rows are returned.
func GenerateVariableAnnuitySchedule(amount float64, totalPeriod int, fixedRate float64, fixedMonths int,
	variableRate float64, insuranceRate *float64) ([]PaymentScheduleRow, error) {
	paymentFixed, err := MonthlyPaymentAnnuity(amount, totalPeriod, fixedRate)
	if err != nil {
		return nil, err
	}
	if err := validateVariable(totalPeriod, fixedMonths, variableRate); err != nil {
		return nil, err
	}
	if err := validateInsurance(insuranceRate); err != nil {
		return nil, err
	}

	rows := make([]PaymentScheduleRow, 0, totalPeriod)
	rows, balance := annuityRows(rows, 1, fixedMonths, amount, paymentFixed, mathutil.MonthlyRate(fixedRate), insuranceRate)

	remainingMonths := totalPeriod - fixedMonths
	if remainingMonths > 0 && !mathutil.IsZero(balance) {
		paymentVariable, err := MonthlyPaymentAnnuity(balance, remainingMonths, variableRate)
		if err != nil {
			return nil, err
		}
		rows, _ = annuityRows(rows, fixedMonths+1, remainingMonths, balance, paymentVariable,
			mathutil.MonthlyRate(variableRate), insuranceRate)
	}

	return rows, nil
}

// GenerateVariableLinearSchedule keeps the principal at amount/totalPeriod
// for the whole term; only the rate changes after fixedMonths.
func GenerateVariableLinearSchedule(amount float64, totalPeriod int, fixedRate float64, fixedMonths int,
	variableRate float64, insuranceRate *float64) ([]PaymentScheduleRow, error) {
	if err := validateTerms(amount, totalPeriod, fixedRate); err != nil {
		return nil, err
	}
	if err := validateVariable(totalPeriod, fixedMonths, variableRate); err != nil {
		return nil, err
	}
	if err := validateInsurance(insuranceRate); err != nil {
		return nil, err
	}

	principal := amount / float64(totalPeriod)
	rows := make([]PaymentScheduleRow, 0, totalPeriod)
	rows, balance := linearRows(rows, 1, fixedMonths, amount, principal, mathutil.MonthlyRate(fixedRate), insuranceRate)

	remainingMonths := totalPeriod - fixedMonths
	if remainingMonths > 0 && balance > 0 {
		rows, _ = linearRows(rows, fixedMonths+1, remainingMonths, balance, principal,
			mathutil.MonthlyRate(variableRate), insuranceRate)
	}

	return rows, nil
}

// segment is a run of months sharing one annual rate.
type segment struct {
	first      int
	months     int
	annualRate float64
}

// rateSegments splits the term of params into its rate regimes.
func rateSegments(params LoanParameters) []segment {
	if !params.Variable() || params.FixedMonths >= params.Period {
		return []segment{{first: 1, months: params.Period, annualRate: params.AnnualRate}}
	}
	return []segment{
		{first: 1, months: params.FixedMonths, annualRate: params.AnnualRate},
		{first: params.FixedMonths + 1, months: params.Period - params.FixedMonths, annualRate: *params.VariableRate},
	}
}
