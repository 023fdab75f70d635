package amortization

import (
	"math"

	"github.com/iwvelando/loan-calculator/pkg/mathutil"
)

// GenerateAmortizationSchedule builds a single-rate schedule of the given type.
func GenerateAmortizationSchedule(amount float64, period int, annualRate float64, insuranceRate *float64,
	repaymentType RepaymentType) ([]PaymentScheduleRow, error) {
	switch repaymentType {
	case Annuity:
		return GenerateAnnuitySchedule(amount, period, annualRate, insuranceRate)
	case Linear:
		return GenerateLinearSchedule(amount, period, annualRate, insuranceRate)
	default:
		return nil, invalidf("unknown repayment type %q", repaymentType)
	}
}

// GenerateAnnuitySchedule builds exactly period rows with a constant
// principal plus interest payment.
func GenerateAnnuitySchedule(amount float64, period int, annualRate float64, insuranceRate *float64) ([]PaymentScheduleRow, error) {
	monthlyPayment, err := MonthlyPaymentAnnuity(amount, period, annualRate)
	if err != nil {
		return nil, err
	}
	if err := validateInsurance(insuranceRate); err != nil {
		return nil, err
	}

	rows := make([]PaymentScheduleRow, 0, period)
	rows, _ = annuityRows(rows, 1, period, amount, monthlyPayment, mathutil.MonthlyRate(annualRate), insuranceRate)
	return rows, nil
}

// GenerateLinearSchedule builds exactly period rows with a constant principal
// and a declining payment.
func GenerateLinearSchedule(amount float64, period int, annualRate float64, insuranceRate *float64) ([]PaymentScheduleRow, error) {
	if err := validateTerms(amount, period, annualRate); err != nil {
		return nil, err
	}
	if err := validateInsurance(insuranceRate); err != nil {
		return nil, err
	}

	rows := make([]PaymentScheduleRow, 0, period)
	rows, _ = linearRows(rows, 1, period, amount, amount/float64(period), mathutil.MonthlyRate(annualRate), insuranceRate)
	return rows, nil
}

// GenerateSchedule dispatches on the shape of params: single-rate when no
// variable rate is set, fixed to variable otherwise.
func GenerateSchedule(params LoanParameters, repaymentType RepaymentType) ([]PaymentScheduleRow, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if params.Variable() {
		return GenerateVariableAmortizationSchedule(params.Amount, params.Period, params.AnnualRate,
			params.FixedMonths, *params.VariableRate, params.InsuranceRate, repaymentType)
	}
	return GenerateAmortizationSchedule(params.Amount, params.Period, params.AnnualRate, params.InsuranceRate, repaymentType)
}

// annuityRows appends count months paying payment at monthlyRate, starting
// at month first, and returns the balance left afterwards.
func annuityRows(rows []PaymentScheduleRow, first, count int, balance, payment, monthlyRate float64,
	insuranceRate *float64) ([]PaymentScheduleRow, float64) {
	for month := first; month < first+count; month++ {
		interest := balance * monthlyRate
		principal := payment - interest
		insurance := insuranceFor(balance, insuranceRate)
		balance = math.Max(0, balance-principal)

		rows = append(rows, PaymentScheduleRow{
			Month:            month,
			Payment:          payment + premium(insurance),
			Principal:        principal,
			Interest:         interest,
			Insurance:        insurance,
			RemainingBalance: balance,
		})
	}
	return rows, balance
}

// linearRows appends count months repaying principal each month.
func linearRows(rows []PaymentScheduleRow, first, count int, balance, principal, monthlyRate float64,
	insuranceRate *float64) ([]PaymentScheduleRow, float64) {
	for month := first; month < first+count; month++ {
		interest := balance * monthlyRate
		insurance := insuranceFor(balance, insuranceRate)
		balance = math.Max(0, balance-principal)

		rows = append(rows, PaymentScheduleRow{
			Month:            month,
			Payment:          principal + interest + premium(insurance),
			Principal:        principal,
			Interest:         interest,
			Insurance:        insurance,
			RemainingBalance: balance,
		})
	}
	return rows, balance
}
