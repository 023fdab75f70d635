// Package amortization computes monthly loan repayment schedules under the
// annuity (equal payment) and linear (equal principal) conventions.
//
// Every function is pure: a schedule depends only on its arguments and is
// recomputed from scratch on each call.
package amortization

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
)

// ErrInvalidParameters is returned for a non-positive amount or period, a
// period or rate above the supported maximum, or an out of range fixed period.
var ErrInvalidParameters = errors.New("invalid loan parameters")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameters, fmt.Sprintf(format, args...))
}

// RepaymentType selects the repayment convention.
type RepaymentType string

const (
	// Annuity keeps the total monthly payment constant.
	Annuity RepaymentType = constants.RepaymentTypeAnnuity
	// Linear keeps the monthly principal constant.
	Linear RepaymentType = constants.RepaymentTypeLinear
)

// ParseRepaymentType converts a configured or requested type name.
func ParseRepaymentType(value string) (RepaymentType, error) {
	switch RepaymentType(value) {
	case Annuity, Linear:
		return RepaymentType(value), nil
	default:
		return "", invalidf("unknown repayment type %q", value)
	}
}

// PaymentScheduleRow holds the values for one month of a schedule.
type PaymentScheduleRow struct {
	Month            int      `json:"month"`
	Payment          float64  `json:"payment"`
	Principal        float64  `json:"principal"`
	Interest         float64  `json:"interest"`
	Insurance        *float64 `json:"insurance"`
	RemainingBalance float64  `json:"remainingBalance"`
}

// LoanParameters describes one scenario. A nil VariableRate means a single
// rate applies for the whole period; otherwise AnnualRate applies for the
// first FixedMonths and VariableRate for the rest.
type LoanParameters struct {
	Amount        float64  `json:"amount"`
	Period        int      `json:"period"`
	AnnualRate    float64  `json:"annualRate"`
	InsuranceRate *float64 `json:"insuranceRate,omitempty"`
	FixedMonths   int      `json:"fixedMonths,omitempty"`
	VariableRate  *float64 `json:"variableRate,omitempty"`
}

// Variable reports whether the parameters describe a fixed to variable loan.
func (p LoanParameters) Variable() bool {
	return p.VariableRate != nil
}

// Validate checks the ranges the engine relies on.
func (p LoanParameters) Validate() error {
	if err := validateTerms(p.Amount, p.Period, p.AnnualRate); err != nil {
		return err
	}
	if err := validateInsurance(p.InsuranceRate); err != nil {
		return err
	}
	if p.Variable() {
		return validateVariable(p.Period, p.FixedMonths, *p.VariableRate)
	}
	return nil
}

// validateTerms bounds the inputs every generator allocates and iterates on.
func validateTerms(amount float64, period int, annualRate float64) error {
	if !(amount > 0 && amount <= constants.MaxAmount) || period <= 0 || !validRate(annualRate) {
		return invalidf("amount %.2f, period %d, rate %.4f", amount, period, annualRate)
	}
	if period > constants.MaxPeriodMonths {
		return invalidf("period %d exceeds %d months", period, constants.MaxPeriodMonths)
	}
	return nil
}

func validRate(rate float64) bool {
	return rate >= 0 && rate <= constants.MaxAnnualRate
}

func validateInsurance(insuranceRate *float64) error {
	if insuranceRate == nil {
		return nil
	}
	if !(*insuranceRate >= 0 && *insuranceRate <= constants.MaxInsuranceRate) {
		return invalidf("insurance rate %.4f outside 0..%.0f", *insuranceRate, constants.MaxInsuranceRate)
	}
	return nil
}

func validateVariable(totalPeriod, fixedMonths int, variableRate float64) error {
	if fixedMonths < 1 || fixedMonths > totalPeriod {
		return invalidf("fixed months %d outside 1..%d", fixedMonths, totalPeriod)
	}
	if !validRate(variableRate) {
		return invalidf("variable rate %.4f outside 0..%.0f", variableRate, constants.MaxAnnualRate)
	}
	return nil
}

// MonthlyPaymentAnnuity calculates the constant principal plus interest
// payment using the standard amortization formula. Insurance is not included.
func MonthlyPaymentAnnuity(amount float64, period int, annualRate float64) (float64, error) {
	if err := validateTerms(amount, period, annualRate); err != nil {
		return 0, err
	}

	monthlyRate := mathutil.MonthlyRate(annualRate)
	if monthlyRate == 0 {
		return amount / float64(period), nil
	}

	factor := math.Pow(1+monthlyRate, float64(period))
	payment := amount * monthlyRate * factor / (factor - 1)
	if math.IsInf(payment, 0) || math.IsNaN(payment) {
		return 0, invalidf("payment for amount %.2f over %d months at %.4f is not finite", amount, period, annualRate)
	}
	return payment, nil
}

// FirstLinearPayment returns the first, and largest, installment of a linear
// schedule without insurance.
func FirstLinearPayment(amount float64, period int, annualRate float64) (float64, error) {
	if err := validateTerms(amount, period, annualRate); err != nil {
		return 0, err
	}
	return amount/float64(period) + amount*mathutil.MonthlyRate(annualRate), nil
}

// insuranceFor returns the premium charged on balance, or nil when insurance
// is disabled.
func insuranceFor(balance float64, insuranceRate *float64) *float64 {
	if insuranceRate == nil {
		return nil
	}
	premium := mathutil.ApplyPercentage(balance, *insuranceRate)
	return &premium
}

func premium(insurance *float64) float64 {
	if insurance == nil {
		return 0
	}
	return *insurance
}
