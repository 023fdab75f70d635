package amortization

import (
	"math"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
)

// RepaymentEffect selects how a lump sum is absorbed by the schedule.
type RepaymentEffect string

const (
	// ReduceInstallment keeps the term and lowers the installment.
	ReduceInstallment RepaymentEffect = constants.EffectAmount
	// ReducePeriod keeps the installment and shortens the term.
	ReducePeriod RepaymentEffect = constants.EffectPeriod
)

// ParseRepaymentEffect converts a configured or requested effect name.
func ParseRepaymentEffect(value string) (RepaymentEffect, error) {
	switch RepaymentEffect(value) {
	case ReduceInstallment, ReducePeriod:
		return RepaymentEffect(value), nil
	default:
		return "", invalidf("unknown repayment effect %q", value)
	}
}

// Outcome names the result of an early repayment simulation.
type Outcome string

const (
	// OutcomeApplied means Schedule reflects the lump sum.
	OutcomeApplied Outcome = "applied"
	// OutcomePaidOff means the lump sum covers the whole amount and
	// Schedule is empty.
	OutcomePaidOff Outcome = "paid_off"
	// OutcomeNoFeasibleEffect means the kept installment cannot cover the
	// interest on the reduced balance; Schedule is the unmodified base.
	// A lump sum only lowers the balance each base installment was sized
	// for, so validated parameters never produce it.
	OutcomeNoFeasibleEffect Outcome = "no_feasible_effect"
)

// Repayment is the result of SimulateEarlyRepayment.
type Repayment struct {
	Outcome  Outcome              `json:"outcome"`
	Effect   RepaymentEffect      `json:"effect"`
	LumpSum  float64              `json:"lumpSum"`
	Base     []PaymentScheduleRow `json:"base"`
	Schedule []PaymentScheduleRow `json:"schedule"`
	Savings  Savings              `json:"savings"`
}

// SimulateEarlyRepayment applies lumpSum at time zero to the loan described
// by params and re-amortizes it according to effect. OutcomeNoFeasibleEffect
// is a guard against an installment that no longer covers its interest; it
// is not reachable with parameters that pass Validate.
func SimulateEarlyRepayment(params LoanParameters, repaymentType RepaymentType, lumpSum float64,
	effect RepaymentEffect) (Repayment, error) {
	if lumpSum < 0 {
		return Repayment{}, invalidf("lump sum %.2f is negative", lumpSum)
	}
	if _, err := ParseRepaymentEffect(string(effect)); err != nil {
		return Repayment{}, err
	}

	base, err := GenerateSchedule(params, repaymentType)
	if err != nil {
		return Repayment{}, err
	}

	result := Repayment{
		Outcome: OutcomeApplied,
		Effect:  effect,
		LumpSum: lumpSum,
		Base:    base,
	}

	reduced := params.Amount - lumpSum
	if reduced <= 0 {
		result.Outcome = OutcomePaidOff
		result.Schedule = []PaymentScheduleRow{}
		result.Savings = Compare(base, result.Schedule)
		return result, nil
	}

	switch effect {
	case ReduceInstallment:
		reducedParams := params
		reducedParams.Amount = reduced
		result.Schedule, err = GenerateSchedule(reducedParams, repaymentType)
		if err != nil {
			return Repayment{}, err
		}
	case ReducePeriod:
		schedule, feasible, err := shortenedSchedule(params, repaymentType, reduced, base)
		if err != nil {
			return Repayment{}, err
		}
		if !feasible {
			result.Outcome = OutcomeNoFeasibleEffect
			schedule = base
		}
		result.Schedule = schedule
	}

	result.Savings = Compare(base, result.Schedule)
	return result, nil
}

// shortenedSchedule amortizes balance while keeping the base schedule's
// installment (annuity) or principal (linear). The bool result is false when
// an installment cannot cover the interest of its segment.
func shortenedSchedule(params LoanParameters, repaymentType RepaymentType, balance float64,
	base []PaymentScheduleRow) ([]PaymentScheduleRow, bool, error) {
	switch repaymentType {
	case Annuity:
		return shortenedAnnuity(params, balance, base)
	case Linear:
		return shortenedLinear(params, balance), true, nil
	default:
		return nil, false, invalidf("unknown repayment type %q", repaymentType)
	}
}

func shortenedAnnuity(params LoanParameters, balance float64, base []PaymentScheduleRow) ([]PaymentScheduleRow, bool, error) {
	segments := rateSegments(params)
	rows := make([]PaymentScheduleRow, 0, len(base))

	for i, seg := range segments {
		if mathutil.IsZero(balance) {
			break
		}
		payment, ok, err := segmentPayment(params, base, seg)
		if err != nil {
			return nil, false, err
		}
		if !ok {
			break
		}

		monthlyRate := mathutil.MonthlyRate(seg.annualRate)
		needed, feasible := SolvePeriod(balance, payment, monthlyRate)
		if !feasible {
			return nil, false, nil
		}

		last := i == len(segments)-1
		if needed > seg.months && !last {
			rows, balance = annuityRows(rows, seg.first, seg.months, balance, payment, monthlyRate, params.InsuranceRate)
			continue
		}
		if needed > seg.months {
			needed = seg.months
		}
		rows, balance = payoffRows(rows, seg.first, needed, balance, payment, monthlyRate, params.InsuranceRate)
	}

	return rows, true, nil
}

// segmentPayment recovers the installment the base schedule pays during seg.
// The bool result is false when the base schedule never reaches seg.
func segmentPayment(params LoanParameters, base []PaymentScheduleRow, seg segment) (float64, bool, error) {
	if seg.first == 1 {
		payment, err := MonthlyPaymentAnnuity(params.Amount, params.Period, params.AnnualRate)
		return payment, err == nil, err
	}
	if len(base) < seg.first {
		return 0, false, nil
	}
	boundary := base[seg.first-2].RemainingBalance
	payment, err := MonthlyPaymentAnnuity(boundary, params.Period-seg.first+1, seg.annualRate)
	return payment, err == nil, err
}

// payoffRows pays count months of payment, sizing the last month's principal
// to the exact remaining balance.
func payoffRows(rows []PaymentScheduleRow, first, count int, balance, payment, monthlyRate float64,
	insuranceRate *float64) ([]PaymentScheduleRow, float64) {
	for i := 0; i < count; i++ {
		interest := balance * monthlyRate
		principal := payment - interest
		installment := payment
		if i == count-1 || principal >= balance {
			principal = balance
			installment = principal + interest
		}
		insurance := insuranceFor(balance, insuranceRate)
		balance = math.Max(0, balance-principal)

		rows = append(rows, PaymentScheduleRow{
			Month:            first + i,
			Payment:          installment + premium(insurance),
			Principal:        principal,
			Interest:         interest,
			Insurance:        insurance,
			RemainingBalance: balance,
		})
		if balance == 0 {
			break
		}
	}
	return rows, balance
}

// shortenedLinear repays the base principal per month until balance is gone,
// with a smaller final month for any remainder.
func shortenedLinear(params LoanParameters, balance float64) []PaymentScheduleRow {
	principalPerMonth := params.Amount / float64(params.Period)
	rows := make([]PaymentScheduleRow, 0, params.Period)

	for _, seg := range rateSegments(params) {
		monthlyRate := mathutil.MonthlyRate(seg.annualRate)
		for month := seg.first; month < seg.first+seg.months; month++ {
			if balance <= 0 {
				return rows
			}
			principal := principalPerMonth
			if balance-principal <= constants.CurrencyTolerance {
				principal = balance
			}
			interest := balance * monthlyRate
			insurance := insuranceFor(balance, params.InsuranceRate)
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
	}
	return rows
}

// SolvePeriod returns the whole number of months needed to amortize balance
// with a constant payment at monthlyRate: n = ln(M/(M-P*r)) / ln(1+r),
// rounded up. It reports false when payment does not exceed the monthly
// interest, in which case the balance never reaches zero.
func SolvePeriod(balance, payment, monthlyRate float64) (int, bool) {
	if payment <= 0 {
		return 0, false
	}
	if balance <= 0 {
		return 0, true
	}

	var months float64
	if monthlyRate == 0 {
		months = balance / payment
	} else {
		if payment <= balance*monthlyRate {
			return 0, false
		}
		months = math.Log(payment/(payment-balance*monthlyRate)) / math.Log(1+monthlyRate)
	}

	n := int(math.Ceil(months - constants.PeriodSolveTolerance))
	if n < 1 {
		n = 1
	}
	return n, true
}
