package amortization

import (
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Summary aggregates a schedule the way the calculator displays it. Amounts
// are rounded to cents; TotalInsurance is nil when insurance is disabled.
type Summary struct {
	Months         int      `json:"months"`
	FirstPayment   float64  `json:"firstPayment"`
	LastPayment    float64  `json:"lastPayment"`
	TotalPayment   float64  `json:"totalPayment"`
	TotalPrincipal float64  `json:"totalPrincipal"`
	TotalInterest  float64  `json:"totalInterest"`
	TotalInsurance *float64 `json:"totalInsurance,omitempty"`
}

// Savings is what an early repayment saves compared to the base schedule.
type Savings struct {
	Months    int     `json:"months"`
	Interest  float64 `json:"interest"`
	Insurance float64 `json:"insurance"`
	Total     float64 `json:"total"`
}

// Summarize totals a schedule.
func Summarize(rows []PaymentScheduleRow) Summary {
	if len(rows) == 0 {
		return Summary{}
	}

	payment, principal, interest, insurance := totals(rows)
	summary := Summary{
		Months:         len(rows),
		FirstPayment:   mathutil.Round(rows[0].Payment),
		LastPayment:    mathutil.Round(rows[len(rows)-1].Payment),
		TotalPayment:   mathutil.RoundDecimal(payment),
		TotalPrincipal: mathutil.RoundDecimal(principal),
		TotalInterest:  mathutil.RoundDecimal(interest),
	}
	if rows[0].Insurance != nil {
		total := mathutil.RoundDecimal(insurance)
		summary.TotalInsurance = &total
	}
	return summary
}

// Compare returns the savings of schedule relative to base.
func Compare(base, schedule []PaymentScheduleRow) Savings {
	basePayment, _, baseInterest, baseInsurance := totals(base)
	payment, _, interest, insurance := totals(schedule)

	return Savings{
		Months:    len(base) - len(schedule),
		Interest:  mathutil.RoundDecimal(baseInterest.Sub(interest)),
		Insurance: mathutil.RoundDecimal(baseInsurance.Sub(insurance)),
		Total:     mathutil.RoundDecimal(basePayment.Sub(payment)),
	}
}

func totals(rows []PaymentScheduleRow) (payment, principal, interest, insurance decimal.Decimal) {
	for _, row := range rows {
		payment = payment.Add(decimal.NewFromFloat(row.Payment))
		principal = principal.Add(decimal.NewFromFloat(row.Principal))
		interest = interest.Add(decimal.NewFromFloat(row.Interest))
		insurance = insurance.Add(decimal.NewFromFloat(premium(row.Insurance)))
	}
	return payment, principal, interest, insurance
}
