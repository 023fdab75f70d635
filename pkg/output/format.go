// Package output provides utilities for formatting and displaying calculation results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/loan-calculator/internal/calculator"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/shopspring/decimal"
)

// PrettyFormat writes a human-readable rather than machine-readable table for
// every result, followed by its summary and any early repayment simulation.
func PrettyFormat(w io.Writer, results []calculator.Result, currency format.Currency) error {
	pw := &printer{w: w}
	for i, result := range results {
		pw.printf("--- Results for scenario %s (%s) ---\n", result.Name, result.Type)
		pw.printf("%s\n", describeLoan(result.Parameters, currency))
		pw.table(result.Schedule, result.Months, currency)
		pw.summary(result.Summary, currency)

		if r := result.Repayment; r != nil {
			pw.printf("\nEarly repayment of %s (%s): %s\n", format.Amount(r.LumpSum, currency), r.Effect, r.Outcome)
			if r.Outcome == amortization.OutcomeApplied {
				pw.table(r.Schedule, result.Months, currency)
				pw.summary(amortization.Summarize(r.Schedule), currency)
			}
			pw.printf("Savings: %d months, interest %s, insurance %s, total %s\n",
				r.Savings.Months,
				format.Amount(r.Savings.Interest, currency),
				format.Amount(r.Savings.Insurance, currency),
				format.Amount(r.Savings.Total, currency))
		}

		if i < len(results)-1 {
			pw.printf("\n")
		}
	}
	return pw.err
}

// printer remembers the first write error so the table code stays linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(formatString string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, formatString, args...)
}

func (p *printer) table(rows []amortization.PaymentScheduleRow, months []string, currency format.Currency) {
	insured := hasInsurance(rows)
	if insured {
		p.printf("Month   | Payment | Principal | Interest | Insurance | Balance\n")
		p.printf("_____   | _______ | _________ | ________ | _________ | _______\n")
	} else {
		p.printf("Month   | Payment | Principal | Interest | Balance\n")
		p.printf("_____   | _______ | _________ | ________ | _______\n")
	}
	for _, row := range rows {
		label := monthLabel(row.Month, months)
		if insured {
			p.printf("%-7s | %s | %s | %s | %s | %s\n", label,
				format.Amount(row.Payment, currency), format.Amount(row.Principal, currency),
				format.Amount(row.Interest, currency), format.Amount(insurance(row), currency),
				format.Amount(row.RemainingBalance, currency))
			continue
		}
		p.printf("%-7s | %s | %s | %s | %s\n", label,
			format.Amount(row.Payment, currency), format.Amount(row.Principal, currency),
			format.Amount(row.Interest, currency), format.Amount(row.RemainingBalance, currency))
	}
}

func (p *printer) summary(s amortization.Summary, currency format.Currency) {
	p.printf("Months: %d\n", s.Months)
	p.printf("First payment: %s\n", format.Amount(s.FirstPayment, currency))
	p.printf("Total payment: %s\n", format.Amount(s.TotalPayment, currency))
	p.printf("Total interest: %s\n", format.Amount(s.TotalInterest, currency))
	if s.TotalInsurance != nil {
		p.printf("Total insurance: %s\n", format.Amount(*s.TotalInsurance, currency))
	}
}

func describeLoan(params amortization.LoanParameters, currency format.Currency) string {
	description := fmt.Sprintf("Loan: %s over %d months", format.Amount(params.Amount, currency), params.Period)
	if params.Variable() {
		description += fmt.Sprintf(" at %s for %d months, then %s",
			format.Percent(params.AnnualRate), params.FixedMonths, format.Percent(*params.VariableRate))
	} else {
		description += " at " + format.Percent(params.AnnualRate)
	}
	if params.InsuranceRate != nil {
		description += fmt.Sprintf(", insurance %s of the balance", format.Percent(*params.InsuranceRate))
	}
	return description
}

// CsvFormat writes one header row and one row per schedule month. Early
// repayment schedules follow their base schedule, marked in the schedule
// column.
func CsvFormat(w io.Writer, results []calculator.Result) error {
	writer := csv.NewWriter(w)
	header := []string{"scenario", "type", "schedule", "month", "date", "payment", "principal", "interest", "insurance", "balance"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		if err := writeRows(writer, result, "base", result.Schedule); err != nil {
			return err
		}
		if r := result.Repayment; r != nil && r.Outcome == amortization.OutcomeApplied {
			if err := writeRows(writer, result, "early-repayment", r.Schedule); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeRows(writer *csv.Writer, result calculator.Result, schedule string, rows []amortization.PaymentScheduleRow) error {
	for _, row := range rows {
		date := ""
		if row.Month <= len(result.Months) {
			date = result.Months[row.Month-1]
		}
		ins := ""
		if row.Insurance != nil {
			ins = money(*row.Insurance)
		}
		record := []string{
			result.Name,
			string(result.Type),
			schedule,
			strconv.Itoa(row.Month),
			date,
			money(row.Payment),
			money(row.Principal),
			money(row.Interest),
			ins,
			money(row.RemainingBalance),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// money renders a value with two decimals, rounding half away from zero.
func money(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

func monthLabel(month int, months []string) string {
	if month >= 1 && month <= len(months) {
		return months[month-1]
	}
	return strconv.Itoa(month)
}

func hasInsurance(rows []amortization.PaymentScheduleRow) bool {
	return len(rows) > 0 && rows[0].Insurance != nil
}

func insurance(row amortization.PaymentScheduleRow) float64 {
	if row.Insurance == nil {
		return 0
	}
	return *row.Insurance
}
