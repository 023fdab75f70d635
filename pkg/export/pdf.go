// Package export renders schedule reports as PDF documents.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
)

// Report is the content of one exported schedule.
type Report struct {
	Title      string
	Type       amortization.RepaymentType
	Parameters amortization.LoanParameters
	Schedule   []amortization.PaymentScheduleRow
	Months     []string
	Currency   format.Currency
}

// FileName returns the download name of a report, e.g.
// "annuity-schedule-2025-06-01.pdf".
func FileName(repaymentType amortization.RepaymentType, date time.Time) string {
	return fmt.Sprintf("%s-schedule-%s.pdf", repaymentType, date.Format(constants.ReportDateLayout))
}

const (
	pageMargin  = 15.0
	lineHeight  = 6.0
	rowHeight   = 6.5
	labelWidth  = 45.0
	tableWidth  = 180.0
	monthColumn = 20.0
)

// WritePDF renders the report: a loan details block followed by the schedule
// table. The insurance column is present only when the loan is insured.
func WritePDF(w io.Writer, report Report) error {
	if len(report.Schedule) == 0 {
		return fmt.Errorf("report %q has no schedule rows", report.Title)
	}
	currency := report.Currency
	if currency.Code == "" {
		currency = format.DefaultCurrency()
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(title(report), true)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title(report)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, lineHeight+2, "Loan details", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, detail := range details(report, currency) {
		pdf.CellFormat(labelWidth, lineHeight, tr(detail[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, lineHeight, tr(detail[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	insured := report.Schedule[0].Insurance != nil
	headers := []string{"Month", "Payment", "Principal", "Interest"}
	if insured {
		headers = append(headers, "Insurance")
	}
	headers = append(headers, "Balance")
	widths := columnWidths(len(headers))

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(220, 228, 240)
		for i, h := range headers {
			pdf.CellFormat(widths[i], rowHeight, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	for i, row := range report.Schedule {
		if pdf.GetY()+rowHeight > pageHeight-pageMargin {
			pdf.AddPage()
			header()
		}

		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		cells := []string{monthLabel(row.Month, report.Months), format.Number(row.Payment),
			format.Number(row.Principal), format.Number(row.Interest)}
		if insured {
			cells = append(cells, format.Number(*row.Insurance))
		}
		cells = append(cells, format.Number(row.RemainingBalance))

		for j, cell := range cells {
			align := "R"
			if j == 0 {
				align = "C"
			}
			pdf.CellFormat(widths[j], rowHeight, cell, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}

	summary := amortization.Summarize(report.Schedule)
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	totals := [][2]string{
		{"Total payment", format.Amount(summary.TotalPayment, currency)},
		{"Total interest", format.Amount(summary.TotalInterest, currency)},
	}
	if summary.TotalInsurance != nil {
		totals = append(totals, [2]string{"Total insurance", format.Amount(*summary.TotalInsurance, currency)})
	}
	for _, total := range totals {
		pdf.CellFormat(labelWidth, lineHeight, total[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, lineHeight, tr(total[1]), "", 1, "L", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return pdf.Output(w)
}

func title(report Report) string {
	if report.Title != "" {
		return report.Title
	}
	return fmt.Sprintf("Loan schedule (%s)", report.Type)
}

func details(report Report, currency format.Currency) [][2]string {
	params := report.Parameters
	rows := [][2]string{
		{"Amount", format.Amount(params.Amount, currency)},
		{"Period", fmt.Sprintf("%d months", params.Period)},
	}
	if params.Variable() {
		rows = append(rows,
			[2]string{"Fixed rate", fmt.Sprintf("%s for %d months", format.Percent(params.AnnualRate), params.FixedMonths)},
			[2]string{"Variable rate", format.Percent(*params.VariableRate)},
		)
	} else {
		rows = append(rows, [2]string{"Interest rate", format.Percent(params.AnnualRate)})
	}
	if params.InsuranceRate != nil {
		rows = append(rows, [2]string{"Insurance rate", format.Percent(*params.InsuranceRate)})
	}
	rows = append(rows, [2]string{"Repayment type", string(report.Type)})
	if len(report.Months) > 0 {
		rows = append(rows, [2]string{"First payment", report.Months[0]})
	}
	return rows
}

func columnWidths(columns int) []float64 {
	widths := make([]float64, columns)
	widths[0] = monthColumn
	rest := (tableWidth - monthColumn) / float64(columns-1)
	for i := 1; i < columns; i++ {
		widths[i] = rest
	}
	return widths
}

func monthLabel(month int, months []string) string {
	if month >= 1 && month <= len(months) {
		return months[month-1]
	}
	return fmt.Sprintf("%d", month)
}
