package payroll

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

type Line struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

type Breakdown struct {
	Earnings        []Line          `json:"earnings"`
	GrossPay        decimal.Decimal `json:"grossPay"`
	Deductions      []Line          `json:"deductions"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetPay          decimal.Decimal `json:"netPay"`
}

// BreakdownOf lists the record's non-zero earning and deduction lines. Night
// differential is not tracked and is always omitted.
func BreakdownOf(rec Record) Breakdown {
	nonZero := func(lines ...Line) []Line {
		var out []Line
		for _, l := range lines {
			if !l.Amount.IsZero() {
				out = append(out, l)
			}
		}
		return out
	}
	return Breakdown{
		Earnings: nonZero(
			Line{"Basic Salary", rec.BasicSalary},
			Line{"Overtime Pay", rec.OvertimePay},
			Line{"Holiday Pay", rec.HolidayPay},
			Line{"Allowances", rec.Allowances},
		),
		GrossPay: rec.GrossPay,
		Deductions: nonZero(
			Line{"SSS", rec.SSS},
			Line{"PhilHealth", rec.PhilHealth},
			Line{"Pag-IBIG", rec.PagIBIG},
			Line{"Withholding Tax", rec.WithholdingTax},
			Line{"Loans", rec.Loans},
			Line{"Absences", rec.Absences},
			Line{"Cash Advance", rec.CashAdvance},
			Line{"Other Deductions", rec.OtherDeductions},
		),
		TotalDeductions: rec.TotalDeductions,
		NetPay:          rec.NetPay,
	}
}

func PayslipFileName(rec Record) string {
	code := rec.EmployeeCode
	if code == "" {
		code = rec.EmployeeID
	}
	return fmt.Sprintf("Payslip_%s_%s.pdf", strings.ReplaceAll(code, " ", "_"), rec.PeriodEnd.Format(dateLayout))
}

func RenderPayslipPDF(rec Record) ([]byte, error) {
	b := BreakdownOf(rec)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", rec.EmployeeName, rec.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", rec.PeriodStart.Format(dateLayout), rec.PeriodEnd.Format(dateLayout)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", rec.Status))
	pdf.Ln(10)

	section := func(title string, lines []Line, totalLabel string, total decimal.Decimal) {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 11)
		for _, l := range lines {
			pdf.CellFormat(110, 7, l.Label, "", 0, "L", false, 0, "")
			pdf.CellFormat(50, 7, l.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(110, 7, totalLabel, "T", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, total.StringFixed(2), "T", 1, "R", false, 0, "")
		pdf.Ln(4)
	}
	section("Earnings", b.Earnings, "Gross Pay", b.GrossPay)
	section("Deductions", b.Deductions, "Total Deductions", b.TotalDeductions)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(110, 9, "Net Pay", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, b.NetPay.StringFixed(2), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
