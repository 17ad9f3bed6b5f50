package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"paycore/internal/domain/payroll"
)

var payslipTemplate = template.Must(template.New("payslip").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Payslip for {{.Name}}</h2>
  <p>Pay period: {{.PeriodStart}} to {{.PeriodEnd}}</p>
  <table cellpadding="6" style="border-collapse: collapse; min-width: 360px;">
    <tr><th colspan="2" align="left">Earnings</th></tr>
    {{- range .Earnings}}
    <tr><td>{{.Label}}</td><td align="right">{{.Amount.StringFixed 2}}</td></tr>
    {{- end}}
    <tr><td><strong>Gross Pay</strong></td><td align="right"><strong>{{.GrossPay.StringFixed 2}}</strong></td></tr>
    <tr><th colspan="2" align="left">Deductions</th></tr>
    {{- range .Deductions}}
    <tr><td>{{.Label}}</td><td align="right">{{.Amount.StringFixed 2}}</td></tr>
    {{- end}}
    <tr><td><strong>Total Deductions</strong></td><td align="right"><strong>{{.TotalDeductions.StringFixed 2}}</strong></td></tr>
    <tr><td><strong>Net Pay</strong></td><td align="right"><strong>{{.NetPay.StringFixed 2}}</strong></td></tr>
  </table>
  <p>This is a system-generated payslip. Please contact HR for any questions.</p>
</body>
</html>
`))

type payslipView struct {
	Name        string
	PeriodStart string
	PeriodEnd   string
	payroll.Breakdown
}

func Subject(rec payroll.Record) string {
	return fmt.Sprintf("Payslip - %s (%s)", rec.EmployeeName, rec.PeriodEnd.Format("2006-01-02"))
}

// RenderPayslip builds the HTML body from the stored record values.
func RenderPayslip(rec payroll.Record) (string, error) {
	var buf bytes.Buffer
	err := payslipTemplate.Execute(&buf, payslipView{
		Name:        rec.EmployeeName,
		PeriodStart: rec.PeriodStart.Format("2006-01-02"),
		PeriodEnd:   rec.PeriodEnd.Format("2006-01-02"),
		Breakdown:   payroll.BreakdownOf(rec),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
