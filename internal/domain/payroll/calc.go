package payroll

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"paycore/internal/domain/adjustments"
	"paycore/internal/domain/employees"
)

// RecordID is stable for an employee and period so that regenerating a
// period with the same inputs yields identical records.
func RecordID(employeeID string, start, end time.Time) string {
	name := "payroll-record:" + employeeID + "|" + start.Format(dateLayout) + "|" + end.Format(dateLayout)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func overtimeLineID(recordID string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("payroll-overtime:%s|%d", recordID, index))).String()
}

func (t StatutoryTotals) Add(kind string, amount decimal.Decimal) (StatutoryTotals, error) {
	switch kind {
	case DeductionSSS:
		t.SSS = t.SSS.Add(amount)
	case DeductionPhilHealth:
		t.PhilHealth = t.PhilHealth.Add(amount)
	case DeductionPagIBIG:
		t.PagIBIG = t.PagIBIG.Add(amount)
	case DeductionOther:
		t.Loans = t.Loans.Add(amount)
	default:
		return t, fmt.Errorf("%w: %s", ErrInvalidDeductionType, kind)
	}
	return t, nil
}

func (r Record) StatutoryTotal() decimal.Decimal {
	return r.SSS.Add(r.PhilHealth).Add(r.PagIBIG).Add(r.WithholdingTax).Add(r.Loans)
}

// Recompute derives gross, total deductions and net from the stored fields.
func Recompute(r *Record, includeOther bool) {
	r.GrossPay = r.BasicSalary.Add(r.OvertimePay).Add(r.HolidayPay)
	total := r.StatutoryTotal().Add(r.Absences).Add(r.CashAdvance)
	if includeOther {
		total = total.Add(r.OtherDeductions)
	}
	r.TotalDeductions = total
	r.NetPay = r.GrossPay.Sub(total)
}

// ApplyDeduction adds amount to the column matching kind and recomputes the
// derived fields.
func ApplyDeduction(r *Record, kind string, amount decimal.Decimal, includeOther bool) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}
	switch kind {
	case DeductionSSS:
		r.SSS = r.SSS.Add(amount)
	case DeductionPhilHealth:
		r.PhilHealth = r.PhilHealth.Add(amount)
	case DeductionPagIBIG:
		r.PagIBIG = r.PagIBIG.Add(amount)
	case DeductionOther:
		r.Loans = r.Loans.Add(amount)
	default:
		return fmt.Errorf("%w: %s", ErrInvalidDeductionType, kind)
	}
	Recompute(r, includeOther)
	return nil
}

func ApplyEdit(r *Record, edit RecordEdit, includeOther bool) error {
	fields := []struct {
		src *decimal.Decimal
		dst *decimal.Decimal
	}{
		{edit.BasicSalary, &r.BasicSalary},
		{edit.OvertimePay, &r.OvertimePay},
		{edit.HolidayPay, &r.HolidayPay},
		{edit.Allowances, &r.Allowances},
		{edit.Absences, &r.Absences},
		{edit.CashAdvance, &r.CashAdvance},
		{edit.SSS, &r.SSS},
		{edit.PhilHealth, &r.PhilHealth},
		{edit.PagIBIG, &r.PagIBIG},
		{edit.WithholdingTax, &r.WithholdingTax},
		{edit.Loans, &r.Loans},
		{edit.OtherDeductions, &r.OtherDeductions},
	}
	for _, f := range fields {
		if f.src != nil && f.src.IsNegative() {
			return ErrNegativeAmount
		}
	}
	if edit.Status != nil && !ValidStatus(*edit.Status) {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, *edit.Status)
	}
	for _, f := range fields {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	if edit.Status != nil {
		r.Status = *edit.Status
	}
	Recompute(r, includeOther)
	return nil
}

// BuildRecord computes one employee's record for the period. adj may be nil.
func BuildRecord(emp employees.Employee, start, end time.Time, ledger StatutoryTotals, adj *adjustments.Adjustment, policy Policy) (Record, []OvertimeLine) {
	rec := Record{
		ID:           RecordID(emp.ID, start, end),
		EmployeeID:   emp.ID,
		EmployeeCode: emp.Code,
		EmployeeName: emp.FullName,
		PayType:      emp.PayType,
		PeriodStart:  start,
		PeriodEnd:    end,
		BasicSalary:  emp.BaseSalary.Decimal,
		Allowances:   emp.Allowance,
		SSS:          ledger.SSS,
		PhilHealth:   ledger.PhilHealth,
		PagIBIG:      ledger.PagIBIG,
		Loans:        ledger.Loans,
		Status:       StatusPendingPayment,
	}

	var lines []OvertimeLine
	if adj != nil {
		for i, entry := range adj.OvertimeEntries {
			amount := entry.Amount()
			rec.OvertimePay = rec.OvertimePay.Add(amount)
			lines = append(lines, OvertimeLine{
				ID:          overtimeLineID(rec.ID, i),
				RecordID:    rec.ID,
				EmployeeID:  emp.ID,
				Date:        entry.Date,
				Hours:       entry.Hours,
				RatePerHour: entry.RatePerHour,
				Amount:      amount,
				RequestID:   entry.RequestID,
			})
		}
		if adj.AbsenceDays.IsPositive() && adj.AbsenceAmountPerDay.IsPositive() {
			rec.Absences = adj.AbsenceDays.Mul(adj.AbsenceAmountPerDay)
		}
		if adj.HolidayPay.IsPositive() {
			rec.HolidayPay = adj.HolidayPay
		}
		if adj.CashAdvance.IsPositive() {
			rec.CashAdvance = adj.CashAdvance
		}
		if adj.OtherDeductions.IsPositive() {
			rec.OtherDeductions = adj.OtherDeductions
		}
	}

	Recompute(&rec, policy.IncludeOtherDeductions)
	return rec, lines
}

// Plan computes the records for every eligible employee. Adjustments naming
// an employee outside the eligible roster are reported as issues.
func Plan(start, end time.Time, roster []employees.Employee, ledger map[string]StatutoryTotals, set *adjustments.Set, policy Policy) ([]Record, []OvertimeLine, []adjustments.Issue) {
	if set == nil {
		set = adjustments.NewSet()
	}
	var (
		records []Record
		lines   []OvertimeLine
		issues  []adjustments.Issue
	)
	eligible := map[string]bool{}
	for _, emp := range roster {
		if !emp.Eligible() {
			continue
		}
		eligible[emp.ID] = true
		var adjPtr *adjustments.Adjustment
		if adj, ok := set.Get(emp.ID); ok {
			adjPtr = &adj
		}
		rec, recLines := BuildRecord(emp, start, end, ledger[emp.ID], adjPtr, policy)
		records = append(records, rec)
		lines = append(lines, recLines...)
	}
	for _, adj := range set.List() {
		if !eligible[adj.EmployeeID] {
			issues = append(issues, adjustments.Issue{EmployeeID: adj.EmployeeID, Reason: "employee is not eligible for payroll"})
		}
	}
	return records, lines, issues
}

func ValidatePeriod(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return ErrInvalidPeriod
	}
	return nil
}
