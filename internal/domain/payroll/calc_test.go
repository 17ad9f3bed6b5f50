package payroll

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"paycore/internal/domain/adjustments"
	"paycore/internal/domain/employees"
)

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func salaried(id, code string, salary int64) employees.Employee {
	return employees.Employee{
		ID:         id,
		Code:       code,
		FullName:   "Employee " + code,
		BaseSalary: decimal.NullDecimal{Decimal: dec(salary), Valid: true},
		Allowance:  dec(500),
		PayType:    employees.PayTypeSemiMonthly,
	}
}

func period() (time.Time, time.Time) {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
}

func sampleAdjustment(employeeID string) *adjustments.Adjustment {
	return &adjustments.Adjustment{
		EmployeeID:          employeeID,
		AbsenceDays:         dec(2),
		AbsenceAmountPerDay: dec(300),
		HolidayPay:          dec(1000),
		CashAdvance:         dec(400),
		OtherDeductions:     dec(250),
		OvertimeEntries: []adjustments.OvertimeEntry{
			{Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), Hours: dec(2), RatePerHour: dec(100), RequestID: "req-1"},
			{Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), Hours: dec(3), RatePerHour: dec(150)},
		},
	}
}

func checkInvariants(t *testing.T, rec Record, includeOther bool) {
	t.Helper()
	gross := rec.BasicSalary.Add(rec.OvertimePay).Add(rec.HolidayPay)
	if !rec.GrossPay.Equal(gross) {
		t.Fatalf("gross %s does not equal basic+overtime+holiday %s", rec.GrossPay, gross)
	}
	total := rec.SSS.Add(rec.PhilHealth).Add(rec.PagIBIG).Add(rec.WithholdingTax).Add(rec.Loans).Add(rec.Absences).Add(rec.CashAdvance)
	if includeOther {
		total = total.Add(rec.OtherDeductions)
	}
	if !rec.TotalDeductions.Equal(total) {
		t.Fatalf("total deductions %s, expected %s", rec.TotalDeductions, total)
	}
	if !rec.NetPay.Equal(rec.GrossPay.Sub(rec.TotalDeductions)) {
		t.Fatalf("net %s does not equal gross-total", rec.NetPay)
	}
}

func TestBuildRecordExcludesOtherDeductionsByDefault(t *testing.T) {
	start, end := period()
	ledger := StatutoryTotals{SSS: dec(500), PhilHealth: dec(200)}

	rec, lines := BuildRecord(salaried("emp-1", "E001", 10000), start, end, ledger, sampleAdjustment("emp-1"), Policy{})

	checkInvariants(t, rec, false)
	if !rec.OvertimePay.Equal(dec(650)) {
		t.Fatalf("expected overtime 650, got %s", rec.OvertimePay)
	}
	if !rec.Absences.Equal(dec(600)) {
		t.Fatalf("expected absences 600, got %s", rec.Absences)
	}
	if !rec.GrossPay.Equal(dec(11650)) {
		t.Fatalf("expected gross 11650, got %s", rec.GrossPay)
	}
	if !rec.TotalDeductions.Equal(dec(1700)) {
		t.Fatalf("expected total deductions 1700, got %s", rec.TotalDeductions)
	}
	if !rec.NetPay.Equal(dec(9950)) {
		t.Fatalf("expected net 9950, got %s", rec.NetPay)
	}
	if !rec.OtherDeductions.Equal(dec(250)) {
		t.Fatalf("other deductions should still be stored, got %s", rec.OtherDeductions)
	}
	if rec.Status != StatusPendingPayment {
		t.Fatalf("expected pending payment, got %s", rec.Status)
	}
	if len(lines) != 2 || lines[0].RecordID != rec.ID || !lines[1].Amount.Equal(dec(450)) || lines[0].RequestID != "req-1" {
		t.Fatalf("unexpected overtime lines %+v", lines)
	}
}

func TestBuildRecordIncludesOtherDeductionsWhenConfigured(t *testing.T) {
	start, end := period()
	ledger := StatutoryTotals{SSS: dec(500), PhilHealth: dec(200)}

	rec, _ := BuildRecord(salaried("emp-1", "E001", 10000), start, end, ledger, sampleAdjustment("emp-1"), Policy{IncludeOtherDeductions: true})

	checkInvariants(t, rec, true)
	if !rec.TotalDeductions.Equal(dec(1950)) {
		t.Fatalf("expected total deductions 1950, got %s", rec.TotalDeductions)
	}
	if !rec.NetPay.Equal(dec(9700)) {
		t.Fatalf("expected net 9700, got %s", rec.NetPay)
	}
}

func TestBuildRecordIgnoresPartialAbsence(t *testing.T) {
	start, end := period()
	adj := &adjustments.Adjustment{EmployeeID: "emp-1", AbsenceDays: dec(3)}

	rec, lines := BuildRecord(salaried("emp-1", "E001", 8000), start, end, StatutoryTotals{}, adj, Policy{})
	if !rec.Absences.IsZero() {
		t.Fatalf("expected zero absences without a daily amount, got %s", rec.Absences)
	}
	if !rec.NetPay.Equal(dec(8000)) {
		t.Fatalf("expected net 8000, got %s", rec.NetPay)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no overtime lines, got %d", len(lines))
	}
}

func TestApplyDeductionAddsToColumnAndRecomputes(t *testing.T) {
	rec := Record{BasicSalary: dec(10000), SSS: dec(1000)}
	Recompute(&rec, false)
	if !rec.NetPay.Equal(dec(9000)) {
		t.Fatalf("expected starting net 9000, got %s", rec.NetPay)
	}
	before := rec.TotalDeductions

	if err := ApplyDeduction(&rec, DeductionSSS, dec(500), false); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !rec.SSS.Equal(dec(1500)) {
		t.Fatalf("expected sss 1500, got %s", rec.SSS)
	}
	if !rec.NetPay.Equal(dec(8500)) {
		t.Fatalf("expected net 8500, got %s", rec.NetPay)
	}
	if !rec.TotalDeductions.Sub(before).Equal(dec(500)) {
		t.Fatalf("expected total deductions to grow by 500, got %s", rec.TotalDeductions.Sub(before))
	}
	checkInvariants(t, rec, false)
}

func TestApplyDeductionOtherGoesToLoans(t *testing.T) {
	rec := Record{BasicSalary: dec(5000)}
	if err := ApplyDeduction(&rec, DeductionOther, dec(120), false); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !rec.Loans.Equal(dec(120)) || !rec.NetPay.Equal(dec(4880)) {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestApplyDeductionRejectsBadInput(t *testing.T) {
	rec := Record{BasicSalary: dec(5000)}
	if err := ApplyDeduction(&rec, "bonus", dec(1), false); !errors.Is(err, ErrInvalidDeductionType) {
		t.Fatalf("expected invalid type, got %v", err)
	}
	if err := ApplyDeduction(&rec, DeductionSSS, dec(-1), false); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected negative amount error, got %v", err)
	}
}

func TestApplyEditValidatesBeforeChanging(t *testing.T) {
	rec := Record{BasicSalary: dec(5000), Status: StatusPendingPayment}
	Recompute(&rec, false)
	bad := "Archived"
	salary := dec(6000)
	if err := ApplyEdit(&rec, RecordEdit{BasicSalary: &salary, Status: &bad}, false); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected invalid status, got %v", err)
	}
	if !rec.BasicSalary.Equal(dec(5000)) {
		t.Fatalf("record changed on failed edit: %s", rec.BasicSalary)
	}

	tax := dec(300)
	if err := ApplyEdit(&rec, RecordEdit{BasicSalary: &salary, WithholdingTax: &tax}, false); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !rec.NetPay.Equal(dec(5700)) {
		t.Fatalf("expected net 5700, got %s", rec.NetPay)
	}
	checkInvariants(t, rec, false)
}

func TestRecordIDIsStablePerEmployeeAndPeriod(t *testing.T) {
	start, end := period()
	a := RecordID("emp-1", start, end)
	if a != RecordID("emp-1", start, end) {
		t.Fatal("expected identical ids for identical inputs")
	}
	if a == RecordID("emp-1", start, end.AddDate(0, 0, 1)) {
		t.Fatal("expected ids to differ across periods")
	}
	if a == RecordID("emp-2", start, end) {
		t.Fatal("expected ids to differ across employees")
	}
}

func TestPlanSkipsIneligibleEmployees(t *testing.T) {
	start, end := period()
	noSalary := employees.Employee{ID: "emp-2", Code: "E002", FullName: "No Salary"}
	set := adjustments.NewSet()
	if err := set.Merge(*sampleAdjustment("emp-2")); err != nil {
		t.Fatalf("merge: %v", err)
	}

	records, lines, issues := Plan(start, end, []employees.Employee{salaried("emp-1", "E001", 9000), noSalary}, nil, set, Policy{})
	if len(records) != 1 || records[0].EmployeeID != "emp-1" {
		t.Fatalf("expected one record for emp-1, got %+v", records)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no overtime lines, got %d", len(lines))
	}
	if len(issues) != 1 || issues[0].EmployeeID != "emp-2" {
		t.Fatalf("expected an issue for emp-2, got %+v", issues)
	}
}

func TestValidatePeriod(t *testing.T) {
	start, end := period()
	if err := ValidatePeriod(start, end); err != nil {
		t.Fatalf("expected valid period, got %v", err)
	}
	if err := ValidatePeriod(start, start); err != nil {
		t.Fatalf("expected single-day period to be valid, got %v", err)
	}
	if err := ValidatePeriod(end, start); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected invalid period, got %v", err)
	}
}

func TestBreakdownOmitsZeroLines(t *testing.T) {
	rec := Record{BasicSalary: dec(10000), SSS: dec(500), Allowances: dec(0)}
	Recompute(&rec, false)
	b := BreakdownOf(rec)
	if len(b.Earnings) != 1 || b.Earnings[0].Label != "Basic Salary" {
		t.Fatalf("unexpected earnings %+v", b.Earnings)
	}
	if len(b.Deductions) != 1 || b.Deductions[0].Label != "SSS" {
		t.Fatalf("unexpected deductions %+v", b.Deductions)
	}
	if !b.NetPay.Equal(dec(9500)) {
		t.Fatalf("expected net 9500, got %s", b.NetPay)
	}
}
