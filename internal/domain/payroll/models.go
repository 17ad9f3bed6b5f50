package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"paycore/internal/domain/adjustments"
)

type Record struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employeeId"`
	EmployeeCode    string          `json:"employeeCode"`
	EmployeeName    string          `json:"employeeName"`
	EmployeeEmail   string          `json:"employeeEmail,omitempty"`
	PayType         string          `json:"payType"`
	PeriodStart     time.Time       `json:"periodStart"`
	PeriodEnd       time.Time       `json:"periodEnd"`
	BasicSalary     decimal.Decimal `json:"basicSalary"`
	OvertimePay     decimal.Decimal `json:"overtimePay"`
	HolidayPay      decimal.Decimal `json:"holidayPay"`
	Allowances      decimal.Decimal `json:"allowances"`
	Absences        decimal.Decimal `json:"absences"`
	CashAdvance     decimal.Decimal `json:"cashAdvance"`
	SSS             decimal.Decimal `json:"sss"`
	PhilHealth      decimal.Decimal `json:"philhealth"`
	PagIBIG         decimal.Decimal `json:"pagibig"`
	WithholdingTax  decimal.Decimal `json:"withholdingTax"`
	Loans           decimal.Decimal `json:"loans"`
	OtherDeductions decimal.Decimal `json:"otherDeductions"`
	GrossPay        decimal.Decimal `json:"grossPay"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetPay          decimal.Decimal `json:"netPay"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type OvertimeLine struct {
	ID          string          `json:"id"`
	RecordID    string          `json:"payrollRecordId"`
	EmployeeID  string          `json:"employeeId"`
	Date        time.Time       `json:"date"`
	Hours       decimal.Decimal `json:"hours"`
	RatePerHour decimal.Decimal `json:"ratePerHour"`
	Amount      decimal.Decimal `json:"amount"`
	RequestID   string          `json:"requestId,omitempty"`
}

// StatutoryTotals are ledger sums by deduction column. Other-type ledger
// entries land in Loans.
type StatutoryTotals struct {
	SSS        decimal.Decimal `json:"sss"`
	PhilHealth decimal.Decimal `json:"philhealth"`
	PagIBIG    decimal.Decimal `json:"pagibig"`
	Loans      decimal.Decimal `json:"loans"`
}

type Policy struct {
	IncludeOtherDeductions bool
	Scope                  string
}

type RecordFilter struct {
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	EmployeeID  string
	Status      string
}

// RecordEdit carries a manual correction. Nil fields keep their value.
type RecordEdit struct {
	BasicSalary     *decimal.Decimal `json:"basicSalary"`
	OvertimePay     *decimal.Decimal `json:"overtimePay"`
	HolidayPay      *decimal.Decimal `json:"holidayPay"`
	Allowances      *decimal.Decimal `json:"allowances"`
	Absences        *decimal.Decimal `json:"absences"`
	CashAdvance     *decimal.Decimal `json:"cashAdvance"`
	SSS             *decimal.Decimal `json:"sss"`
	PhilHealth      *decimal.Decimal `json:"philhealth"`
	PagIBIG         *decimal.Decimal `json:"pagibig"`
	WithholdingTax  *decimal.Decimal `json:"withholdingTax"`
	Loans           *decimal.Decimal `json:"loans"`
	OtherDeductions *decimal.Decimal `json:"otherDeductions"`
	Status          *string          `json:"status"`
}

type GenerateInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Adjustments *adjustments.Set
	Confirm     bool
}

type GenerateResult struct {
	PeriodStart   time.Time           `json:"periodStart"`
	PeriodEnd     time.Time           `json:"periodEnd"`
	Records       []Record            `json:"records"`
	OvertimeLines int                 `json:"overtimeLines"`
	Replaced      int64               `json:"replaced"`
	Issues        []adjustments.Issue `json:"issues,omitempty"`
}

// RecordView pairs a record with the ledger entries created inside its period.
type RecordView struct {
	Record
	PeriodLedgerDeductions decimal.Decimal `json:"periodLedgerDeductions"`
	NetAfterDeductions     decimal.Decimal `json:"netAfterDeductions"`
}
