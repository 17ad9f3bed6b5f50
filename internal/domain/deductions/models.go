package deductions

import (
	"time"

	"github.com/shopspring/decimal"

	"paycore/internal/domain/payroll"
)

type Entry struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	EmployeeCode string          `json:"employeeCode,omitempty"`
	EmployeeName string          `json:"employeeName,omitempty"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Notes        string          `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type EntryInput struct {
	EmployeeID string          `json:"employeeId" validate:"required"`
	Type       string          `json:"type" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Notes      string          `json:"notes"`
}

// RecordResult reports the appended entry and the pay record it was folded
// into, if any.
type RecordResult struct {
	Entry     Entry           `json:"entry"`
	Applied   bool            `json:"applied"`
	AppliedTo *payroll.Record `json:"appliedTo,omitempty"`
}

type BulkInput struct {
	EmployeeID string          `json:"employeeId" validate:"required"`
	SSS        decimal.Decimal `json:"sss"`
	PhilHealth decimal.Decimal `json:"philhealth"`
	PagIBIG    decimal.Decimal `json:"pagibig"`
	Other      decimal.Decimal `json:"other"`
	Notes      string          `json:"notes"`
}

// Inputs expands the bulk form into one entry per non-zero amount.
func (b BulkInput) Inputs() []EntryInput {
	var out []EntryInput
	for _, item := range []struct {
		kind   string
		amount decimal.Decimal
	}{
		{payroll.DeductionSSS, b.SSS},
		{payroll.DeductionPhilHealth, b.PhilHealth},
		{payroll.DeductionPagIBIG, b.PagIBIG},
		{payroll.DeductionOther, b.Other},
	} {
		if item.amount.IsZero() {
			continue
		}
		out = append(out, EntryInput{EmployeeID: b.EmployeeID, Type: item.kind, Amount: item.amount, Notes: b.Notes})
	}
	return out
}

type ItemResult struct {
	Type      string `json:"type"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	EntryID   string `json:"entryId,omitempty"`
	AppliedTo string `json:"appliedTo,omitempty"`
}

type BulkResult struct {
	Total   int          `json:"total"`
	Success int          `json:"success"`
	Failed  int          `json:"failed"`
	Items   []ItemResult `json:"items"`
}

type EmployeeTotal struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeCode string          `json:"employeeCode"`
	EmployeeName string          `json:"employeeName"`
	SSS          decimal.Decimal `json:"sss"`
	PhilHealth   decimal.Decimal `json:"philhealth"`
	PagIBIG      decimal.Decimal `json:"pagibig"`
	Other        decimal.Decimal `json:"other"`
	Total        decimal.Decimal `json:"total"`
	Entries      int             `json:"entries"`
}

type Summary struct {
	Employees  []EmployeeTotal `json:"employees"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	Entries    int             `json:"entries"`
}
