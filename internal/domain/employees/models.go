package employees

import (
	"time"

	"github.com/shopspring/decimal"
)

type Employee struct {
	ID               string              `json:"id"`
	Code             string              `json:"employeeCode"`
	FullName         string              `json:"fullName"`
	Email            string              `json:"email"`
	BaseSalary       decimal.NullDecimal `json:"baseSalary"`
	Allowance        decimal.Decimal     `json:"allowance"`
	PayType          string              `json:"payType"`
	Status           string              `json:"status"`
	Department       string              `json:"department,omitempty"`
	Position         string              `json:"position,omitempty"`
	SSSNumber        string              `json:"sssNumber,omitempty"`
	PhilHealthNumber string              `json:"philhealthNumber,omitempty"`
	PagIBIGNumber    string              `json:"pagibigNumber,omitempty"`
	LeaveCredits     decimal.Decimal     `json:"leaveCredits"`
	UserID           string              `json:"userId,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// Eligible reports whether payroll generation includes the employee.
func (e Employee) Eligible() bool {
	return e.BaseSalary.Valid
}

// DirectoryUpdate carries the fields an external directory supplied. Nil
// fields are left untouched.
type DirectoryUpdate struct {
	FullName         *string
	Email            *string
	Department       *string
	Position         *string
	LeaveCredits     *decimal.Decimal
	SSSNumber        *string
	PhilHealthNumber *string
	PagIBIGNumber    *string
}

func (u DirectoryUpdate) Fields() []string {
	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(u.FullName != nil, "full_name")
	add(u.Email != nil, "email")
	add(u.Department != nil, "department")
	add(u.Position != nil, "position")
	add(u.LeaveCredits != nil, "leave_credits")
	add(u.SSSNumber != nil, "sss")
	add(u.PhilHealthNumber != nil, "philhealth")
	add(u.PagIBIGNumber != nil, "pagibig")
	return fields
}

func (u DirectoryUpdate) Empty() bool {
	return len(u.Fields()) == 0
}
