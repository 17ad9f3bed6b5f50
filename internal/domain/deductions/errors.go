package deductions

import "errors"

var (
	ErrNotFound        = errors.New("deduction not found")
	ErrMissingEmployee = errors.New("employee_id is required")
	ErrInvalidType     = errors.New("type must be one of sss, philhealth, pagibig, other")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrEmptyBulk       = errors.New("at least one deduction amount is required")
)
