package payroll

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("payroll record not found")
	ErrInvalidPeriod         = errors.New("period_start must be on or before period_end")
	ErrNoEligibleEmployees   = errors.New("no records generated: no employee has a base salary")
	ErrPeriodExists          = errors.New("payroll records already exist for this period")
	ErrInvalidStatus         = errors.New("invalid payroll status")
	ErrInvalidDeductionType  = errors.New("invalid deduction type")
	ErrNegativeAmount        = errors.New("amounts must not be negative")
	ErrPeriodGenerationInUse = errors.New("payroll generation for this period is already running")
)

// PeriodExistsError is returned when a period already holds records and the
// caller did not confirm regeneration.
type PeriodExistsError struct {
	Existing int
}

func (e *PeriodExistsError) Error() string {
	return fmt.Sprintf("%d payroll records already exist for this period; confirm to regenerate", e.Existing)
}

func (e *PeriodExistsError) Unwrap() error {
	return ErrPeriodExists
}
