package adjustments

import "errors"

var (
	ErrMissingEmployee = errors.New("adjustment employee is required")
	ErrNegativeAmount  = errors.New("adjustment amounts must not be negative")
	ErrInvalidPeriod   = errors.New("period end must not be before period start")
)
