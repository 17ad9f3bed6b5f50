package notifications

import "errors"

var (
	ErrNoTarget  = errors.New("either record_ids or period_start and period_end are required")
	ErrNoRecords = errors.New("no payroll records matched the request")
)
