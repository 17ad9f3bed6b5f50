package attendance

import "errors"

var (
	ErrEmptyBatch    = errors.New("at least one attendance log is required")
	ErrBatchTooLarge = errors.New("attendance batch is too large")
	ErrInvalidLog    = errors.New("attendance log requires user_id and timestamp")
	ErrInvalidRange  = errors.New("from must not be after to")
)
