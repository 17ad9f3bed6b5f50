package requests

import "errors"

var (
	ErrNotFound        = errors.New("request not found")
	ErrInvalidState    = errors.New("request is no longer pending")
	ErrForbidden       = errors.New("request belongs to another employee")
	ErrMissingField    = errors.New("required field missing")
	ErrInvalidType     = errors.New("unknown request type")
	ErrInvalidTime     = errors.New("time must be HH:MM or HH:MM:SS")
	ErrInvalidTimeSpan = errors.New("time_end must be after time_start on the same day")
)
