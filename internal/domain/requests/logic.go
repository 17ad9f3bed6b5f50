package requests

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var transitions = map[string][]string{
	StatusPending: {StatusApproved, StatusRejected, StatusCancelled},
}

// CanTransition reports whether a request in status from may move to to.
// Approved, Rejected and Cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// ParseClock returns minutes since midnight for HH:MM or HH:MM:SS.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	if len(parts) == 3 {
		seconds, err := strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
		}
	}
	return hours*60 + minutes, nil
}

// SpanHours is the same-day duration between start and end. Spans that cross
// midnight or are empty are rejected rather than folded.
func SpanHours(start, end string) (decimal.Decimal, error) {
	from, err := ParseClock(start)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := ParseClock(end)
	if err != nil {
		return decimal.Zero, err
	}
	if to <= from {
		return decimal.Zero, fmt.Errorf("%w: %s-%s", ErrInvalidTimeSpan, start, end)
	}
	return decimal.NewFromInt(int64(to - from)).Div(decimal.NewFromInt(60)), nil
}

func validateSubmit(in SubmitInput) error {
	missing := []string{}
	if strings.TrimSpace(in.EmployeeID) == "" {
		missing = append(missing, "employee_id")
	}
	if strings.TrimSpace(in.Type) == "" {
		missing = append(missing, "request_type")
	}
	if in.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(in.TimeStart) == "" {
		missing = append(missing, "time_start")
	}
	if strings.TrimSpace(in.TimeEnd) == "" {
		missing = append(missing, "time_end")
	}
	if strings.TrimSpace(in.Reason) == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	if in.Type != TypeOvertime && in.Type != TypeHolidayWork {
		return fmt.Errorf("%w: %s", ErrInvalidType, in.Type)
	}
	_, err := SpanHours(in.TimeStart, in.TimeEnd)
	return err
}
