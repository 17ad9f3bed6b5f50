package adjustments

import (
	"time"

	"github.com/shopspring/decimal"
)

type OvertimeEntry struct {
	Date        time.Time       `json:"date"`
	Hours       decimal.Decimal `json:"hours"`
	RatePerHour decimal.Decimal `json:"ratePerHour"`
	RequestID   string          `json:"requestId,omitempty" validate:"omitempty,uuid"`
}

func (e OvertimeEntry) Amount() decimal.Decimal {
	return e.Hours.Mul(e.RatePerHour)
}

// Adjustment holds one employee's per-run inputs. It lives only for the
// duration of a generation run. Replace and Clear select how a manual
// adjustment lands on the built set.
type Adjustment struct {
	EmployeeID          string          `json:"employeeId" validate:"required"`
	AbsenceDays         decimal.Decimal `json:"absenceDays"`
	AbsenceAmountPerDay decimal.Decimal `json:"absenceAmountPerDay"`
	HolidayDate         *time.Time      `json:"holidayDate,omitempty"`
	HolidayPay          decimal.Decimal `json:"holidayPay"`
	OvertimeEntries     []OvertimeEntry `json:"overtimeEntries,omitempty" validate:"max=200,dive"`
	CashAdvance         decimal.Decimal `json:"cashAdvance"`
	OtherDeductions     decimal.Decimal `json:"otherDeductions"`
	Replace             bool            `json:"replace,omitempty"`
	Clear               bool            `json:"clear,omitempty"`
}

// Issue describes a request that could not be folded into an adjustment.
type Issue struct {
	RequestID  string `json:"requestId"`
	EmployeeID string `json:"employeeId"`
	Reason     string `json:"reason"`
}
