package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Punch is one event pulled from a time clock.
type Punch struct {
	UserID    string    `json:"user_id" validate:"required"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
	Status    int       `json:"status"`
	EventType string    `json:"event_type,omitempty" validate:"omitempty,oneof=time_in time_out other"`
}

type Log struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
	Status    int       `json:"status"`
	EventType string    `json:"eventType"`
	DeviceID  string    `json:"deviceId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type IngestResult struct {
	Received   int `json:"received"`
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
}

// Day pairs the first time-in with the last time-out of one calendar day.
type Day struct {
	UserID        string          `json:"userId"`
	Date          string          `json:"date"`
	TimeIn        *time.Time      `json:"timeIn,omitempty"`
	TimeOut       *time.Time      `json:"timeOut,omitempty"`
	Hours         decimal.Decimal `json:"hours"`
	OvertimeHours decimal.Decimal `json:"overtimeHours"`
	Complete      bool            `json:"complete"`
}

type LogFilter struct {
	UserID string
	From   time.Time
	To     time.Time
}
