package notifications

import "time"

// Target selects records by explicit id or by period. Record ids win when
// both are given.
type Target struct {
	RecordIDs   []string
	PeriodStart *time.Time
	PeriodEnd   *time.Time
}

type Detail struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Employee string `json:"employee"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

type Summary struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Details []Detail `json:"details"`
}

type Delivery struct {
	RecordID string    `json:"recordId"`
	Email    string    `json:"email"`
	Subject  string    `json:"subject"`
	Success  bool      `json:"success"`
	Error    string    `json:"error,omitempty"`
	SentAt   time.Time `json:"sentAt"`
}
