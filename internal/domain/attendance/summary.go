package attendance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"paycore/internal/domain/payroll"
)

// EventTypeFor resolves the event vocabulary for a punch, falling back to the
// device status code.
func EventTypeFor(p Punch) string {
	if p.EventType != "" {
		return p.EventType
	}
	switch p.Status {
	case statusCheckIn:
		return EventTimeIn
	case statusCheckOut:
		return EventTimeOut
	default:
		return EventOther
	}
}

// DailySummary groups logs per user and local calendar day. Days without both
// ends report zero hours and Complete=false.
func DailySummary(logs []Log) []Day {
	type key struct{ user, date string }
	days := map[key]*Day{}
	for _, l := range logs {
		local := l.Timestamp.In(payroll.Location)
		k := key{l.UserID, local.Format("2006-01-02")}
		d, ok := days[k]
		if !ok {
			d = &Day{UserID: l.UserID, Date: k.date}
			days[k] = d
		}
		switch l.EventType {
		case EventTimeIn:
			if d.TimeIn == nil || local.Before(*d.TimeIn) {
				t := local
				d.TimeIn = &t
			}
		case EventTimeOut:
			if d.TimeOut == nil || local.After(*d.TimeOut) {
				t := local
				d.TimeOut = &t
			}
		}
	}

	out := make([]Day, 0, len(days))
	for _, d := range days {
		if d.TimeIn != nil && d.TimeOut != nil && d.TimeOut.After(*d.TimeIn) {
			d.Complete = true
			d.Hours = hoursBetween(*d.TimeIn, *d.TimeOut)
			if over := d.Hours.Sub(decimal.NewFromInt(regularHours)); over.IsPositive() {
				d.OvertimeHours = over
			}
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func hoursBetween(from, to time.Time) decimal.Decimal {
	minutes := int64(to.Sub(from) / time.Minute)
	return decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60)).Round(2)
}
