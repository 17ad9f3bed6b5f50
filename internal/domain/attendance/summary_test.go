package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestEventTypeForFallsBackToStatus(t *testing.T) {
	cases := []struct {
		punch Punch
		want  string
	}{
		{Punch{Status: 0}, EventTimeIn},
		{Punch{Status: 1}, EventTimeOut},
		{Punch{Status: 4}, EventOther},
		{Punch{Status: 0, EventType: EventTimeOut}, EventTimeOut},
	}
	for _, tc := range cases {
		if got := EventTypeFor(tc.punch); got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}

func TestDailySummaryComputesOvertimeInLocalTime(t *testing.T) {
	logs := []Log{
		// 08:00 and 18:30 at +08:00
		{UserID: "7", Timestamp: at("2026-03-02T00:00:00Z"), EventType: EventTimeIn},
		{UserID: "7", Timestamp: at("2026-03-02T00:05:00Z"), EventType: EventTimeIn},
		{UserID: "7", Timestamp: at("2026-03-02T10:30:00Z"), EventType: EventTimeOut},
		// 23:30 UTC on the 2nd is the 3rd locally
		{UserID: "7", Timestamp: at("2026-03-02T23:30:00Z"), EventType: EventTimeIn},
	}
	days := DailySummary(logs)
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	open, full := days[0], days[1]
	if open.Date != "2026-03-03" || open.Complete {
		t.Fatalf("expected incomplete 2026-03-03 first, got %+v", open)
	}
	if full.Date != "2026-03-02" || !full.Complete {
		t.Fatalf("expected complete 2026-03-02, got %+v", full)
	}
	if !full.Hours.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("expected 10.5 hours, got %s", full.Hours)
	}
	if !full.OvertimeHours.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("expected 2.5 overtime hours, got %s", full.OvertimeHours)
	}
}

func TestDailySummaryNoOvertimeUnderRegularHours(t *testing.T) {
	days := DailySummary([]Log{
		{UserID: "1", Timestamp: at("2026-03-02T01:00:00Z"), EventType: EventTimeIn},
		{UserID: "1", Timestamp: at("2026-03-02T08:00:00Z"), EventType: EventTimeOut},
	})
	if !days[0].OvertimeHours.IsZero() || !days[0].Hours.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("unexpected day %+v", days[0])
	}
}
