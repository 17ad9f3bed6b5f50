package adjustments

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycore/internal/domain/requests"
)

var (
	periodStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func overtime(id, employeeID string, d int, start, end string) requests.Request {
	return requests.Request{ID: id, EmployeeID: employeeID, Type: requests.TypeOvertime, Date: day(d),
		TimeStart: start, TimeEnd: end, Status: requests.StatusApproved}
}

type fakeSource struct {
	approved []requests.Request
	byID     map[string]requests.Request
}

func (f fakeSource) ApprovedInRange(context.Context, time.Time, time.Time) ([]requests.Request, error) {
	return f.approved, nil
}

func (f fakeSource) ByIDs(_ context.Context, ids []string) ([]requests.Request, error) {
	var out []requests.Request
	for _, id := range ids {
		if req, ok := f.byID[id]; ok {
			out = append(out, req)
		}
	}
	return out, nil
}

func TestAutoFillBuildsOvertimeAndHolidayEntries(t *testing.T) {
	holiday := requests.Request{ID: "r3", EmployeeID: "emp-1", Type: requests.TypeHolidayWork, Date: day(9),
		TimeStart: "08:00", TimeEnd: "17:00", Status: requests.StatusApproved}
	src := fakeSource{approved: []requests.Request{
		overtime("r1", "emp-1", 3, "08:00", "17:00"),
		overtime("r2", "emp-1", 4, "18:00", "20:00"),
		holiday,
		overtime("r4", "emp-2", 5, "17:00", "19:30"),
	}}

	set, issues, err := NewService(src).Build(context.Background(), periodStart, periodEnd, true, nil, nil)
	require.NoError(t, err)
	require.Empty(t, issues)
	require.Equal(t, 2, set.Len())

	emp1, ok := set.Get("emp-1")
	require.True(t, ok)
	require.Len(t, emp1.OvertimeEntries, 2)
	assert.Equal(t, "9", emp1.OvertimeEntries[0].Hours.String())
	assert.True(t, emp1.OvertimeEntries[0].RatePerHour.IsZero())
	assert.Equal(t, "r1", emp1.OvertimeEntries[0].RequestID)
	require.NotNil(t, emp1.HolidayDate)
	assert.True(t, emp1.HolidayDate.Equal(day(9)))
	assert.True(t, emp1.HolidayPay.IsZero())

	emp2, _ := set.Get("emp-2")
	assert.Equal(t, "2.5", emp2.OvertimeEntries[0].Hours.String())
}

func TestStoredOvernightSpanIsReportedNotFolded(t *testing.T) {
	src := fakeSource{approved: []requests.Request{overtime("r1", "emp-1", 3, "22:00", "06:00")}}

	set, issues, err := NewService(src).Build(context.Background(), periodStart, periodEnd, true, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Len())
	require.Len(t, issues, 1)
	assert.Equal(t, "r1", issues[0].RequestID)
	assert.Contains(t, issues[0].Reason, "time_end must be after time_start")
}

func TestManualSelectionAppendsToExistingAdjustment(t *testing.T) {
	r1 := overtime("r1", "emp-1", 3, "17:00", "19:00")
	r2 := overtime("r2", "emp-1", 6, "17:00", "18:00")
	pending := overtime("r3", "emp-1", 7, "17:00", "18:00")
	pending.Status = requests.StatusPending
	src := fakeSource{byID: map[string]requests.Request{"r1": r1, "r2": r2, "r3": pending}}

	manual := []Adjustment{{
		EmployeeID:      "emp-1",
		CashAdvance:     decimal.NewFromInt(500),
		OvertimeEntries: []OvertimeEntry{{Date: day(8), Hours: decimal.NewFromInt(1), RatePerHour: decimal.NewFromInt(100)}},
	}}
	set, issues, err := NewService(src).Build(context.Background(), periodStart, periodEnd, false, []string{"r1", "r2", "r3", "missing"}, manual)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	adj, _ := set.Get("emp-1")
	require.Len(t, adj.OvertimeEntries, 3)
	assert.Equal(t, "500", adj.CashAdvance.String())
}

func TestAutoFillAndSelectionDoNotDoubleCountARequest(t *testing.T) {
	r1 := overtime("r1", "emp-1", 3, "17:00", "19:00")
	src := fakeSource{approved: []requests.Request{r1}, byID: map[string]requests.Request{"r1": r1}}

	set, _, err := NewService(src).Build(context.Background(), periodStart, periodEnd, true, []string{"r1"}, nil)
	require.NoError(t, err)
	adj, _ := set.Get("emp-1")
	assert.Len(t, adj.OvertimeEntries, 1)
}

func TestRequestOutsidePeriodIsSkipped(t *testing.T) {
	set := NewSet()
	issues := MergeRequests(set, []requests.Request{overtime("r1", "emp-1", 20, "17:00", "18:00")}, periodStart, periodEnd)
	require.Len(t, issues, 1)
	assert.Equal(t, 0, set.Len())
}

func TestBuildRejectsInvertedPeriod(t *testing.T) {
	_, _, err := NewService(fakeSource{}).Build(context.Background(), periodEnd, periodStart, true, nil, nil)
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestManualRateFillsAutoFilledOvertime(t *testing.T) {
	r1 := overtime("r1", "emp-1", 3, "17:00", "19:00")
	src := fakeSource{approved: []requests.Request{r1}, byID: map[string]requests.Request{"r1": r1}}
	manual := []Adjustment{{
		EmployeeID:      "emp-1",
		OvertimeEntries: []OvertimeEntry{{RequestID: "r1", RatePerHour: decimal.NewFromInt(150)}},
	}}

	set, issues, err := NewService(src).Build(context.Background(), periodStart, periodEnd, true, nil, manual)
	require.NoError(t, err)
	require.Empty(t, issues)

	adj, _ := set.Get("emp-1")
	require.Len(t, adj.OvertimeEntries, 1)
	assert.Equal(t, "2", adj.OvertimeEntries[0].Hours.String())
	assert.Equal(t, "150", adj.OvertimeEntries[0].RatePerHour.String())
	assert.Equal(t, "300", adj.OvertimeEntries[0].Amount().String())
}

func TestManualLinkToUnknownOrUnapprovedRequestIsReported(t *testing.T) {
	pending := overtime("r2", "emp-1", 4, "17:00", "18:00")
	pending.Status = requests.StatusPending
	other := overtime("r3", "emp-2", 4, "17:00", "18:00")
	src := fakeSource{byID: map[string]requests.Request{"r2": pending, "r3": other}}
	manual := []Adjustment{{
		EmployeeID: "emp-1",
		OvertimeEntries: []OvertimeEntry{
			{RequestID: "r9", Hours: decimal.NewFromInt(1), RatePerHour: decimal.NewFromInt(100)},
			{RequestID: "r2", Hours: decimal.NewFromInt(1), RatePerHour: decimal.NewFromInt(100)},
			{RequestID: "r3", Hours: decimal.NewFromInt(1), RatePerHour: decimal.NewFromInt(100)},
			{Date: day(5), Hours: decimal.NewFromInt(2), RatePerHour: decimal.NewFromInt(100)},
		},
	}}

	set, issues, err := NewService(src).Build(context.Background(), periodStart, periodEnd, false, nil, manual)
	require.NoError(t, err)
	require.Len(t, issues, 3)
	assert.Equal(t, "r9", issues[0].RequestID)
	assert.Contains(t, issues[2].Reason, "another employee")

	adj, _ := set.Get("emp-1")
	require.Len(t, adj.OvertimeEntries, 1)
	assert.Empty(t, adj.OvertimeEntries[0].RequestID)
	assert.Len(t, manual[0].OvertimeEntries, 4)
}

func TestManualReplaceAndClearOverrideAutoFill(t *testing.T) {
	src := fakeSource{approved: []requests.Request{
		overtime("r1", "emp-1", 3, "17:00", "19:00"),
		overtime("r2", "emp-2", 3, "17:00", "19:00"),
	}}
	manual := []Adjustment{
		{EmployeeID: "emp-1", Replace: true, CashAdvance: decimal.NewFromInt(200)},
		{EmployeeID: "emp-2", Clear: true},
	}

	set, _, err := NewService(src).Build(context.Background(), periodStart, periodEnd, true, nil, manual)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())

	adj, ok := set.Get("emp-1")
	require.True(t, ok)
	assert.Empty(t, adj.OvertimeEntries)
	assert.Equal(t, "200", adj.CashAdvance.String())
	assert.False(t, adj.Replace)
	_, ok = set.Get("emp-2")
	assert.False(t, ok)
}
