package notifications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycore/internal/domain/payroll"
	"paycore/internal/platform/alerts"
	"paycore/internal/platform/events"
)

type memoryDeliveries struct {
	mu   sync.Mutex
	logs []Delivery
	err  error
}

func (m *memoryDeliveries) LogDeliveries(_ context.Context, deliveries []Delivery) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, deliveries...)
	return nil
}

func (m *memoryDeliveries) ListDeliveries(_ context.Context, recordID string) ([]Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Delivery
	for _, d := range m.logs {
		if d.RecordID == recordID {
			out = append(out, d)
		}
	}
	return out, nil
}

type recordSource struct {
	records []payroll.Record
}

func (r *recordSource) List(_ context.Context, filter payroll.RecordFilter) ([]payroll.Record, error) {
	var out []payroll.Record
	for _, rec := range r.records {
		if filter.PeriodStart != nil && !rec.PeriodStart.Equal(*filter.PeriodStart) {
			continue
		}
		if filter.PeriodEnd != nil && !rec.PeriodEnd.Equal(*filter.PeriodEnd) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *recordSource) Get(_ context.Context, id string) (payroll.Record, error) {
	for _, rec := range r.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return payroll.Record{}, payroll.ErrNotFound
}

type captureMailer struct {
	mu       sync.Mutex
	sent     map[string]string
	subjects []string
	failTo   string
}

func (m *captureMailer) Send(_ context.Context, _, to, subject, body string) error {
	if to == m.failTo {
		return errors.New("mailbox unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sent == nil {
		m.sent = map[string]string{}
	}
	m.sent[to] = body
	m.subjects = append(m.subjects, subject)
	return nil
}

var (
	periodStart = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
)

func sampleRecords(n int) []payroll.Record {
	out := make([]payroll.Record, 0, n)
	for i := 1; i <= n; i++ {
		rec := payroll.Record{
			ID:            fmt.Sprintf("rec-%d", i),
			EmployeeID:    fmt.Sprintf("emp-%d", i),
			EmployeeName:  fmt.Sprintf("Employee %d", i),
			EmployeeEmail: fmt.Sprintf("emp%d@example.com", i),
			PeriodStart:   periodStart,
			PeriodEnd:     periodEnd,
			BasicSalary:   decimal.NewFromInt(10000),
			SSS:           decimal.NewFromInt(500),
		}
		payroll.Recompute(&rec, false)
		out = append(out, rec)
	}
	return out
}

func TestDispatchReportsMissingEmailPerRecord(t *testing.T) {
	records := sampleRecords(5)
	records[2].EmployeeEmail = ""
	store := &memoryDeliveries{}
	mailer := &captureMailer{}
	pub := &events.Recorder{}
	rec := &alerts.Recorder{}
	svc := New(store, &recordSource{records: records}, mailer, Options{Concurrency: 2, Publisher: pub, Alerts: rec})

	start, end := periodStart, periodEnd
	summary, err := svc.Dispatch(context.Background(), Target{PeriodStart: &start, PeriodEnd: &end})
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 4, summary.Success)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Details, 5)
	assert.False(t, summary.Details[2].Success)
	assert.Equal(t, ErrMsgMissingEmail, summary.Details[2].Error)
	assert.Equal(t, "rec-3", summary.Details[2].ID)

	assert.Len(t, mailer.sent, 4)
	assert.Len(t, store.logs, 5)
	assert.Equal(t, []string{events.TypeNotificationsSent}, pub.Types())
	assert.Len(t, rec.Messages, 1)
}

func TestDispatchByRecordIDsMarksUnknownIDs(t *testing.T) {
	records := sampleRecords(2)
	store := &memoryDeliveries{}
	svc := New(store, &recordSource{records: records}, &captureMailer{}, Options{})

	summary, err := svc.Dispatch(context.Background(), Target{RecordIDs: []string{"rec-1", "missing"}})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Success)
	assert.Equal(t, ErrMsgRecordNotFound, summary.Details[1].Error)
	// unknown ids never reach the delivery log
	assert.Len(t, store.logs, 1)
}

func TestDispatchSendFailureIsIsolated(t *testing.T) {
	records := sampleRecords(3)
	mailer := &captureMailer{failTo: "emp2@example.com"}
	svc := New(&memoryDeliveries{}, &recordSource{records: records}, mailer, Options{})

	summary, err := svc.Dispatch(context.Background(), Target{RecordIDs: []string{"rec-1", "rec-2", "rec-3"}})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Success)
	assert.Equal(t, "mailbox unavailable", summary.Details[1].Error)
}

func TestDispatchRequiresTarget(t *testing.T) {
	svc := New(&memoryDeliveries{}, &recordSource{}, &captureMailer{}, Options{})

	_, err := svc.Dispatch(context.Background(), Target{})
	assert.ErrorIs(t, err, ErrNoTarget)

	start, end := periodStart, periodEnd
	_, err = svc.Dispatch(context.Background(), Target{PeriodStart: &start, PeriodEnd: &end})
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestDispatchSurvivesDeliveryLogFailure(t *testing.T) {
	svc := New(&memoryDeliveries{err: errors.New("db down")}, &recordSource{records: sampleRecords(1)}, &captureMailer{}, Options{})

	summary, err := svc.Dispatch(context.Background(), Target{RecordIDs: []string{"rec-1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Success)
}

func TestRenderPayslipUsesStoredValues(t *testing.T) {
	rec := sampleRecords(1)[0]
	body, err := RenderPayslip(rec)
	require.NoError(t, err)
	assert.Contains(t, body, "Employee 1")
	assert.Contains(t, body, "10000.00")
	assert.Contains(t, body, "9500.00")
	assert.False(t, strings.Contains(body, "Holiday Pay"))
	assert.Equal(t, "Payslip - Employee 1 (2026-03-15)", Subject(rec))
}

func TestDeliveriesRequiresKnownRecord(t *testing.T) {
	store := &memoryDeliveries{logs: []Delivery{{RecordID: "rec-1", Success: true}}}
	svc := New(store, &recordSource{records: sampleRecords(1)}, &captureMailer{}, Options{})

	got, err := svc.Deliveries(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.Deliveries(context.Background(), "nope")
	assert.ErrorIs(t, err, payroll.ErrNotFound)
}
