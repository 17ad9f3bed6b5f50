package payroll

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paycore/internal/domain/adjustments"
	"paycore/internal/domain/employees"
	"paycore/internal/platform/alerts"
	"paycore/internal/platform/db"
	"paycore/internal/platform/events"
)

type heldLocker struct{}

func (heldLocker) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	return nil, db.ErrLockHeld
}

type memoryFiles struct {
	keys []string
}

func (f *memoryFiles) Put(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.keys = append(f.keys, key)
	return key, nil
}

func adjustmentSet(t *testing.T, adjs ...adjustments.Adjustment) *adjustments.Set {
	t.Helper()
	set := adjustments.NewSet()
	for _, adj := range adjs {
		require.NoError(t, set.Merge(adj))
	}
	return set
}

func phtDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, Location)
}

func TestGenerateCreatesOneRecordPerEligibleEmployee(t *testing.T) {
	store := newMemoryStore(
		salaried("emp-1", "E001", 10000),
		employees.Employee{ID: "emp-2", Code: "E002", FullName: "Unsalaried"},
		salaried("emp-3", "E003", 12000),
	)
	recorder := &events.Recorder{}
	svc := NewService(store, Options{Publisher: recorder})
	start, end := period()

	result, err := svc.Generate(context.Background(), GenerateInput{
		PeriodStart: start,
		PeriodEnd:   end,
		Adjustments: adjustmentSet(t, *sampleAdjustment("emp-1")),
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 2, result.OvertimeLines)
	assert.Equal(t, int64(0), result.Replaced)
	for _, rec := range result.Records {
		checkInvariants(t, rec, false)
		assert.Equal(t, StatusPendingPayment, rec.Status)
	}

	stored, err := svc.List(context.Background(), RecordFilter{PeriodStart: &start, PeriodEnd: &end})
	require.NoError(t, err)
	require.Len(t, stored, 2)

	lines, err := svc.Overtime(context.Background(), RecordID("emp-1", start, end))
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Equal(t, []string{events.TypePeriodGenerated}, recorder.Types())
}

func TestGenerateRequiresConfirmationForExistingPeriod(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	svc := NewService(store, Options{})
	start, end := period()
	ctx := context.Background()

	_, err := svc.Generate(ctx, GenerateInput{PeriodStart: start, PeriodEnd: end})
	require.NoError(t, err)

	_, err = svc.Generate(ctx, GenerateInput{PeriodStart: start, PeriodEnd: end, Adjustments: adjustmentSet(t, *sampleAdjustment("emp-1"))})
	require.ErrorIs(t, err, ErrPeriodExists)
	var exists *PeriodExistsError
	require.True(t, errors.As(err, &exists))
	assert.Equal(t, 1, exists.Existing)

	rec, err := svc.Get(ctx, RecordID("emp-1", start, end))
	require.NoError(t, err)
	assert.True(t, rec.OvertimePay.IsZero(), "unconfirmed regeneration must not change stored records")
	assert.Equal(t, 1, store.rollbacks)
}

func TestRegenerationWithSameInputsIsIdempotent(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000), salaried("emp-3", "E003", 12000))
	store.ledger = []ledgerEntry{{EmployeeID: "emp-1", Kind: DeductionSSS, Amount: dec(300), CreatedAt: phtDay(2026, 2, 20)}}
	notifier := &alerts.Recorder{}
	svc := NewService(store, Options{Alerts: notifier})
	start, end := period()
	ctx := context.Background()
	input := func() GenerateInput {
		return GenerateInput{PeriodStart: start, PeriodEnd: end, Adjustments: adjustmentSet(t, *sampleAdjustment("emp-3")), Confirm: true}
	}

	first, err := svc.Generate(ctx, input())
	require.NoError(t, err)
	before, err := svc.List(ctx, RecordFilter{PeriodStart: &start, PeriodEnd: &end})
	require.NoError(t, err)

	second, err := svc.Generate(ctx, input())
	require.NoError(t, err)
	after, err := svc.List(ctx, RecordFilter{PeriodStart: &start, PeriodEnd: &end})
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, before, after)
	assert.Equal(t, int64(2), second.Replaced)
	assert.Len(t, store.overtime[RecordID("emp-3", start, end)], 2)
	require.Len(t, notifier.Messages, 1)
	assert.Contains(t, notifier.Messages[0], "regenerated")
}

func TestGenerateWithoutEligibleEmployeesReportsNoRecords(t *testing.T) {
	store := newMemoryStore(employees.Employee{ID: "emp-2", Code: "E002"})
	svc := NewService(store, Options{})
	start, end := period()

	_, err := svc.Generate(context.Background(), GenerateInput{PeriodStart: start, PeriodEnd: end})
	require.ErrorIs(t, err, ErrNoEligibleEmployees)
	assert.Equal(t, 0, store.commits)
	assert.Empty(t, store.records)
}

func TestFailedRegenerationKeepsPreviousRecords(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	svc := NewService(store, Options{})
	start, end := period()
	ctx := context.Background()

	_, err := svc.Generate(ctx, GenerateInput{PeriodStart: start, PeriodEnd: end})
	require.NoError(t, err)

	store.insertErr = errors.New("connection reset")
	_, err = svc.Generate(ctx, GenerateInput{PeriodStart: start, PeriodEnd: end, Confirm: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert payroll records")

	records, err := svc.List(ctx, RecordFilter{PeriodStart: &start, PeriodEnd: &end})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestGenerateRejectsInvalidPeriod(t *testing.T) {
	svc := NewService(newMemoryStore(), Options{})
	start, end := period()
	_, err := svc.Generate(context.Background(), GenerateInput{PeriodStart: end, PeriodEnd: start})
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestGenerateReportsHeldLock(t *testing.T) {
	svc := NewService(newMemoryStore(salaried("emp-1", "E001", 10000)), Options{Locker: heldLocker{}})
	start, end := period()
	_, err := svc.Generate(context.Background(), GenerateInput{PeriodStart: start, PeriodEnd: end})
	require.ErrorIs(t, err, ErrPeriodGenerationInUse)
}

func TestCumulativeLedgerCountsDeductionInEveryLaterPeriod(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	store.ledger = []ledgerEntry{
		{EmployeeID: "emp-1", Kind: DeductionSSS, Amount: dec(100), CreatedAt: phtDay(2026, 1, 5)},
		{EmployeeID: "emp-1", Kind: DeductionPagIBIG, Amount: dec(50), CreatedAt: phtDay(2026, 2, 10)},
	}
	svc := NewService(store, Options{Policy: Policy{Scope: ScopeCumulative}})
	ctx := context.Background()

	first, err := svc.Generate(ctx, GenerateInput{PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), PeriodEnd: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	second, err := svc.Generate(ctx, GenerateInput{PeriodStart: time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), PeriodEnd: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	assert.True(t, first.Records[0].SSS.Equal(dec(100)))
	assert.True(t, second.Records[0].SSS.Equal(dec(100)), "cumulative scope counts the same entry again")
	assert.True(t, second.Records[0].PagIBIG.IsZero(), "entries created after period end are excluded")
}

func TestPeriodScopedLedgerCountsDeductionOnce(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	store.ledger = []ledgerEntry{{EmployeeID: "emp-1", Kind: DeductionSSS, Amount: dec(100), CreatedAt: phtDay(2026, 1, 5)}}
	svc := NewService(store, Options{Policy: Policy{Scope: ScopePeriod}})
	ctx := context.Background()

	first, err := svc.Generate(ctx, GenerateInput{PeriodStart: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), PeriodEnd: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	second, err := svc.Generate(ctx, GenerateInput{PeriodStart: time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), PeriodEnd: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	assert.True(t, first.Records[0].SSS.Equal(dec(100)))
	assert.True(t, second.Records[0].SSS.IsZero())
}

func TestEditRecomputesDerivedFields(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	recorder := &events.Recorder{}
	svc := NewService(store, Options{Publisher: recorder})
	start, end := period()
	ctx := context.Background()
	_, err := svc.Generate(ctx, GenerateInput{PeriodStart: start, PeriodEnd: end})
	require.NoError(t, err)

	overtime := dec(750)
	cash := dec(250)
	rec, err := svc.Edit(ctx, RecordID("emp-1", start, end), RecordEdit{OvertimePay: &overtime, CashAdvance: &cash})
	require.NoError(t, err)
	assert.True(t, rec.GrossPay.Equal(dec(10750)))
	assert.True(t, rec.NetPay.Equal(dec(10500)))
	checkInvariants(t, rec, false)

	stored, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, stored)
	assert.Contains(t, recorder.Types(), events.TypeRecordUpdated)
}

func TestSetStatus(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	svc := NewService(store, Options{})
	start, end := period()
	ctx := context.Background()
	_, err := svc.Generate(ctx, GenerateInput{PeriodStart: start, PeriodEnd: end})
	require.NoError(t, err)
	id := RecordID("emp-1", start, end)

	rec, err := svc.SetStatus(ctx, id, StatusPaid)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, rec.Status)

	_, err = svc.SetStatus(ctx, id, "Refunded")
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.SetStatus(ctx, "missing", StatusPaid)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestApplyLatestTxTargetsMostRecentPeriod(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	svc := NewService(store, Options{})
	ctx := context.Background()
	janStart, janEnd := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	febStart, febEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.Generate(ctx, GenerateInput{PeriodStart: febStart, PeriodEnd: febEnd})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, GenerateInput{PeriodStart: janStart, PeriodEnd: janEnd})
	require.NoError(t, err)

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	rec, applied, err := svc.ApplyLatestTx(ctx, tx, "emp-1", DeductionPhilHealth, dec(200))
	require.NoError(t, err)
	require.True(t, applied)
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, RecordID("emp-1", febStart, febEnd), rec.ID)
	stored, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, stored.PhilHealth.Equal(dec(200)))
	assert.True(t, stored.NetPay.Equal(dec(9800)))

	tx, err = store.BeginTx(ctx)
	require.NoError(t, err)
	_, applied, err = svc.ApplyLatestTx(ctx, tx, "emp-9", DeductionSSS, dec(10))
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestDeletePeriodRemovesRecordsAndOvertime(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	svc := NewService(store, Options{})
	start, end := period()
	ctx := context.Background()
	_, err := svc.Generate(ctx, GenerateInput{PeriodStart: start, PeriodEnd: end, Adjustments: adjustmentSet(t, *sampleAdjustment("emp-1"))})
	require.NoError(t, err)

	deleted, err := svc.DeletePeriod(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Empty(t, store.records)
	assert.Empty(t, store.overtime)
}

func TestPeriodViewSubtractsLedgerEntriesInsidePeriod(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	svc := NewService(store, Options{})
	start, end := period()
	ctx := context.Background()
	_, err := svc.Generate(ctx, GenerateInput{PeriodStart: start, PeriodEnd: end})
	require.NoError(t, err)
	store.ledger = []ledgerEntry{
		{EmployeeID: "emp-1", Kind: DeductionSSS, Amount: dec(150), CreatedAt: phtDay(2026, 3, 10)},
		{EmployeeID: "emp-1", Kind: DeductionSSS, Amount: dec(999), CreatedAt: phtDay(2026, 4, 1)},
	}

	views, err := svc.PeriodView(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].PeriodLedgerDeductions.Equal(dec(150)))
	assert.True(t, views[0].NetAfterDeductions.Equal(dec(9850)))
}

func TestPayslipRendersPDFAndArchives(t *testing.T) {
	store := newMemoryStore(salaried("emp-1", "E001", 10000))
	files := &memoryFiles{}
	svc := NewService(store, Options{Files: files})
	start, end := period()
	ctx := context.Background()
	_, err := svc.Generate(ctx, GenerateInput{PeriodStart: start, PeriodEnd: end})
	require.NoError(t, err)
	id := RecordID("emp-1", start, end)

	pdf, name, err := svc.Payslip(ctx, id)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Equal(t, "Payslip_E001_2026-03-15.pdf", name)
	assert.Equal(t, []string{"payslips/2026-03-15/" + id + ".pdf"}, files.keys)
}
