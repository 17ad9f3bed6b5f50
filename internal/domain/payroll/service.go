package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"paycore/internal/platform/alerts"
	"paycore/internal/platform/db"
	"paycore/internal/platform/events"
	"paycore/internal/platform/storage"
)

// Location is the wall clock used to decide which calendar day a ledger
// entry was created on.
var Location = time.FixedZone("PHT", 8*60*60)

type Options struct {
	Policy    Policy
	Locker    db.Locker
	LockTTL   time.Duration
	Publisher events.Publisher
	Alerts    alerts.Notifier
	Files     storage.Store
}

type Service struct {
	store     StoreAPI
	policy    Policy
	locker    db.Locker
	lockTTL   time.Duration
	publisher events.Publisher
	alerts    alerts.Notifier
	files     storage.Store
}

func NewService(store StoreAPI, opts Options) *Service {
	if opts.Locker == nil {
		opts.Locker = db.NoopLocker()
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = 2 * time.Minute
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop()
	}
	if opts.Alerts == nil {
		opts.Alerts = alerts.Noop()
	}
	if opts.Policy.Scope == "" {
		opts.Policy.Scope = ScopeCumulative
	}
	return &Service{
		store:     store,
		policy:    opts.Policy,
		locker:    opts.Locker,
		lockTTL:   opts.LockTTL,
		publisher: opts.Publisher,
		alerts:    opts.Alerts,
		files:     opts.Files,
	}
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Generate computes and stores one record per eligible employee for the
// period. Existing records for the same period are replaced only when
// in.Confirm is set; the delete and insert share one transaction.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (GenerateResult, error) {
	result := GenerateResult{PeriodStart: in.PeriodStart, PeriodEnd: in.PeriodEnd}
	if err := ValidatePeriod(in.PeriodStart, in.PeriodEnd); err != nil {
		return result, err
	}

	release, err := s.locker.Acquire(ctx, periodLockKey(in.PeriodStart, in.PeriodEnd), s.lockTTL)
	if err != nil {
		if errors.Is(err, db.ErrLockHeld) {
			return result, ErrPeriodGenerationInUse
		}
		return result, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("payroll period lock release failed", "err", err)
		}
	}()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return result, err
	}
	rollback := func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("payroll generation rollback failed", "err", rbErr)
		}
	}

	if err := s.store.LockPeriodTx(ctx, tx, in.PeriodStart, in.PeriodEnd); err != nil {
		rollback()
		return result, err
	}
	existing, err := s.store.CountPeriodTx(ctx, tx, in.PeriodStart, in.PeriodEnd)
	if err != nil {
		rollback()
		return result, err
	}
	if existing > 0 && !in.Confirm {
		rollback()
		return result, &PeriodExistsError{Existing: existing}
	}

	roster, err := s.store.ListRosterTx(ctx, tx)
	if err != nil {
		rollback()
		return result, err
	}
	since, until := s.ledgerWindow(in.PeriodStart, in.PeriodEnd)
	ledger, err := s.store.LedgerTotalsTx(ctx, tx, since, until)
	if err != nil {
		rollback()
		return result, err
	}

	records, lines, issues := Plan(in.PeriodStart, in.PeriodEnd, roster, ledger, in.Adjustments, s.policy)
	result.Issues = issues
	if len(records) == 0 {
		rollback()
		return result, ErrNoEligibleEmployees
	}

	replaced, err := s.store.DeletePeriodTx(ctx, tx, in.PeriodStart, in.PeriodEnd)
	if err != nil {
		rollback()
		return result, err
	}
	if err := s.store.InsertRecordsTx(ctx, tx, records); err != nil {
		rollback()
		return result, fmt.Errorf("insert payroll records: %w", err)
	}
	if err := s.store.InsertOvertimeTx(ctx, tx, lines); err != nil {
		rollback()
		return result, fmt.Errorf("insert overtime entries: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return result, err
	}

	result.Records = records
	result.OvertimeLines = len(lines)
	result.Replaced = replaced

	s.publish(ctx, events.Event{
		Type: events.TypePeriodGenerated,
		Key:  periodLockKey(in.PeriodStart, in.PeriodEnd),
		Payload: map[string]any{
			"periodStart": in.PeriodStart.Format(dateLayout),
			"periodEnd":   in.PeriodEnd.Format(dateLayout),
			"records":     len(records),
			"replaced":    replaced,
		},
	})
	if replaced > 0 {
		msg := fmt.Sprintf("Payroll period %s to %s regenerated: %d records replaced by %d",
			in.PeriodStart.Format(dateLayout), in.PeriodEnd.Format(dateLayout), replaced, len(records))
		if err := s.alerts.Notify(ctx, msg); err != nil {
			slog.Warn("payroll regeneration alert failed", "err", err)
		}
	}
	return result, nil
}

// ledgerWindow returns the created_at bounds for ledger entries counted in a
// period. Cumulative scope has no lower bound.
func (s *Service) ledgerWindow(start, end time.Time) (*time.Time, time.Time) {
	until := dayStart(end).AddDate(0, 0, 1)
	if s.policy.Scope == ScopePeriod {
		since := dayStart(start)
		return &since, until
	}
	return nil, until
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}

func periodLockKey(start, end time.Time) string {
	return "payroll-period:" + start.Format(dateLayout) + ":" + end.Format(dateLayout)
}

func (s *Service) List(ctx context.Context, filter RecordFilter) ([]Record, error) {
	return s.store.ListRecords(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.store.GetRecord(ctx, id)
}

func (s *Service) Overtime(ctx context.Context, recordID string) ([]OvertimeLine, error) {
	if _, err := s.store.GetRecord(ctx, recordID); err != nil {
		return nil, err
	}
	return s.store.ListOvertime(ctx, recordID)
}

// Edit applies a manual correction and recomputes the derived fields.
func (s *Service) Edit(ctx context.Context, id string, edit RecordEdit) (Record, error) {
	return s.updateRecord(ctx, id, func(rec *Record) error {
		return ApplyEdit(rec, edit, s.policy.IncludeOtherDeductions)
	})
}

func (s *Service) SetStatus(ctx context.Context, id, status string) (Record, error) {
	if !ValidStatus(status) {
		return Record{}, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	return s.updateRecord(ctx, id, func(rec *Record) error {
		rec.Status = status
		return nil
	})
}

func (s *Service) updateRecord(ctx context.Context, id string, mutate func(*Record) error) (Record, error) {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return Record{}, err
	}
	rec, err := s.store.GetRecordForUpdateTx(ctx, tx, id)
	if err == nil {
		err = mutate(&rec)
	}
	if err == nil {
		err = s.store.UpdateRecordTx(ctx, tx, rec)
	}
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Warn("payroll record update rollback failed", "err", rbErr)
		}
		return Record{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	s.publish(ctx, events.Event{Type: events.TypeRecordUpdated, Key: rec.ID, Payload: rec})
	return rec, nil
}

// ApplyLatestTx folds a ledger amount into the employee's most recent record
// inside the caller's transaction. It reports false when the employee has no
// record yet.
func (s *Service) ApplyLatestTx(ctx context.Context, tx pgx.Tx, employeeID, kind string, amount decimal.Decimal) (Record, bool, error) {
	rec, err := s.store.LatestRecordForUpdateTx(ctx, tx, employeeID)
	if errors.Is(err, ErrNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}
	if err := ApplyDeduction(&rec, kind, amount, s.policy.IncludeOtherDeductions); err != nil {
		return Record{}, false, err
	}
	if err := s.store.UpdateRecordTx(ctx, tx, rec); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// DeletePeriod removes every record of the period along with its overtime rows.
func (s *Service) DeletePeriod(ctx context.Context, start, end time.Time) (int64, error) {
	if err := ValidatePeriod(start, end); err != nil {
		return 0, err
	}
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.store.LockPeriodTx(ctx, tx, start, end); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Warn("payroll period delete rollback failed", "err", rbErr)
		}
		return 0, err
	}
	deleted, err := s.store.DeletePeriodTx(ctx, tx, start, end)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Warn("payroll period delete rollback failed", "err", rbErr)
		}
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return deleted, nil
}

// PeriodView lists the period's records with the ledger entries created
// inside the period subtracted from net pay.
func (s *Service) PeriodView(ctx context.Context, start, end time.Time) ([]RecordView, error) {
	if err := ValidatePeriod(start, end); err != nil {
		return nil, err
	}
	records, err := s.store.ListRecords(ctx, RecordFilter{PeriodStart: &start, PeriodEnd: &end})
	if err != nil {
		return nil, err
	}
	sums, err := s.store.LedgerSumsBetween(ctx, dayStart(start), dayStart(end).AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	views := make([]RecordView, 0, len(records))
	for _, rec := range records {
		ledger := sums[rec.EmployeeID]
		views = append(views, RecordView{
			Record:                 rec,
			PeriodLedgerDeductions: ledger,
			NetAfterDeductions:     rec.NetPay.Sub(ledger),
		})
	}
	return views, nil
}

// Payslip renders the record as a PDF and archives a copy when file storage
// is configured.
func (s *Service) Payslip(ctx context.Context, id string) ([]byte, string, error) {
	rec, err := s.store.GetRecord(ctx, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := RenderPayslipPDF(rec)
	if err != nil {
		return nil, "", err
	}
	name := PayslipFileName(rec)
	if s.files != nil {
		key := "payslips/" + rec.PeriodEnd.Format(dateLayout) + "/" + rec.ID + ".pdf"
		if _, err := s.files.Put(ctx, key, pdf, "application/pdf"); err != nil {
			slog.Warn("payslip archive failed", "err", err, "record", rec.ID)
		}
	}
	return pdf, name, nil
}

func (s *Service) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		slog.Warn("payroll event publish failed", "err", err, "type", evt.Type)
	}
}
