package deductions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"paycore/internal/domain/payroll"
	"paycore/internal/platform/events"
)

// RecordApplier folds a ledger amount into an employee's latest pay record
// inside the ledger transaction.
type RecordApplier interface {
	ApplyLatestTx(ctx context.Context, tx pgx.Tx, employeeID, kind string, amount decimal.Decimal) (payroll.Record, bool, error)
}

type Service struct {
	store     StoreAPI
	records   RecordApplier
	publisher events.Publisher
}

func NewService(store StoreAPI, records RecordApplier, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop()
	}
	return &Service{store: store, records: records, publisher: publisher}
}

func validate(in EntryInput) error {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return ErrMissingEmployee
	}
	if !payroll.ValidDeductionType(in.Type) {
		return ErrInvalidType
	}
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// Record appends a ledger entry and applies it to the employee's most recent
// pay record in the same transaction. A failure in either step leaves
// neither in place.
func (s *Service) Record(ctx context.Context, in EntryInput) (RecordResult, error) {
	if err := validate(in); err != nil {
		return RecordResult{}, err
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return RecordResult{}, err
	}
	rollback := func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Warn("deduction rollback failed", "err", rbErr)
		}
	}

	entry, err := s.store.InsertTx(ctx, tx, in)
	if err != nil {
		rollback()
		return RecordResult{}, fmt.Errorf("append deduction: %w", err)
	}
	slog.Info("deduction appended", "deduction", entry.ID, "employee", entry.EmployeeID, "type", entry.Type, "amount", entry.Amount.String())

	rec, applied, err := s.records.ApplyLatestTx(ctx, tx, in.EmployeeID, in.Type, in.Amount)
	if err != nil {
		rollback()
		slog.Warn("deduction apply failed, append rolled back", "deduction", entry.ID, "err", err)
		return RecordResult{}, fmt.Errorf("apply deduction to payroll record: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return RecordResult{}, err
	}

	result := RecordResult{Entry: entry, Applied: applied}
	if applied {
		result.AppliedTo = &rec
		slog.Info("deduction applied", "deduction", entry.ID, "record", rec.ID)
	} else {
		slog.Info("deduction recorded without payroll record", "deduction", entry.ID, "employee", entry.EmployeeID)
	}

	if err := s.publisher.Publish(ctx, events.Event{Type: events.TypeDeductionRecorded, Key: entry.EmployeeID, Payload: result}); err != nil {
		slog.Warn("deduction event publish failed", "err", err)
	}
	return result, nil
}

// BulkRecord appends one entry per non-zero amount. Each entry is recorded
// and applied on its own; one failure does not stop the rest.
func (s *Service) BulkRecord(ctx context.Context, in BulkInput) (BulkResult, error) {
	if strings.TrimSpace(in.EmployeeID) == "" {
		return BulkResult{}, ErrMissingEmployee
	}
	inputs := in.Inputs()
	if len(inputs) == 0 {
		return BulkResult{}, ErrEmptyBulk
	}

	result := BulkResult{Total: len(inputs)}
	for _, item := range inputs {
		res, err := s.Record(ctx, item)
		out := ItemResult{Type: item.Type}
		if err != nil {
			out.Error = err.Error()
			result.Failed++
		} else {
			out.Success = true
			out.EntryID = res.Entry.ID
			if res.AppliedTo != nil {
				out.AppliedTo = res.AppliedTo.ID
			}
			result.Success++
		}
		result.Items = append(result.Items, out)
	}
	return result, nil
}

// Delete removes a ledger entry. Pay records it was already applied to keep
// the amount.
func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) UpdateNotes(ctx context.Context, id, notes string) (Entry, error) {
	return s.store.UpdateNotes(ctx, id, strings.TrimSpace(notes))
}

func (s *Service) List(ctx context.Context, employeeID string) ([]Entry, error) {
	return s.store.List(ctx, employeeID)
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	entries, err := s.store.List(ctx, "")
	if err != nil {
		return Summary{}, err
	}
	return Summarize(entries), nil
}

// Summarize totals entries per employee, ordered by employee name.
func Summarize(entries []Entry) Summary {
	byEmployee := map[string]*EmployeeTotal{}
	var summary Summary
	for _, entry := range entries {
		total, ok := byEmployee[entry.EmployeeID]
		if !ok {
			total = &EmployeeTotal{EmployeeID: entry.EmployeeID, EmployeeCode: entry.EmployeeCode, EmployeeName: entry.EmployeeName}
			byEmployee[entry.EmployeeID] = total
		}
		switch entry.Type {
		case payroll.DeductionSSS:
			total.SSS = total.SSS.Add(entry.Amount)
		case payroll.DeductionPhilHealth:
			total.PhilHealth = total.PhilHealth.Add(entry.Amount)
		case payroll.DeductionPagIBIG:
			total.PagIBIG = total.PagIBIG.Add(entry.Amount)
		default:
			total.Other = total.Other.Add(entry.Amount)
		}
		total.Total = total.Total.Add(entry.Amount)
		total.Entries++
		summary.GrandTotal = summary.GrandTotal.Add(entry.Amount)
		summary.Entries++
	}
	for _, total := range byEmployee {
		summary.Employees = append(summary.Employees, *total)
	}
	sort.Slice(summary.Employees, func(i, j int) bool {
		if summary.Employees[i].EmployeeName != summary.Employees[j].EmployeeName {
			return summary.Employees[i].EmployeeName < summary.Employees[j].EmployeeName
		}
		return summary.Employees[i].EmployeeID < summary.Employees[j].EmployeeID
	})
	return summary
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingEmployee) || errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrEmptyBulk)
}
