package payroll

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"paycore/internal/domain/employees"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	LockPeriodTx(ctx context.Context, tx pgx.Tx, start, end time.Time) error
	CountPeriodTx(ctx context.Context, tx pgx.Tx, start, end time.Time) (int, error)
	ListRosterTx(ctx context.Context, tx pgx.Tx) ([]employees.Employee, error)
	// LedgerTotalsTx sums ledger entries created before until, and on or
	// after since when since is set.
	LedgerTotalsTx(ctx context.Context, tx pgx.Tx, since *time.Time, until time.Time) (map[string]StatutoryTotals, error)
	DeletePeriodTx(ctx context.Context, tx pgx.Tx, start, end time.Time) (int64, error)
	InsertRecordsTx(ctx context.Context, tx pgx.Tx, records []Record) error
	InsertOvertimeTx(ctx context.Context, tx pgx.Tx, lines []OvertimeLine) error

	ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error)
	GetRecord(ctx context.Context, id string) (Record, error)
	GetRecordForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (Record, error)
	LatestRecordForUpdateTx(ctx context.Context, tx pgx.Tx, employeeID string) (Record, error)
	UpdateRecordTx(ctx context.Context, tx pgx.Tx, rec Record) error
	ListOvertime(ctx context.Context, recordID string) ([]OvertimeLine, error)
	LedgerSumsBetween(ctx context.Context, since, until time.Time) (map[string]decimal.Decimal, error)
}
