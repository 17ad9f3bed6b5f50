package deductions

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type StoreAPI interface {
	BeginTx(ctx context.Context) (pgx.Tx, error)
	InsertTx(ctx context.Context, tx pgx.Tx, in EntryInput) (Entry, error)
	List(ctx context.Context, employeeID string) ([]Entry, error)
	Delete(ctx context.Context, id string) (bool, error)
	UpdateNotes(ctx context.Context, id, notes string) (Entry, error)
}
