package requests

import (
	"context"
	"time"
)

type StoreAPI interface {
	Create(ctx context.Context, in SubmitInput) (Request, error)
	Get(ctx context.Context, id string) (Request, error)
	// Transition moves id from one status to another and reports false when the
	// row was no longer in from.
	Transition(ctx context.Context, id, from, to string, remarks *string) (Request, bool, error)
	SetFollowUp(ctx context.Context, id, note string) (Request, bool, error)
	List(ctx context.Context, filter Filter) ([]Request, error)
	CountByStatus(ctx context.Context) (StatusCounts, error)
	ListByStatusInRange(ctx context.Context, status string, start, end time.Time) ([]Request, error)
	ListByIDs(ctx context.Context, ids []string) ([]Request, error)
}
