package attendance

import "context"

type StoreAPI interface {
	InsertBatch(ctx context.Context, punches []Punch, deviceID string) (int, error)
	List(ctx context.Context, filter LogFilter) ([]Log, error)
}
