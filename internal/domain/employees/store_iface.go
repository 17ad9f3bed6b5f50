package employees

import "context"

type StoreAPI interface {
	List(ctx context.Context) ([]Employee, error)
	Get(ctx context.Context, id string) (Employee, error)
	IDByUserID(ctx context.Context, userID string) (string, error)
	ApplyDirectoryUpdate(ctx context.Context, id string, update DirectoryUpdate) error
}
