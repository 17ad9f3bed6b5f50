package notifications

import "context"

type StoreAPI interface {
	LogDeliveries(ctx context.Context, deliveries []Delivery) error
	ListDeliveries(ctx context.Context, recordID string) ([]Delivery, error)
}
