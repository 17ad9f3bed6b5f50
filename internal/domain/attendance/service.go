package attendance

import (
	"context"
	"strings"
	"time"

	"paycore/internal/domain/payroll"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// Ingest stores a batch pulled from one device. Logs are appended verbatim.
func (s *Service) Ingest(ctx context.Context, deviceID string, punches []Punch) (IngestResult, error) {
	if len(punches) == 0 {
		return IngestResult{}, ErrEmptyBatch
	}
	if len(punches) > maxBatch {
		return IngestResult{}, ErrBatchTooLarge
	}
	for _, p := range punches {
		if strings.TrimSpace(p.UserID) == "" || p.Timestamp.IsZero() {
			return IngestResult{}, ErrInvalidLog
		}
	}
	inserted, err := s.store.InsertBatch(ctx, punches, strings.TrimSpace(deviceID))
	if err != nil {
		return IngestResult{}, err
	}
	return IngestResult{Received: len(punches), Inserted: inserted, Duplicates: len(punches) - inserted}, nil
}

// Days summarises logs between two local dates, both inclusive.
func (s *Service) Days(ctx context.Context, userID string, from, to time.Time) ([]Day, error) {
	if to.Before(from) {
		return nil, ErrInvalidRange
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, payroll.Location)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, payroll.Location).AddDate(0, 0, 1)
	logs, err := s.store.List(ctx, LogFilter{UserID: userID, From: start, To: end})
	if err != nil {
		return nil, err
	}
	return DailySummary(logs), nil
}

func (s *Service) Logs(ctx context.Context, filter LogFilter) ([]Log, error) {
	if filter.To.Before(filter.From) {
		return nil, ErrInvalidRange
	}
	return s.store.List(ctx, filter)
}
