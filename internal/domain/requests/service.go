package requests

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"paycore/internal/platform/events"
)

type Service struct {
	store  StoreAPI
	events events.Publisher
}

func NewService(store StoreAPI, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.Noop()
	}
	return &Service{store: store, events: publisher}
}

// Submit validates the claim and stores it as Pending.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Request, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.Reason = strings.TrimSpace(in.Reason)
	if err := validateSubmit(in); err != nil {
		return Request{}, err
	}
	return s.store.Create(ctx, in)
}

func (s *Service) Get(ctx context.Context, id string) (Request, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Approve(ctx context.Context, id, remarks string) (Request, error) {
	var note *string
	if trimmed := strings.TrimSpace(remarks); trimmed != "" {
		note = &trimmed
	}
	return s.transition(ctx, id, StatusApproved, note)
}

func (s *Service) Reject(ctx context.Context, id, remarks string) (Request, error) {
	note := strings.TrimSpace(remarks)
	if note == "" {
		note = DefaultRejectRemarks
	}
	return s.transition(ctx, id, StatusRejected, &note)
}

// Cancel is only available to the employee who filed the request.
func (s *Service) Cancel(ctx context.Context, id, actorEmployeeID string) (Request, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if current.EmployeeID != actorEmployeeID {
		return Request{}, ErrForbidden
	}
	return s.transition(ctx, id, StatusCancelled, nil)
}

// AddFollowUp replaces any earlier follow-up note. Status is unchanged.
func (s *Service) AddFollowUp(ctx context.Context, id, actorEmployeeID, note string) (Request, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return Request{}, ErrMissingField
	}
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if current.EmployeeID != actorEmployeeID {
		return Request{}, ErrForbidden
	}
	if current.Status != StatusPending {
		return Request{}, ErrInvalidState
	}
	updated, ok, err := s.store.SetFollowUp(ctx, id, note)
	if err != nil {
		return Request{}, err
	}
	if !ok {
		return Request{}, ErrInvalidState
	}
	return updated, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Request, error) {
	return s.store.List(ctx, filter)
}

func (s *Service) Counts(ctx context.Context) (StatusCounts, error) {
	return s.store.CountByStatus(ctx)
}

func (s *Service) ApprovedInRange(ctx context.Context, start, end time.Time) ([]Request, error) {
	return s.store.ListByStatusInRange(ctx, StatusApproved, start, end)
}

func (s *Service) ByIDs(ctx context.Context, ids []string) ([]Request, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.store.ListByIDs(ctx, ids)
}

func (s *Service) transition(ctx context.Context, id, to string, remarks *string) (Request, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !CanTransition(current.Status, to) {
		return Request{}, ErrInvalidState
	}
	updated, ok, err := s.store.Transition(ctx, id, current.Status, to, remarks)
	if err != nil {
		return Request{}, err
	}
	if !ok {
		return Request{}, ErrInvalidState
	}

	if err := s.events.Publish(ctx, events.Event{
		Type:    events.TypeRequestStatusChanged,
		Key:     updated.EmployeeID,
		Payload: map[string]string{"id": updated.ID, "from": current.Status, "to": updated.Status},
	}); err != nil {
		slog.Warn("request status event publish failed", "requestId", id, "err", err)
	}
	return updated, nil
}
