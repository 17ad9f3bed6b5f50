package requests

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	next int
	rows map[string]Request
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[string]Request{}}
}

func (m *memoryStore) Create(_ context.Context, in SubmitInput) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	req := Request{
		ID:         fmt.Sprintf("req-%d", m.next),
		EmployeeID: in.EmployeeID,
		Type:       in.Type,
		Date:       in.Date,
		TimeStart:  in.TimeStart,
		TimeEnd:    in.TimeEnd,
		Reason:     in.Reason,
		Status:     StatusPending,
	}
	m.rows[req.ID] = req
	return req, nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.rows[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (m *memoryStore) Transition(_ context.Context, id, from, to string, remarks *string) (Request, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.rows[id]
	if !ok || req.Status != from {
		return Request{}, false, nil
	}
	req.Status = to
	if remarks != nil {
		req.AdminRemarks = *remarks
	}
	m.rows[id] = req
	return req, true, nil
}

func (m *memoryStore) SetFollowUp(_ context.Context, id, note string) (Request, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.rows[id]
	if !ok || req.Status != StatusPending {
		return Request{}, false, nil
	}
	req.FollowUpNote = note
	m.rows[id] = req
	return req, true, nil
}

func (m *memoryStore) List(_ context.Context, filter Filter) ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Request
	for _, req := range m.rows {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryStore) CountByStatus(_ context.Context) (StatusCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var c StatusCounts
	for _, req := range m.rows {
		switch req.Status {
		case StatusPending:
			c.Pending++
		case StatusApproved:
			c.Approved++
		case StatusRejected:
			c.Rejected++
		case StatusCancelled:
			c.Cancelled++
		}
	}
	return c, nil
}

func (m *memoryStore) ListByStatusInRange(_ context.Context, status string, start, end time.Time) ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Request
	for _, req := range m.rows {
		if req.Status == status && !req.Date.Before(start) && !req.Date.After(end) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (m *memoryStore) ListByIDs(_ context.Context, ids []string) ([]Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Request
	for _, id := range ids {
		if req, ok := m.rows[id]; ok {
			out = append(out, req)
		}
	}
	return out, nil
}
