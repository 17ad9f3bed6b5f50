package adjustments

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"paycore/internal/domain/requests"
)

// FromRequest converts one approved request into a partial adjustment. Rates
// and holiday pay start at zero until an operator fills them in.
func FromRequest(req requests.Request) (Adjustment, error) {
	adj := Adjustment{EmployeeID: req.EmployeeID}
	switch req.Type {
	case requests.TypeOvertime:
		hours, err := requests.SpanHours(req.TimeStart, req.TimeEnd)
		if err != nil {
			return Adjustment{}, err
		}
		adj.OvertimeEntries = []OvertimeEntry{{
			Date:        req.Date,
			Hours:       hours,
			RatePerHour: decimal.Zero,
			RequestID:   req.ID,
		}}
	case requests.TypeHolidayWork:
		date := req.Date
		adj.HolidayDate = &date
	default:
		return Adjustment{}, fmt.Errorf("%w: %s", requests.ErrInvalidType, req.Type)
	}
	return adj, nil
}

// MergeRequests folds approved requests dated inside [start, end] into set.
// Requests that are not approved, fall outside the period or cannot be
// converted are reported as issues and skipped.
func MergeRequests(set *Set, reqs []requests.Request, start, end time.Time) []Issue {
	var issues []Issue
	for _, req := range reqs {
		issue := Issue{RequestID: req.ID, EmployeeID: req.EmployeeID}
		switch {
		case req.Status != requests.StatusApproved:
			issue.Reason = "request is " + req.Status
		case req.Date.Before(start) || req.Date.After(end):
			issue.Reason = "request date is outside the period"
		}
		if issue.Reason != "" {
			issues = append(issues, issue)
			continue
		}

		adj, err := FromRequest(req)
		if err == nil {
			err = set.Merge(adj)
		}
		if err != nil {
			issue.Reason = err.Error()
			issues = append(issues, issue)
		}
	}
	return issues
}

type RequestSource interface {
	ApprovedInRange(ctx context.Context, start, end time.Time) ([]requests.Request, error)
	ByIDs(ctx context.Context, ids []string) ([]requests.Request, error)
}

type Service struct {
	source RequestSource
}

func NewService(source RequestSource) *Service {
	return &Service{source: source}
}

// Build assembles the adjustment set for a run: every approved request in the
// period when autoFill is set, then the explicitly selected requests, then the
// manual adjustments. Manual overtime entries that link a request must name
// an approved request of the same employee; other entries are dropped and
// reported.
func (s *Service) Build(ctx context.Context, start, end time.Time, autoFill bool, requestIDs []string, manual []Adjustment) (*Set, []Issue, error) {
	if end.Before(start) {
		return nil, nil, ErrInvalidPeriod
	}
	set := NewSet()
	var issues []Issue

	if autoFill {
		approved, err := s.source.ApprovedInRange(ctx, start, end)
		if err != nil {
			return nil, nil, err
		}
		issues = append(issues, MergeRequests(set, approved, start, end)...)
	}

	if len(requestIDs) > 0 {
		selected, err := s.source.ByIDs(ctx, requestIDs)
		if err != nil {
			return nil, nil, err
		}
		found := map[string]bool{}
		for _, req := range selected {
			found[req.ID] = true
		}
		for _, id := range requestIDs {
			if !found[id] {
				issues = append(issues, Issue{RequestID: id, Reason: "request not found"})
			}
		}
		issues = append(issues, MergeRequests(set, selected, start, end)...)
	}

	manual, linkIssues, err := s.checkLinks(ctx, set, manual)
	if err != nil {
		return nil, nil, err
	}
	issues = append(issues, linkIssues...)

	for _, adj := range manual {
		if err := set.Apply(adj); err != nil {
			return nil, issues, err
		}
	}
	return set, issues, nil
}

func (s *Service) checkLinks(ctx context.Context, set *Set, manual []Adjustment) ([]Adjustment, []Issue, error) {
	known := map[string]string{}
	for _, adj := range set.List() {
		for _, entry := range adj.OvertimeEntries {
			if entry.RequestID != "" {
				known[entry.RequestID] = adj.EmployeeID
			}
		}
	}
	var lookup []string
	for _, adj := range manual {
		for _, entry := range adj.OvertimeEntries {
			if _, ok := known[entry.RequestID]; entry.RequestID != "" && !ok {
				lookup = append(lookup, entry.RequestID)
			}
		}
	}
	if len(lookup) == 0 {
		return manual, nil, nil
	}

	found, err := s.source.ByIDs(ctx, lookup)
	if err != nil {
		return nil, nil, err
	}
	for _, req := range found {
		if req.Type == requests.TypeOvertime && req.Status == requests.StatusApproved {
			known[req.ID] = req.EmployeeID
		}
	}

	var issues []Issue
	out := make([]Adjustment, 0, len(manual))
	for _, adj := range manual {
		adj.OvertimeEntries = append([]OvertimeEntry(nil), adj.OvertimeEntries...)
		kept := adj.OvertimeEntries[:0]
		for _, entry := range adj.OvertimeEntries {
			owner, ok := known[entry.RequestID]
			switch {
			case entry.RequestID == "":
			case !ok:
				issues = append(issues, Issue{RequestID: entry.RequestID, EmployeeID: adj.EmployeeID, Reason: "linked request is not an approved overtime request"})
				continue
			case owner != adj.EmployeeID:
				issues = append(issues, Issue{RequestID: entry.RequestID, EmployeeID: adj.EmployeeID, Reason: "linked request belongs to another employee"})
				continue
			}
			kept = append(kept, entry)
		}
		adj.OvertimeEntries = kept
		out = append(out, adj)
	}
	return out, issues, nil
}
