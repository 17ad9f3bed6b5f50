package rostersync

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"paycore/internal/domain/employees"
)

type EmployeeStore interface {
	List(ctx context.Context) ([]employees.Employee, error)
	ApplyDirectoryUpdate(ctx context.Context, id string, update employees.DirectoryUpdate) error
}

type Service struct {
	directory Directory
	employees EmployeeStore
	group     singleflight.Group
}

func NewService(directory Directory, store EmployeeStore) *Service {
	return &Service{directory: directory, employees: store}
}

// Sync pulls the directory and updates matched employees. Concurrent calls
// share one run.
func (s *Service) Sync(ctx context.Context) (Result, error) {
	v, err, _ := s.group.Do("sync", func() (any, error) {
		return s.sync(ctx)
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

func (s *Service) sync(ctx context.Context) (Result, error) {
	remote, err := s.directory.Employees(ctx)
	if err != nil {
		return Result{}, err
	}
	balances, err := s.directory.LeaveBalances(ctx)
	if err != nil {
		return Result{}, err
	}
	roster, err := s.employees.List(ctx)
	if err != nil {
		return Result{}, err
	}
	local := make([]LocalEmployee, 0, len(roster))
	for _, emp := range roster {
		local = append(local, LocalEmployee{ID: emp.ID, Code: emp.Code, Name: emp.FullName})
	}

	plan := Reconcile(remote, local, LeaveTotals(balances))
	res := Result{Details: Details{
		Matched:     []Matched{},
		Unmatched:   plan.Unmatched,
		NotInRemote: plan.NotInRemote,
		Errors:      []Failure{},
	}}
	for _, r := range plan.Order {
		update := plan.Updates[r.Code]
		emp := plan.Matches[r.Code]
		if !update.Empty() {
			if err := s.employees.ApplyDirectoryUpdate(ctx, emp.ID, update); err != nil {
				slog.Warn("roster update failed", "code", r.Code, "err", err)
				res.Details.Errors = append(res.Details.Errors, Failure{Code: r.Code, Name: r.FullName, Error: err.Error()})
				continue
			}
			res.Summary.Updated++
		}
		res.Details.Matched = append(res.Details.Matched, Matched{Code: r.Code, Name: r.FullName, Updated: update.Fields()})
	}
	if res.Details.Unmatched == nil {
		res.Details.Unmatched = []Unmatched{}
	}
	if res.Details.NotInRemote == nil {
		res.Details.NotInRemote = []Unmatched{}
	}

	res.Summary.TotalRemote = len(remote)
	res.Summary.TotalLocal = len(roster)
	res.Summary.Matched = len(res.Details.Matched)
	res.Summary.UnmatchedRem = len(res.Details.Unmatched)
	res.Summary.NotInRemote = len(res.Details.NotInRemote)
	res.Summary.Errors = len(res.Details.Errors)
	return res, nil
}
