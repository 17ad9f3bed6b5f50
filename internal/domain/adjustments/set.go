package adjustments

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Set keys adjustments by employee. Adding a second adjustment for the same
// employee merges into the first.
type Set struct {
	items map[string]*Adjustment
	order []string
}

func NewSet() *Set {
	return &Set{items: map[string]*Adjustment{}}
}

func (s *Set) Len() int {
	return len(s.order)
}

func (s *Set) Get(employeeID string) (Adjustment, bool) {
	adj, ok := s.items[employeeID]
	if !ok {
		return Adjustment{}, false
	}
	return clone(*adj), true
}

// List returns adjustments in the order employees were first added.
func (s *Set) List() []Adjustment {
	out := make([]Adjustment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(*s.items[id]))
	}
	return out
}

// Merge folds adj into the employee's existing adjustment. Overtime entries
// are appended unless they link a request already present, in which case the
// positive hours and rate of the incoming entry fill in the existing one.
// Scalar fields are taken from adj when it sets them.
func (s *Set) Merge(adj Adjustment) error {
	if err := Validate(adj); err != nil {
		return err
	}
	current, ok := s.items[adj.EmployeeID]
	if !ok {
		copied := clone(adj)
		s.items[adj.EmployeeID] = &copied
		s.order = append(s.order, adj.EmployeeID)
		return nil
	}

	if adj.AbsenceDays.IsPositive() {
		current.AbsenceDays = adj.AbsenceDays
	}
	if adj.AbsenceAmountPerDay.IsPositive() {
		current.AbsenceAmountPerDay = adj.AbsenceAmountPerDay
	}
	if adj.HolidayDate != nil {
		date := *adj.HolidayDate
		current.HolidayDate = &date
	}
	if adj.HolidayPay.IsPositive() {
		current.HolidayPay = adj.HolidayPay
	}
	if adj.CashAdvance.IsPositive() {
		current.CashAdvance = adj.CashAdvance
	}
	if adj.OtherDeductions.IsPositive() {
		current.OtherDeductions = adj.OtherDeductions
	}
	for _, entry := range adj.OvertimeEntries {
		if i := requestIndex(current.OvertimeEntries, entry.RequestID); i >= 0 {
			fill(&current.OvertimeEntries[i], entry)
			continue
		}
		current.OvertimeEntries = append(current.OvertimeEntries, entry)
	}
	return nil
}

// Replace overwrites the employee's adjustment, as a manual edit does.
func (s *Set) Replace(adj Adjustment) error {
	if err := Validate(adj); err != nil {
		return err
	}
	if _, ok := s.items[adj.EmployeeID]; !ok {
		s.order = append(s.order, adj.EmployeeID)
	}
	copied := clone(adj)
	s.items[adj.EmployeeID] = &copied
	return nil
}

// Apply routes a manual adjustment by its mode: Clear drops the employee's
// adjustment, Replace overwrites it and anything else merges.
func (s *Set) Apply(adj Adjustment) error {
	switch {
	case adj.Clear:
		if strings.TrimSpace(adj.EmployeeID) == "" {
			return ErrMissingEmployee
		}
		s.Remove(adj.EmployeeID)
		return nil
	case adj.Replace:
		adj.Replace = false
		return s.Replace(adj)
	default:
		return s.Merge(adj)
	}
}

func (s *Set) Remove(employeeID string) {
	if _, ok := s.items[employeeID]; !ok {
		return
	}
	delete(s.items, employeeID)
	for i, id := range s.order {
		if id == employeeID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func Validate(adj Adjustment) error {
	if strings.TrimSpace(adj.EmployeeID) == "" {
		return ErrMissingEmployee
	}
	amounts := map[string]decimal.Decimal{
		"absenceDays":         adj.AbsenceDays,
		"absenceAmountPerDay": adj.AbsenceAmountPerDay,
		"holidayPay":          adj.HolidayPay,
		"cashAdvance":         adj.CashAdvance,
		"otherDeductions":     adj.OtherDeductions,
	}
	for name, value := range amounts {
		if value.IsNegative() {
			return fmt.Errorf("%w: %s", ErrNegativeAmount, name)
		}
	}
	for i, entry := range adj.OvertimeEntries {
		if entry.Hours.IsNegative() || entry.RatePerHour.IsNegative() {
			return fmt.Errorf("%w: overtimeEntries[%d]", ErrNegativeAmount, i)
		}
	}
	return nil
}

func requestIndex(entries []OvertimeEntry, requestID string) int {
	if requestID == "" {
		return -1
	}
	for i, entry := range entries {
		if entry.RequestID == requestID {
			return i
		}
	}
	return -1
}

func fill(dst *OvertimeEntry, src OvertimeEntry) {
	if src.Hours.IsPositive() {
		dst.Hours = src.Hours
	}
	if src.RatePerHour.IsPositive() {
		dst.RatePerHour = src.RatePerHour
	}
}

func clone(adj Adjustment) Adjustment {
	if adj.HolidayDate != nil {
		date := *adj.HolidayDate
		adj.HolidayDate = &date
	}
	adj.OvertimeEntries = append([]OvertimeEntry(nil), adj.OvertimeEntries...)
	return adj
}
