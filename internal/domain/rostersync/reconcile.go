package rostersync

import (
	"strings"

	"github.com/shopspring/decimal"

	"paycore/internal/domain/employees"
)

// LeaveTotals sums balances per employee code. Rows without a code are ignored.
func LeaveTotals(balances []LeaveBalance) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, lb := range balances {
		code := strings.TrimSpace(lb.Employee.Code)
		if code == "" {
			continue
		}
		out[code] = out[code].Add(lb.Balance)
	}
	return out
}

// UpdateFor builds the directory update for one matched employee. Only fields
// the directory actually carries are set.
func UpdateFor(remote RemoteEmployee, leave map[string]decimal.Decimal) employees.DirectoryUpdate {
	var u employees.DirectoryUpdate
	u.FullName = nonEmpty(remote.FullName)
	u.Email = nonEmpty(remote.Email)
	u.Department = nonEmpty(remote.Department)
	u.Position = nonEmpty(remote.Position)
	if credits, ok := leave[remote.Code]; ok {
		u.LeaveCredits = &credits
	}
	u.SSSNumber = customString(remote.CustomData, customSSS)
	u.PhilHealthNumber = customString(remote.CustomData, customPhilHealth)
	u.PagIBIGNumber = customString(remote.CustomData, customPagIBIG)
	return u
}

// Plan pairs directory rows with local employees by code.
type Plan struct {
	Updates     map[string]employees.DirectoryUpdate
	Order       []RemoteEmployee
	Matches     map[string]LocalEmployee
	Unmatched   []Unmatched
	NotInRemote []Unmatched
}

func Reconcile(remote []RemoteEmployee, local []LocalEmployee, leave map[string]decimal.Decimal) Plan {
	byCode := make(map[string]LocalEmployee, len(local))
	for _, emp := range local {
		if emp.Code != "" {
			byCode[emp.Code] = emp
		}
	}
	plan := Plan{
		Updates: map[string]employees.DirectoryUpdate{},
		Matches: map[string]LocalEmployee{},
	}
	seen := map[string]bool{}
	for _, r := range remote {
		seen[r.Code] = true
		emp, ok := byCode[r.Code]
		if !ok {
			plan.Unmatched = append(plan.Unmatched, Unmatched{Code: r.Code, Name: r.FullName, Email: r.Email})
			continue
		}
		plan.Order = append(plan.Order, r)
		plan.Matches[r.Code] = emp
		plan.Updates[r.Code] = UpdateFor(r, leave)
	}
	for _, emp := range local {
		if emp.Code != "" && !seen[emp.Code] {
			plan.NotInRemote = append(plan.NotInRemote, Unmatched{Code: emp.Code, Name: emp.Name})
		}
	}
	return plan
}

func nonEmpty(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func customString(data map[string]any, key string) *string {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return nonEmpty(v)
	case float64:
		return nonEmpty(decimal.NewFromFloat(v).String())
	default:
		return nil
	}
}
