package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"paycore/internal/domain/payroll"
)

const monthKeyLayout = "2006-01"

// grossOrBasic falls back to basic salary for records stored without a gross.
func grossOrBasic(rec payroll.Record) decimal.Decimal {
	if rec.GrossPay.IsZero() {
		return rec.BasicSalary
	}
	return rec.GrossPay
}

func (t *Totals) add(rec payroll.Record) {
	t.BasicSalary = t.BasicSalary.Add(rec.BasicSalary)
	t.OvertimePay = t.OvertimePay.Add(rec.OvertimePay)
	t.HolidayPay = t.HolidayPay.Add(rec.HolidayPay)
	t.GrossPay = t.GrossPay.Add(grossOrBasic(rec))
	t.Allowances = t.Allowances.Add(rec.Allowances)
	t.TotalDeductions = t.TotalDeductions.Add(rec.TotalDeductions)
	t.NetPay = t.NetPay.Add(rec.NetPay)
}

type periodKey struct {
	start string
	end   string
}

// GroupByPeriod buckets records by their exact (start, end) pair, newest
// period first.
func GroupByPeriod(records []payroll.Record) []PeriodSummary {
	buckets := map[periodKey]*PeriodSummary{}
	employees := map[periodKey]map[string]struct{}{}
	for _, rec := range records {
		key := periodKey{rec.PeriodStart.Format(time.DateOnly), rec.PeriodEnd.Format(time.DateOnly)}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &PeriodSummary{PeriodStart: rec.PeriodStart, PeriodEnd: rec.PeriodEnd}
			buckets[key] = bucket
			employees[key] = map[string]struct{}{}
		}
		bucket.Records++
		bucket.add(rec)
		employees[key][rec.EmployeeID] = struct{}{}
	}

	out := make([]PeriodSummary, 0, len(buckets))
	for key, bucket := range buckets {
		bucket.Employees = len(employees[key])
		bucket.NetTotal = bucket.NetPay.Add(bucket.Allowances)
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodEnd.Equal(out[j].PeriodEnd) {
			return out[i].PeriodEnd.After(out[j].PeriodEnd)
		}
		return out[i].PeriodStart.After(out[j].PeriodStart)
	})
	return out
}

// GroupByMonth buckets records by the calendar month of period_end, most
// recent month first.
func GroupByMonth(records []payroll.Record) []MonthSummary {
	buckets := map[string]*MonthSummary{}
	employees := map[string]map[string]struct{}{}
	for _, rec := range records {
		key := rec.PeriodEnd.Format(monthKeyLayout)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &MonthSummary{
				Key:   key,
				Label: rec.PeriodEnd.Format("January 2006"),
				Year:  rec.PeriodEnd.Year(),
				Month: rec.PeriodEnd.Month().String(),
			}
			buckets[key] = bucket
			employees[key] = map[string]struct{}{}
		}
		bucket.Records++
		bucket.add(rec)
		employees[key][rec.EmployeeID] = struct{}{}
	}

	out := make([]MonthSummary, 0, len(buckets))
	for key, bucket := range buckets {
		bucket.Employees = len(employees[key])
		bucket.NetTotal = bucket.NetPay.Add(bucket.Allowances)
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key > out[j].Key })
	return out
}

func Summarize(records []payroll.Record) Overall {
	var overall Overall
	employees := map[string]struct{}{}
	for _, rec := range records {
		overall.TotalGross = overall.TotalGross.Add(grossOrBasic(rec))
		overall.TotalDeductions = overall.TotalDeductions.Add(rec.TotalDeductions)
		overall.TotalAllowances = overall.TotalAllowances.Add(rec.Allowances)
		overall.TotalNetPay = overall.TotalNetPay.Add(rec.NetPay)
		employees[rec.EmployeeID] = struct{}{}
	}
	overall.NetAfterDeductions = overall.TotalGross.Sub(overall.TotalDeductions)
	overall.Records = len(records)
	overall.Employees = len(employees)
	return overall
}
