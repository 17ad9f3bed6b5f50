package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

type Totals struct {
	BasicSalary     decimal.Decimal `json:"basicSalary"`
	OvertimePay     decimal.Decimal `json:"overtimePay"`
	HolidayPay      decimal.Decimal `json:"holidayPay"`
	GrossPay        decimal.Decimal `json:"grossPay"`
	Allowances      decimal.Decimal `json:"allowances"`
	TotalDeductions decimal.Decimal `json:"totalDeductions"`
	NetPay          decimal.Decimal `json:"netPay"`
}

type PeriodSummary struct {
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Employees   int       `json:"employees"`
	Records     int       `json:"records"`
	Totals
	// NetTotal is net pay plus allowances.
	NetTotal decimal.Decimal `json:"netTotal"`
}

type MonthSummary struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Year      int    `json:"year"`
	Month     string `json:"month"`
	Employees int    `json:"employees"`
	Records   int    `json:"records"`
	Totals
	NetTotal decimal.Decimal `json:"netTotal"`
}

type Overall struct {
	TotalGross         decimal.Decimal `json:"totalGross"`
	TotalDeductions    decimal.Decimal `json:"totalDeductions"`
	NetAfterDeductions decimal.Decimal `json:"netAfterDeductions"`
	TotalAllowances    decimal.Decimal `json:"totalAllowances"`
	TotalNetPay        decimal.Decimal `json:"totalNetPay"`
	Records            int             `json:"records"`
	Employees          int             `json:"employees"`
}
