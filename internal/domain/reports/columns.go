package reports

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"paycore/internal/domain/payroll"
)

const (
	ColEmployeeID      = "Employee ID"
	ColEmployeeCode    = "Employee Code"
	ColFullName        = "Full Name"
	ColPayType         = "Pay Type"
	ColPeriodStart     = "Period Start"
	ColPeriodEnd       = "Period End"
	ColBasicSalary     = "Basic Salary"
	ColAllowances      = "Allowances"
	ColOvertimePay     = "Overtime Pay"
	ColHolidayPay      = "Holiday Pay"
	ColGrossPay        = "Gross Pay"
	ColAbsences        = "Absences"
	ColTotalDeductions = "Total Deductions"
	ColNetPay          = "Net Pay"
	ColStatus          = "Status"
	ColMonthYear       = "Month/Year"

	PresetFull = "full"
)

var ErrUnknownPreset = errors.New("unknown column preset")

// AllColumns is the export layout used when no columns are requested.
var AllColumns = []string{
	ColEmployeeID, ColEmployeeCode, ColFullName, ColPayType, ColPeriodStart, ColPeriodEnd,
	ColBasicSalary, ColAllowances, ColOvertimePay, ColHolidayPay, ColGrossPay, ColAbsences,
	ColTotalDeductions, ColNetPay, ColStatus, ColMonthYear,
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// Money columns hold float64 so spreadsheets receive plain numbers.
var extractors = map[string]func(payroll.Record) any{
	ColEmployeeID:      func(r payroll.Record) any { return r.EmployeeID },
	ColEmployeeCode:    func(r payroll.Record) any { return orDefault(r.EmployeeCode, "N/A") },
	ColFullName:        func(r payroll.Record) any { return orDefault(r.EmployeeName, "Unknown") },
	ColPayType:         func(r payroll.Record) any { return orDefault(r.PayType, "N/A") },
	ColPeriodStart:     func(r payroll.Record) any { return r.PeriodStart.Format(time.DateOnly) },
	ColPeriodEnd:       func(r payroll.Record) any { return r.PeriodEnd.Format(time.DateOnly) },
	ColBasicSalary:     func(r payroll.Record) any { return r.BasicSalary.InexactFloat64() },
	ColAllowances:      func(r payroll.Record) any { return r.Allowances.InexactFloat64() },
	ColOvertimePay:     func(r payroll.Record) any { return r.OvertimePay.InexactFloat64() },
	ColHolidayPay:      func(r payroll.Record) any { return r.HolidayPay.InexactFloat64() },
	ColGrossPay:        func(r payroll.Record) any { return grossOrBasic(r).InexactFloat64() },
	ColAbsences:        func(r payroll.Record) any { return r.Absences.InexactFloat64() },
	ColTotalDeductions: func(r payroll.Record) any { return r.TotalDeductions.InexactFloat64() },
	ColNetPay:          func(r payroll.Record) any { return r.NetPay.InexactFloat64() },
	ColStatus:          func(r payroll.Record) any { return orDefault(r.Status, "Unknown") },
	ColMonthYear:       func(r payroll.Record) any { return r.PeriodEnd.Format("January 2006") },
}

type Table struct {
	Columns []string
	Rows    [][]any
}

// Maps returns each row keyed by column name.
func (t Table) Maps() []map[string]any {
	out := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		m := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			m[col] = row[i]
		}
		out = append(out, m)
	}
	return out
}

// Project reduces records to the requested columns in the order given.
// Unknown and repeated column names are dropped. No columns means all.
func Project(records []payroll.Record, columns []string) Table {
	if len(columns) == 0 {
		columns = AllColumns
	}
	var kept []string
	seen := map[string]bool{}
	for _, col := range columns {
		col = strings.TrimSpace(col)
		if _, ok := extractors[col]; !ok || seen[col] {
			continue
		}
		seen[col] = true
		kept = append(kept, col)
	}

	table := Table{Columns: kept, Rows: make([][]any, 0, len(records))}
	for _, rec := range records {
		row := make([]any, len(kept))
		for i, col := range kept {
			row[i] = extractors[col](rec)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Presets maps a preset name to a column list.
type Presets map[string][]string

func DefaultPresets() Presets {
	return Presets{
		PresetFull: AllColumns,
		"summary":  {ColEmployeeCode, ColFullName, ColPeriodStart, ColPeriodEnd, ColGrossPay, ColTotalDeductions, ColNetPay},
	}
}

type presetFile struct {
	Presets map[string][]string `yaml:"presets"`
}

// LoadColumnPresets reads presets from a YAML file and layers them over the
// defaults. An empty path returns the defaults.
func LoadColumnPresets(path string) (Presets, error) {
	presets := DefaultPresets()
	if path == "" {
		return presets, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parsePresets(raw, presets)
}

func parsePresets(raw []byte, presets Presets) (Presets, error) {
	var file presetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse column presets: %w", err)
	}
	for name, cols := range file.Presets {
		presets[strings.TrimSpace(name)] = cols
	}
	return presets, nil
}

// Resolve picks explicit columns when given, otherwise the named preset.
func (p Presets) Resolve(preset string, columns []string) ([]string, error) {
	if len(columns) > 0 {
		return columns, nil
	}
	if preset == "" {
		preset = PresetFull
	}
	cols, ok := p[preset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreset, preset)
	}
	return cols, nil
}
