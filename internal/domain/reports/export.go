package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	SheetName = "Employee Payroll Details"

	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

func ExportFileName(now time.Time, format string) string {
	return fmt.Sprintf("Employee_Payroll_Report_%s.%s", now.Format(time.DateOnly), format)
}

func ContentType(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func WriteXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	header := make([]any, len(table.Columns))
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}
	for i, row := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}
	for i, col := range table.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, name, name, float64(max(len(col), 12)+2)); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func WriteCSV(w io.Writer, table Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := make([]string, len(row))
		for i, value := range row {
			record[i] = formatCell(value)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCell(value any) string {
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
