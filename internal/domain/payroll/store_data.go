package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"paycore/internal/domain/employees"
)

const recordColumns = `
    r.id, r.employee_id, COALESCE(e.employee_code, ''), COALESCE(e.full_name, ''), COALESCE(e.email, ''),
    COALESCE(e.pay_type, ''), r.period_start, r.period_end, r.basic_salary, r.overtime_pay, r.holiday_pay,
    r.allowances, r.absences, r.cash_advance, r.sss, r.philhealth, r.pagibig, r.withholding_tax, r.loans,
    r.other_deductions, r.gross_pay, r.total_deductions, r.net_pay, r.status, r.created_at, r.updated_at`

const recordFrom = ` FROM payroll_records r LEFT JOIN employees e ON e.id = r.employee_id`

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) LockPeriodTx(ctx context.Context, tx pgx.Tx, start, end time.Time) error {
	_, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", periodLockKey(start, end))
	return err
}

func (s *Store) CountPeriodTx(ctx context.Context, tx pgx.Tx, start, end time.Time) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
    SELECT COUNT(1) FROM payroll_records WHERE period_start = $1 AND period_end = $2
  `, start, end).Scan(&count)
	return count, err
}

func (s *Store) ListRosterTx(ctx context.Context, tx pgx.Tx) ([]employees.Employee, error) {
	rows, err := tx.Query(ctx, `
    SELECT id, COALESCE(employee_code, ''), full_name, COALESCE(email, ''), base_salary,
           COALESCE(allowance, 0), COALESCE(pay_type, 'monthly')
    FROM employees
    ORDER BY employee_code, id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []employees.Employee
	for rows.Next() {
		var emp employees.Employee
		if err := rows.Scan(&emp.ID, &emp.Code, &emp.FullName, &emp.Email, &emp.BaseSalary, &emp.Allowance, &emp.PayType); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) LedgerTotalsTx(ctx context.Context, tx pgx.Tx, since *time.Time, until time.Time) (map[string]StatutoryTotals, error) {
	rows, err := tx.Query(ctx, `
    SELECT employee_id::text, type, COALESCE(SUM(amount), 0)
    FROM deductions
    WHERE created_at < $1 AND ($2::timestamptz IS NULL OR created_at >= $2)
    GROUP BY employee_id, type
  `, until, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]StatutoryTotals{}
	for rows.Next() {
		var employeeID, kind string
		var amount decimal.Decimal
		if err := rows.Scan(&employeeID, &kind, &amount); err != nil {
			return nil, err
		}
		totals, err := out[employeeID].Add(kind, amount)
		if err != nil {
			return nil, err
		}
		out[employeeID] = totals
	}
	return out, rows.Err()
}

func (s *Store) DeletePeriodTx(ctx context.Context, tx pgx.Tx, start, end time.Time) (int64, error) {
	tag, err := tx.Exec(ctx, `
    DELETE FROM payroll_records WHERE period_start = $1 AND period_end = $2
  `, start, end)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) InsertRecordsTx(ctx context.Context, tx pgx.Tx, records []Record) error {
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(`
      INSERT INTO payroll_records (
        id, employee_id, period_start, period_end, basic_salary, overtime_pay, holiday_pay, allowances,
        absences, cash_advance, sss, philhealth, pagibig, withholding_tax, loans, other_deductions,
        gross_pay, total_deductions, net_pay, status
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
    `, rec.ID, rec.EmployeeID, rec.PeriodStart, rec.PeriodEnd, rec.BasicSalary, rec.OvertimePay, rec.HolidayPay,
			rec.Allowances, rec.Absences, rec.CashAdvance, rec.SSS, rec.PhilHealth, rec.PagIBIG, rec.WithholdingTax,
			rec.Loans, rec.OtherDeductions, rec.GrossPay, rec.TotalDeductions, rec.NetPay, rec.Status)
	}
	return execBatch(ctx, tx, batch)
}

func (s *Store) InsertOvertimeTx(ctx context.Context, tx pgx.Tx, lines []OvertimeLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(`
      INSERT INTO payroll_overtime_entries (id, payroll_record_id, employee_id, date, hours, rate_per_hour, amount, request_id)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    `, line.ID, line.RecordID, line.EmployeeID, line.Date, line.Hours, line.RatePerHour, line.Amount, nullIfEmpty(line.RequestID))
	}
	return execBatch(ctx, tx, batch)
}

func execBatch(ctx context.Context, tx pgx.Tx, batch *pgx.Batch) error {
	results := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("batch statement %d: %w", i, err)
		}
	}
	return results.Close()
}

func (s *Store) ListRecords(ctx context.Context, filter RecordFilter) ([]Record, error) {
	query := `SELECT ` + recordColumns + recordFrom + ` WHERE 1=1`
	args := []any{}
	if filter.PeriodStart != nil {
		args = append(args, *filter.PeriodStart)
		query += fmt.Sprintf(" AND r.period_start = $%d", len(args))
	}
	if filter.PeriodEnd != nil {
		args = append(args, *filter.PeriodEnd)
		query += fmt.Sprintf(" AND r.period_end = $%d", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND r.employee_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	query += " ORDER BY r.period_end DESC, e.full_name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) GetRecord(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx, `SELECT `+recordColumns+recordFrom+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (s *Store) GetRecordForUpdateTx(ctx context.Context, tx pgx.Tx, id string) (Record, error) {
	rec, err := scanRecord(tx.QueryRow(ctx, `SELECT `+recordColumns+recordFrom+` WHERE r.id = $1 FOR UPDATE OF r`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (s *Store) LatestRecordForUpdateTx(ctx context.Context, tx pgx.Tx, employeeID string) (Record, error) {
	rec, err := scanRecord(tx.QueryRow(ctx, `SELECT `+recordColumns+recordFrom+`
    WHERE r.employee_id = $1
    ORDER BY r.period_end DESC, r.created_at DESC
    LIMIT 1
    FOR UPDATE OF r`, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (s *Store) UpdateRecordTx(ctx context.Context, tx pgx.Tx, rec Record) error {
	tag, err := tx.Exec(ctx, `
    UPDATE payroll_records
    SET basic_salary = $1, overtime_pay = $2, holiday_pay = $3, allowances = $4, absences = $5,
        cash_advance = $6, sss = $7, philhealth = $8, pagibig = $9, withholding_tax = $10, loans = $11,
        other_deductions = $12, gross_pay = $13, total_deductions = $14, net_pay = $15, status = $16,
        updated_at = now()
    WHERE id = $17
  `, rec.BasicSalary, rec.OvertimePay, rec.HolidayPay, rec.Allowances, rec.Absences, rec.CashAdvance,
		rec.SSS, rec.PhilHealth, rec.PagIBIG, rec.WithholdingTax, rec.Loans, rec.OtherDeductions,
		rec.GrossPay, rec.TotalDeductions, rec.NetPay, rec.Status, rec.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListOvertime(ctx context.Context, recordID string) ([]OvertimeLine, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, payroll_record_id, employee_id, date, hours, rate_per_hour, amount, COALESCE(request_id::text, '')
    FROM payroll_overtime_entries
    WHERE payroll_record_id = $1
    ORDER BY date, id
  `, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OvertimeLine
	for rows.Next() {
		var line OvertimeLine
		if err := rows.Scan(&line.ID, &line.RecordID, &line.EmployeeID, &line.Date, &line.Hours, &line.RatePerHour, &line.Amount, &line.RequestID); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func (s *Store) LedgerSumsBetween(ctx context.Context, since, until time.Time) (map[string]decimal.Decimal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT employee_id::text, COALESCE(SUM(amount), 0)
    FROM deductions
    WHERE created_at >= $1 AND created_at < $2
    GROUP BY employee_id
  `, since, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var employeeID string
		var amount decimal.Decimal
		if err := rows.Scan(&employeeID, &amount); err != nil {
			return nil, err
		}
		out[employeeID] = amount
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.EmployeeID, &rec.EmployeeCode, &rec.EmployeeName, &rec.EmployeeEmail,
		&rec.PayType, &rec.PeriodStart, &rec.PeriodEnd, &rec.BasicSalary, &rec.OvertimePay, &rec.HolidayPay,
		&rec.Allowances, &rec.Absences, &rec.CashAdvance, &rec.SSS, &rec.PhilHealth, &rec.PagIBIG,
		&rec.WithholdingTax, &rec.Loans, &rec.OtherDeductions, &rec.GrossPay, &rec.TotalDeductions,
		&rec.NetPay, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
