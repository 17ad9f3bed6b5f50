package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

const employeeColumns = `
    id, COALESCE(employee_code, ''), full_name, COALESCE(email, ''), base_salary,
    COALESCE(allowance, 0), COALESCE(pay_type, 'monthly'), COALESCE(status, 'active'),
    COALESCE(department, ''), COALESCE(position, ''), sss_enc, philhealth_enc, pagibig_enc,
    COALESCE(leave_credits, 0), COALESCE(user_id::text, ''), created_at`

func (s *Store) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	row := s.DB.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	emp, err := s.scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *Store) IDByUserID(ctx context.Context, userID string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE user_id::text = $1", userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (s *Store) ApplyDirectoryUpdate(ctx context.Context, id string, update DirectoryUpdate) error {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.FullName != nil {
		add("full_name", *update.FullName)
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Department != nil {
		add("department", *update.Department)
	}
	if update.Position != nil {
		add("position", *update.Position)
	}
	if update.LeaveCredits != nil {
		add("leave_credits", *update.LeaveCredits)
	}
	for _, field := range []struct {
		column string
		value  *string
	}{
		{"sss_enc", update.SSSNumber},
		{"philhealth_enc", update.PhilHealthNumber},
		{"pagibig_enc", update.PagIBIGNumber},
	} {
		if field.value == nil {
			continue
		}
		sealed, err := s.Crypto.EncryptString(*field.value)
		if err != nil {
			return err
		}
		add(field.column, sealed)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	tag, err := s.DB.Exec(ctx, fmt.Sprintf(
		"UPDATE employees SET %s, updated_at = now() WHERE id = $%d",
		strings.Join(sets, ", "), len(args),
	), args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var sssEnc, philhealthEnc, pagibigEnc []byte
	if err := row.Scan(
		&emp.ID, &emp.Code, &emp.FullName, &emp.Email, &emp.BaseSalary,
		&emp.Allowance, &emp.PayType, &emp.Status,
		&emp.Department, &emp.Position, &sssEnc, &philhealthEnc, &pagibigEnc,
		&emp.LeaveCredits, &emp.UserID, &emp.CreatedAt,
	); err != nil {
		return Employee{}, err
	}
	var err error
	if emp.SSSNumber, err = s.Crypto.DecryptString(sssEnc); err != nil {
		return Employee{}, err
	}
	if emp.PhilHealthNumber, err = s.Crypto.DecryptString(philhealthEnc); err != nil {
		return Employee{}, err
	}
	if emp.PagIBIGNumber, err = s.Crypto.DecryptString(pagibigEnc); err != nil {
		return Employee{}, err
	}
	return emp, nil
}
