package deductions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const entryColumns = `
    d.id, d.employee_id, COALESCE(e.employee_code, ''), COALESCE(e.full_name, ''), d.type, d.amount,
    COALESCE(d.notes, ''), d.created_at`

const entryFrom = ` FROM deductions d LEFT JOIN employees e ON e.id = d.employee_id`

func (s *Store) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return s.DB.Begin(ctx)
}

func (s *Store) InsertTx(ctx context.Context, tx pgx.Tx, in EntryInput) (Entry, error) {
	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO deductions (employee_id, type, amount, notes)
    VALUES ($1,$2,$3,NULLIF($4, ''))
    RETURNING id
  `, in.EmployeeID, in.Type, in.Amount, in.Notes).Scan(&id); err != nil {
		return Entry{}, err
	}
	return scanEntry(tx.QueryRow(ctx, `SELECT `+entryColumns+entryFrom+` WHERE d.id = $1`, id))
}

func (s *Store) List(ctx context.Context, employeeID string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + entryFrom
	args := []any{}
	if employeeID != "" {
		query += " WHERE d.employee_id = $1"
		args = append(args, employeeID)
	}
	query += " ORDER BY d.created_at DESC, d.id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM deductions WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) UpdateNotes(ctx context.Context, id, notes string) (Entry, error) {
	tag, err := s.DB.Exec(ctx, "UPDATE deductions SET notes = NULLIF($1, '') WHERE id = $2", notes, id)
	if err != nil {
		return Entry{}, err
	}
	if tag.RowsAffected() == 0 {
		return Entry{}, ErrNotFound
	}
	entry, err := scanEntry(s.DB.QueryRow(ctx, `SELECT `+entryColumns+entryFrom+` WHERE d.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return entry, err
}

func scanEntry(row pgx.Row) (Entry, error) {
	var entry Entry
	err := row.Scan(&entry.ID, &entry.EmployeeID, &entry.EmployeeCode, &entry.EmployeeName, &entry.Type,
		&entry.Amount, &entry.Notes, &entry.CreatedAt)
	return entry, err
}
