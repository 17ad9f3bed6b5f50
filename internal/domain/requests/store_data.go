package requests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `
    r.id, r.employee_id, COALESCE(e.full_name, ''), r.request_type, r.date,
    to_char(r.time_start, 'HH24:MI'), to_char(r.time_end, 'HH24:MI'), r.reason, r.status,
    COALESCE(r.admin_remarks, ''), COALESCE(r.follow_up_note, ''), r.created_at, r.updated_at`

const requestFrom = ` FROM employee_requests r LEFT JOIN employees e ON e.id = r.employee_id`

func (s *Store) Create(ctx context.Context, in SubmitInput) (Request, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO employee_requests (employee_id, request_type, date, time_start, time_end, reason, status)
    VALUES ($1,$2,$3,$4::time,$5::time,$6,$7)
    RETURNING id
  `, in.EmployeeID, in.Type, in.Date, in.TimeStart, in.TimeEnd, in.Reason, StatusPending).Scan(&id); err != nil {
		return Request{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id string) (Request, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Request{}, ErrNotFound
	}
	req, err := scanRequest(s.DB.QueryRow(ctx, `SELECT `+requestColumns+requestFrom+` WHERE r.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (s *Store) Transition(ctx context.Context, id, from, to string, remarks *string) (Request, bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_requests
    SET status = $1, admin_remarks = COALESCE($2, admin_remarks), updated_at = now()
    WHERE id = $3 AND status = $4
  `, to, remarks, id, from)
	if err != nil {
		return Request{}, false, err
	}
	if tag.RowsAffected() == 0 {
		return Request{}, false, nil
	}
	req, err := s.Get(ctx, id)
	return req, err == nil, err
}

func (s *Store) SetFollowUp(ctx context.Context, id, note string) (Request, bool, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employee_requests
    SET follow_up_note = $1, updated_at = now()
    WHERE id = $2 AND status = $3
  `, note, id, StatusPending)
	if err != nil {
		return Request{}, false, err
	}
	if tag.RowsAffected() == 0 {
		return Request{}, false, nil
	}
	req, err := s.Get(ctx, id)
	return req, err == nil, err
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Request, error) {
	query := `SELECT ` + requestColumns + requestFrom + ` WHERE 1=1`
	args := []any{}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		query += fmt.Sprintf(" AND r.employee_id = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND r.date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND r.date <= $%d", len(args))
	}
	query += " ORDER BY r.created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	return s.queryRequests(ctx, query, args...)
}

func (s *Store) CountByStatus(ctx context.Context) (StatusCounts, error) {
	rows, err := s.DB.Query(ctx, `SELECT status, COUNT(1) FROM employee_requests GROUP BY status`)
	if err != nil {
		return StatusCounts{}, err
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, err
		}
		switch status {
		case StatusPending:
			counts.Pending = n
		case StatusApproved:
			counts.Approved = n
		case StatusRejected:
			counts.Rejected = n
		case StatusCancelled:
			counts.Cancelled = n
		}
	}
	return counts, rows.Err()
}

func (s *Store) ListByStatusInRange(ctx context.Context, status string, start, end time.Time) ([]Request, error) {
	return s.queryRequests(ctx, `SELECT `+requestColumns+requestFrom+`
    WHERE r.status = $1 AND r.date BETWEEN $2 AND $3
    ORDER BY r.date, r.created_at`, status, start, end)
}

// ListByIDs returns the requests that exist among ids. Values that are not
// UUIDs cannot name a row and are left out of the query.
func (s *Store) ListByIDs(ctx context.Context, ids []string) ([]Request, error) {
	valid := uuidsOnly(ids)
	if len(valid) == 0 {
		return nil, nil
	}
	return s.queryRequests(ctx, `SELECT `+requestColumns+requestFrom+`
    WHERE r.id = ANY($1::uuid[])
    ORDER BY r.date, r.created_at`, valid)
}

func uuidsOnly(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.EmployeeID, &req.EmployeeName, &req.Type, &req.Date,
		&req.TimeStart, &req.TimeEnd, &req.Reason, &req.Status,
		&req.AdminRemarks, &req.FollowUpNote, &req.CreatedAt, &req.UpdatedAt)
	return req, err
}
