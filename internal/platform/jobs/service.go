package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"paycore/internal/platform/querier"
)

const (
	JobPayslipNotify = "payslip_notify"
	JobRosterSync    = "roster_sync"
	JobAttendance    = "attendance_ingest"

	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var ErrRunNotFound = errors.New("job run not found")

// Service records the outcome of operator-triggered batch work in job_runs.
type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

type Run struct {
	ID          string         `json:"id"`
	JobType     string         `json:"jobType"`
	Status      string         `json:"status"`
	Details     map[string]any `json:"details"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

type RunFilter struct {
	JobType string
	Status  string
	Limit   int
	Offset  int
}

// RunNow executes run and stores its details. Bookkeeping failures are
// logged and never hide the job's own result.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, jobType, StatusRunning).Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "jobType", jobType, "err", err)
	}

	details, err := run(ctx)
	status := StatusCompleted
	if err != nil {
		status = StatusFailed
		details = map[string]any{"error": err.Error(), "partial": details}
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(context.WithoutCancel(ctx), `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE 1=1
  `
	args := []any{}
	if value := strings.TrimSpace(filter.JobType); value != "" {
		args = append(args, value)
		query += " AND job_type = $" + strconv.Itoa(len(args))
	}
	if value := strings.TrimSpace(filter.Status); value != "" {
		args = append(args, value)
		query += " AND status = $" + strconv.Itoa(len(args))
	}
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, max(filter.Offset, 0))
	query += " ORDER BY started_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *Service) GetRun(ctx context.Context, id string) (Run, error) {
	run, err := scanRun(s.DB.QueryRow(ctx, `
    SELECT id, job_type, status, COALESCE(details_json, '{}'::jsonb), started_at, completed_at
    FROM job_runs
    WHERE id = $1
  `, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

func scanRun(row pgx.Row) (Run, error) {
	var (
		run        Run
		detailsRaw []byte
	)
	if err := row.Scan(&run.ID, &run.JobType, &run.Status, &detailsRaw, &run.StartedAt, &run.CompletedAt); err != nil {
		return Run{}, err
	}
	run.Details = decodeDetails(detailsRaw)
	return run, nil
}

func decodeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	details := map[string]any{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]any{
			"raw": string(raw),
		}
	}
	return details
}
