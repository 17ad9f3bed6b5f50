package attendance

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// InsertBatch appends punches in one transaction. Rows already present for the
// same user and timestamp are skipped; the inserted count is returned.
func (s *Store) InsertBatch(ctx context.Context, punches []Punch, deviceID string) (int, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			slog.Warn("attendance rollback failed", "err", rbErr)
		}
	}()

	batch := &pgx.Batch{}
	for _, p := range punches {
		batch.Queue(`
      INSERT INTO attendance_logs (user_id, ts, status, event_type, device_id)
      VALUES ($1, $2, $3, $4, NULLIF($5, ''))
      ON CONFLICT (user_id, ts) DO NOTHING
    `, p.UserID, p.Timestamp.UTC(), p.Status, EventTypeFor(p), deviceID)
	}
	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for range punches {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, err
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (s *Store) List(ctx context.Context, filter LogFilter) ([]Log, error) {
	query := `
    SELECT id, user_id, ts, status, event_type, COALESCE(device_id, ''), created_at
    FROM attendance_logs
    WHERE ts >= $1 AND ts < $2
  `
	args := []any{filter.From, filter.To}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		query += " AND user_id = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY ts ASC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.Timestamp, &l.Status, &l.EventType, &l.DeviceID, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
