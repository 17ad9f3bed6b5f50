package notifications

import (
	"context"

	"github.com/jackc/pgx/v5"
)

func (s *Store) LogDeliveries(ctx context.Context, deliveries []Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, d := range deliveries {
		batch.Queue(`
      INSERT INTO payslip_deliveries (payroll_record_id, email, subject, success, error, sent_at)
      VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, ''), $6)
    `, d.RecordID, d.Email, d.Subject, d.Success, d.Error, d.SentAt)
	}
	results := s.DB.SendBatch(ctx, batch)
	for range deliveries {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return err
		}
	}
	return results.Close()
}

func (s *Store) ListDeliveries(ctx context.Context, recordID string) ([]Delivery, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT payroll_record_id, COALESCE(email, ''), subject, success, COALESCE(error, ''), sent_at
    FROM payslip_deliveries
    WHERE payroll_record_id = $1
    ORDER BY sent_at DESC
  `, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.RecordID, &d.Email, &d.Subject, &d.Success, &d.Error, &d.SentAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
