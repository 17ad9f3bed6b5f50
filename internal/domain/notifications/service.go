package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"paycore/internal/domain/payroll"
	"paycore/internal/platform/alerts"
	"paycore/internal/platform/events"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type RecordSource interface {
	List(ctx context.Context, filter payroll.RecordFilter) ([]payroll.Record, error)
	Get(ctx context.Context, id string) (payroll.Record, error)
}

type Options struct {
	From        string
	Concurrency int
	// SendTimeout bounds a single message.
	SendTimeout time.Duration
	Publisher   events.Publisher
	Alerts      alerts.Notifier
}

type Service struct {
	store       StoreAPI
	records     RecordSource
	Mailer      Mailer
	from        string
	concurrency int
	sendTimeout time.Duration
	publisher   events.Publisher
	alerts      alerts.Notifier
	now         func() time.Time
}

func New(store StoreAPI, records RecordSource, mailer Mailer, opts Options) *Service {
	if opts.From == "" {
		opts.From = "no-reply@example.com"
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Noop()
	}
	if opts.Alerts == nil {
		opts.Alerts = alerts.Noop()
	}
	return &Service{
		store:       store,
		records:     records,
		Mailer:      mailer,
		from:        opts.From,
		concurrency: opts.Concurrency,
		sendTimeout: opts.SendTimeout,
		publisher:   opts.Publisher,
		alerts:      opts.Alerts,
		now:         time.Now,
	}
}

type resolved struct {
	record payroll.Record
	detail *Detail
}

func (s *Service) resolve(ctx context.Context, target Target) ([]resolved, error) {
	if len(target.RecordIDs) > 0 {
		out := make([]resolved, 0, len(target.RecordIDs))
		for _, id := range target.RecordIDs {
			rec, err := s.records.Get(ctx, id)
			if errors.Is(err, payroll.ErrNotFound) {
				out = append(out, resolved{detail: &Detail{ID: id, Error: ErrMsgRecordNotFound}})
				continue
			}
			if err != nil {
				return nil, err
			}
			out = append(out, resolved{record: rec})
		}
		return out, nil
	}
	if target.PeriodStart == nil || target.PeriodEnd == nil {
		return nil, ErrNoTarget
	}
	records, err := s.records.List(ctx, payroll.RecordFilter{PeriodStart: target.PeriodStart, PeriodEnd: target.PeriodEnd})
	if err != nil {
		return nil, err
	}
	out := make([]resolved, 0, len(records))
	for _, rec := range records {
		out = append(out, resolved{record: rec})
	}
	return out, nil
}

// Dispatch emails a payslip for every resolved record. Each record succeeds
// or fails on its own; the summary reports all of them.
func (s *Service) Dispatch(ctx context.Context, target Target) (Summary, error) {
	items, err := s.resolve(ctx, target)
	if err != nil {
		return Summary{}, err
	}
	if len(items) == 0 {
		return Summary{}, ErrNoRecords
	}

	details := make([]Detail, len(items))
	deliveries := make([]*Delivery, len(items))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, item := range items {
		if item.detail != nil {
			details[i] = *item.detail
			continue
		}
		g.Go(func() error {
			details[i], deliveries[i] = s.sendOne(ctx, item.record)
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{Total: len(details), Details: details}
	logged := make([]Delivery, 0, len(deliveries))
	for i, d := range details {
		if d.Success {
			summary.Success++
		} else {
			summary.Failed++
		}
		if deliveries[i] != nil {
			logged = append(logged, *deliveries[i])
		}
	}

	if err := s.store.LogDeliveries(context.WithoutCancel(ctx), logged); err != nil {
		slog.Warn("payslip delivery log failed", "err", err)
	}
	if err := s.publisher.Publish(ctx, events.Event{
		Type:    events.TypeNotificationsSent,
		Key:     "payslips",
		Payload: map[string]int{"total": summary.Total, "success": summary.Success, "failed": summary.Failed},
	}); err != nil {
		slog.Warn("notification event publish failed", "err", err)
	}
	if summary.Failed > 0 {
		text := fmt.Sprintf("Payslip dispatch: %d of %d emails failed", summary.Failed, summary.Total)
		if err := s.alerts.Notify(ctx, text); err != nil {
			slog.Warn("payslip failure alert failed", "err", err)
		}
	}
	return summary, nil
}

func (s *Service) sendOne(ctx context.Context, rec payroll.Record) (Detail, *Delivery) {
	detail := Detail{ID: rec.ID, Email: rec.EmployeeEmail, Employee: rec.EmployeeName}
	subject := Subject(rec)
	delivery := &Delivery{RecordID: rec.ID, Email: rec.EmployeeEmail, Subject: subject}
	finish := func(err error) (Detail, *Delivery) {
		delivery.SentAt = s.now().UTC()
		if err != nil {
			detail.Error = err.Error()
			delivery.Error = detail.Error
			return detail, delivery
		}
		detail.Success = true
		delivery.Success = true
		return detail, delivery
	}

	if strings.TrimSpace(rec.EmployeeEmail) == "" {
		return finish(errors.New(ErrMsgMissingEmail))
	}
	body, err := RenderPayslip(rec)
	if err != nil {
		return finish(err)
	}
	sendCtx := ctx
	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
	}
	if err := s.Mailer.Send(sendCtx, s.from, rec.EmployeeEmail, subject, body); err != nil {
		slog.Warn("payslip email send failed", "record", rec.ID, "err", err)
		return finish(err)
	}
	return finish(nil)
}

func (s *Service) Deliveries(ctx context.Context, recordID string) ([]Delivery, error) {
	if _, err := s.records.Get(ctx, recordID); err != nil {
		return nil, err
	}
	return s.store.ListDeliveries(ctx, recordID)
}
