package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	TypePeriodGenerated      = "payroll.period_generated"
	TypeRecordUpdated        = "payroll.record_updated"
	TypeDeductionRecorded    = "deduction.recorded"
	TypeRequestStatusChanged = "request.status_changed"
	TypeNotificationsSent    = "notifications.dispatched"
)

type Event struct {
	Type         string    `json:"type"`
	Key          string    `json:"key"`
	Organization string    `json:"organization,omitempty"`
	OccurredAt   time.Time `json:"occurredAt"`
	Payload      any       `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

func Noop() Publisher {
	return noopPublisher{}
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafka(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.Key),
		Value: value,
		Time:  evt.OccurredAt,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// WithOrganization stamps every event with the organization it came from.
func WithOrganization(next Publisher, organization string) Publisher {
	return publisherFunc(func(ctx context.Context, evt Event) error {
		evt.Organization = organization
		return next.Publish(ctx, evt)
	})
}

type publisherFunc func(ctx context.Context, evt Event) error

func (f publisherFunc) Publish(ctx context.Context, evt Event) error { return f(ctx, evt) }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, evt)
	return nil
}

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, evt := range r.Events {
		out = append(out, evt.Type)
	}
	return out
}
