package alerts

import (
	"context"
	"sync"

	"github.com/slack-go/slack"
)

// Notifier posts short operational messages for people watching payroll runs.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, string) error { return nil }

func Noop() Notifier {
	return noopNotifier{}
}

type SlackNotifier struct {
	WebhookURL string
	post       func(ctx context.Context, url string, msg *slack.WebhookMessage) error
}

func NewSlack(webhookURL string) Notifier {
	if webhookURL == "" {
		return Noop()
	}
	return &SlackNotifier{WebhookURL: webhookURL, post: slack.PostWebhookContext}
}

func (s *SlackNotifier) Notify(ctx context.Context, text string) error {
	return s.post(ctx, s.WebhookURL, &slack.WebhookMessage{Text: text})
}

type Recorder struct {
	mu       sync.Mutex
	Messages []string
}

func (r *Recorder) Notify(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, text)
	return nil
}
