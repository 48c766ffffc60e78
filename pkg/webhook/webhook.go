// Package webhook sends notifications to a Slack incoming webhook.
//
// Send a notification:
//
//	w := webhook.New(url, webhook.WithFailurePolicy(webhook.RaiseOnFailure{}))
//	if err := w.Notify(ctx, "Hello, world!", ""); err != nil {
//		var notificationErr *webhook.NotificationError
//		if errors.As(err, &notificationErr) {
//			// Slack rejected the message
//		}
//	}
//
// Notify blocks until Slack replies. NotifyAsync performs the same call in the background.
// Async wraps a Webhook so that Notify uses the background path, while still satisfying Notifier.
package webhook

import (
	"context"
	"github.com/clambin/slack-blocks/pkg/secret"
	"github.com/slack-go/slack"
	"log/slog"
	"net/http"
)

// Notifier sends a notification. Subject is used by notifiers that support one.
type Notifier interface {
	Notify(ctx context.Context, body string, subject string) error
}

var (
	_ Notifier = &Webhook{}
	_ Notifier = Async{}
)

// Webhook holds the URL of a Slack incoming webhook, e.g. https://hooks.slack.com/services/XXX.
// A Webhook built as a literal uses http.DefaultClient and NeverRaise.
type Webhook struct {
	URL        secret.Secret
	policy     FailurePolicy
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Webhook)

// WithFailurePolicy sets how Notify handles messages rejected by Slack. The default is NeverRaise.
func WithFailurePolicy(policy FailurePolicy) Option {
	return func(w *Webhook) {
		w.policy = policy
	}
}

// WithHTTPClient sets the http.Client used to call the webhook.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(w *Webhook) {
		w.httpClient = httpClient
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(w *Webhook) {
		w.logger = logger
	}
}

// New returns a Webhook for url.
func New(url string, options ...Option) *Webhook {
	w := Webhook{URL: secret.New(url)}
	for _, option := range options {
		option(&w)
	}
	return &w
}

// Policy returns the webhook's FailurePolicy.
func (w *Webhook) Policy() FailurePolicy {
	if w.policy == nil {
		return NeverRaise{}
	}
	return w.policy
}

// GetClient returns a blocking client for the webhook.
func (w *Webhook) GetClient() *Client {
	httpClient := w.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: w.URL, httpClient: httpClient}
}

// GetAsyncClient returns a non-blocking client for the webhook.
func (w *Webhook) GetAsyncClient() *AsyncClient {
	return &AsyncClient{client: *w.GetClient()}
}

// Notify sends body to the webhook and waits for the response. Webhook messages have no subject:
// subject is accepted so Webhook satisfies Notifier, but it is never sent.
func (w *Webhook) Notify(ctx context.Context, body string, _ string) error {
	outcome, err := w.GetClient().Send(ctx, body)
	return w.evaluate(outcome, err)
}

// NotifyAsync sends body to the webhook in the background. The returned channel receives the same error Notify would have
// returned (nil on success) and is then closed. As with Notify, subject is not sent.
func (w *Webhook) NotifyAsync(ctx context.Context, body string, _ string) <-chan error {
	return w.evaluateAsync(w.GetAsyncClient().Send(ctx, body))
}

// Post sends a full webhook message, applying the webhook's FailurePolicy.
func (w *Webhook) Post(ctx context.Context, msg *slack.WebhookMessage) error {
	outcome, err := w.GetClient().SendMessage(ctx, msg)
	return w.evaluate(outcome, err)
}

// PostAsync sends a full webhook message in the background.
func (w *Webhook) PostAsync(ctx context.Context, msg *slack.WebhookMessage) <-chan error {
	return w.evaluateAsync(w.GetAsyncClient().SendMessage(ctx, msg))
}

func (w *Webhook) evaluateAsync(results <-chan Result) <-chan error {
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		r := <-results
		ch <- w.evaluate(r.Outcome, r.Err)
	}()
	return ch
}

func (w *Webhook) evaluate(outcome Outcome, err error) error {
	logger := w.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err != nil {
		logger.Debug("webhook call failed", "url", w.URL, "err", err)
		return err
	}
	logger.Debug("webhook called", "url", w.URL, "status", outcome.StatusCode, "body", outcome.Body)
	if outcome.Failed() {
		logger.Warn("slack rejected message", "status", outcome.StatusCode, "body", outcome.Body)
	}
	return w.Policy().Check(outcome)
}

// Async sends notifications through the webhook's non-blocking path.
type Async struct {
	*Webhook
}

// Notify waits for NotifyAsync to complete.
func (a Async) Notify(ctx context.Context, body string, subject string) error {
	return <-a.NotifyAsync(ctx, body, subject)
}
