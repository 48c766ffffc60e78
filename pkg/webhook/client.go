package webhook

import (
	"bytes"
	"context"
	"github.com/clambin/slack-blocks/pkg/secret"
	"github.com/slack-go/slack"
	"io"
	"net/http"
)

// Outcome is Slack's response to a webhook call.
type Outcome struct {
	StatusCode int
	Body       string
}

// Failed reports whether Slack rejected the message.
func (o Outcome) Failed() bool {
	return o.StatusCode >= 400
}

func (o Outcome) redirect() bool {
	return o.StatusCode >= 300 && o.StatusCode < 400
}

// Client posts messages to one incoming webhook. Send blocks until Slack has replied.
type Client struct {
	url        secret.Secret
	httpClient *http.Client
}

// Send posts a message with the given text.
func (c *Client) Send(ctx context.Context, text string) (Outcome, error) {
	return c.SendMessage(ctx, &slack.WebhookMessage{Text: text})
}

// SendMessage posts msg to the webhook. Any response from Slack, whatever its status code, is returned as an Outcome.
// The error is only set if no final response was received, e.g. when following a redirect failed.
func (c *Client) SendMessage(ctx context.Context, msg *slack.WebhookMessage) (Outcome, error) {
	rec := recorder{next: c.httpClient.Transport}
	if rec.next == nil {
		rec.next = http.DefaultTransport
	}
	httpClient := *c.httpClient
	httpClient.Transport = &rec

	err := slack.PostWebhookCustomHTTPContext(ctx, c.url.Value(), &httpClient, msg)
	if rec.outcome == nil || (err != nil && rec.outcome.redirect()) {
		return Outcome{}, err
	}
	return *rec.outcome, nil
}

// AsyncClient posts messages to one incoming webhook without blocking the caller.
type AsyncClient struct {
	client Client
}

// Result is the completion of an asynchronous send.
type Result struct {
	Outcome Outcome
	Err     error
}

// Send posts a message with the given text in the background. The returned channel receives one Result and is then closed.
func (c *AsyncClient) Send(ctx context.Context, text string) <-chan Result {
	return c.SendMessage(ctx, &slack.WebhookMessage{Text: text})
}

// SendMessage posts msg in the background.
func (c *AsyncClient) SendMessage(ctx context.Context, msg *slack.WebhookMessage) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		outcome, err := c.client.SendMessage(ctx, msg)
		ch <- Result{Outcome: outcome, Err: err}
	}()
	return ch
}

// recorder keeps the status code & body of the last response, which slack-go discards.
type recorder struct {
	next    http.RoundTripper
	outcome *Outcome
}

func (r *recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	r.outcome = &Outcome{StatusCode: resp.StatusCode, Body: string(body)}
	return resp, nil
}
