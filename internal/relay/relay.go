// Package relay exposes the configured webhooks over HTTP, so that other services can send Slack notifications
// without holding the webhook URLs themselves.
//
//	POST /notify/{name}   send to one webhook. Add ?mode=async to use the webhook's non-blocking path.
//	POST /notify          send to all webhooks.
//	GET  /health          result of the last notification per webhook.
//
// The request body is a JSON object: {"body": "text", "subject": "optional"}.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/clambin/slack-blocks/internal/blocks"
	"github.com/clambin/slack-blocks/internal/health"
	"github.com/clambin/slack-blocks/internal/notifier"
	"github.com/clambin/slack-blocks/pkg/webhook"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"log/slog"
	"net/http"
	"strings"
)

type Registry interface {
	Webhook(name string, options ...webhook.Option) (*webhook.Webhook, error)
	WebhookNames() []string
}

type Relay struct {
	registry Registry
	options  []webhook.Option
	health   *health.Health
	metrics  *metrics
	logger   *slog.Logger
	mux      *http.ServeMux
}

// New returns a Relay for the webhooks in registry. options are applied to every webhook.
func New(registry Registry, r prometheus.Registerer, logger *slog.Logger, options ...webhook.Option) *Relay {
	relay := Relay{
		registry: registry,
		options:  options,
		health:   health.New(registry.WebhookNames),
		metrics:  newMetrics(r),
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	relay.mux.HandleFunc("POST /notify/{name}", relay.notifyOne)
	relay.mux.HandleFunc("POST /notify", relay.notifyAll)
	relay.mux.Handle("GET /health", relay.health)
	return &relay
}

func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

type request struct {
	Body    string `json:"body"`
	Subject string `json:"subject"`
}

type response struct {
	ID     string            `json:"id"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (r *Relay) notifyOne(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("name")
	body, ok := r.decode(w, req)
	if !ok {
		return
	}

	hook, err := r.registry.Webhook(name, r.webhookOptions(name)...)
	if err != nil {
		if errors.Is(err, blocks.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	id := uuid.New().String()
	err = r.notifierFor(hook, req.URL.Query().Get("mode")).Notify(req.Context(), body.Body, body.Subject)
	r.record(id, name, err)

	resp := response{ID: id}
	status := http.StatusOK
	if err != nil {
		resp.Errors = map[string]string{name: err.Error()}
		status = statusCode(err)
	}
	writeResponse(w, status, resp)
}

func (r *Relay) notifyAll(w http.ResponseWriter, req *http.Request) {
	body, ok := r.decode(w, req)
	if !ok {
		return
	}

	id := uuid.New().String()
	var notifiers notifier.Notifiers
	for _, name := range r.registry.WebhookNames() {
		hook, err := r.registry.Webhook(name, r.webhookOptions(name)...)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		notifiers = append(notifiers, &named{name: name, relay: r, id: id, Notifier: r.notifierFor(hook, req.URL.Query().Get("mode"))})
	}

	resp := response{ID: id}
	status := http.StatusOK
	if err := notifiers.Notify(req.Context(), body.Body, body.Subject); err != nil {
		resp.Errors = make(map[string]string)
		for _, n := range notifiers {
			if n := n.(*named); n.err != nil {
				resp.Errors[n.name] = n.err.Error()
			}
		}
		status = statusCode(err)
	}
	writeResponse(w, status, resp)
}

// named records the result of one webhook when fanning out to all of them.
type named struct {
	notifier.Notifier
	name  string
	id    string
	relay *Relay
	err   error
}

func (n *named) Notify(ctx context.Context, body string, subject string) error {
	n.err = n.Notifier.Notify(ctx, body, subject)
	n.relay.record(n.id, n.name, n.err)
	if n.err != nil {
		return fmt.Errorf("%s: %w", n.name, n.err)
	}
	return nil
}

// maxRequestSize is the largest request body the relay accepts.
const maxRequestSize = 64 << 10

func (r *Relay) decode(w http.ResponseWriter, req *http.Request) (request, bool) {
	var body request
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestSize)).Decode(&body); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, "invalid request: "+err.Error(), status)
		return body, false
	}
	if strings.TrimSpace(body.Body) == "" {
		http.Error(w, "invalid request: missing body", http.StatusBadRequest)
		return body, false
	}
	return body, true
}

func (r *Relay) webhookOptions(name string) []webhook.Option {
	return append(r.options[:len(r.options):len(r.options)], webhook.WithLogger(r.logger.With("webhook", name)))
}

func (r *Relay) notifierFor(hook *webhook.Webhook, mode string) notifier.Notifier {
	if mode == "async" {
		return webhook.Async{Webhook: hook}
	}
	return hook
}

func (r *Relay) record(id, name string, err error) {
	r.health.Record(name, err)
	r.metrics.observe(name, err)
	if err != nil {
		r.logger.Warn("notification failed", "id", id, "webhook", name, "err", err)
		return
	}
	r.logger.Debug("notification sent", "id", id, "webhook", name)
}

func statusCode(err error) int {
	var notificationErr *webhook.NotificationError
	if errors.As(err, &notificationErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeResponse(w http.ResponseWriter, status int, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
