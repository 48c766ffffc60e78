package relay

import (
	"bytes"
	"encoding/json"
	"github.com/clambin/slack-blocks/internal/blocks"
	"github.com/clambin/slack-blocks/internal/testtools"
	"github.com/clambin/slack-blocks/pkg/webhook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newRelay(t *testing.T, s *testtools.SlackServer) *Relay {
	t.Helper()
	r := blocks.New()
	require.NoError(t, r.AddWebhook("alerts", s.WebhookURL()))
	require.NoError(t, r.AddWebhook("deploys", s.WebhookURL()))
	return New(r, prometheus.NewPedanticRegistry(), slog.New(slog.DiscardHandler), webhook.WithFailurePolicy(webhook.RaiseOnFailure{}))
}

func post(t *testing.T, r http.Handler, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRelay_NotifyOne(t *testing.T) {
	testCases := []struct {
		name       string
		target     string
		body       string
		status     int
		wantStatus int
		wantSent   int
		wantResult string
	}{
		{name: "blocking", target: "/notify/alerts", body: `{"body":"hello","subject":"greeting"}`, status: http.StatusOK, wantStatus: http.StatusOK, wantSent: 1, wantResult: "ok"},
		{name: "async", target: "/notify/alerts?mode=async", body: `{"body":"hello"}`, status: http.StatusOK, wantStatus: http.StatusOK, wantSent: 1, wantResult: "ok"},
		{name: "rejected", target: "/notify/alerts", body: `{"body":"hello"}`, status: http.StatusNotFound, wantStatus: http.StatusBadGateway, wantSent: 1, wantResult: "rejected"},
		{name: "rejected async", target: "/notify/alerts?mode=async", body: `{"body":"hello"}`, status: http.StatusNotFound, wantStatus: http.StatusBadGateway, wantSent: 1, wantResult: "rejected"},
		{name: "unknown webhook", target: "/notify/unknown", body: `{"body":"hello"}`, status: http.StatusOK, wantStatus: http.StatusNotFound},
		{name: "invalid request", target: "/notify/alerts", body: `not json`, status: http.StatusOK, wantStatus: http.StatusBadRequest},
		{name: "missing body", target: "/notify/alerts", body: `{"subject":"greeting"}`, status: http.StatusOK, wantStatus: http.StatusBadRequest},
		{name: "too large", target: "/notify/alerts", body: `{"body":"` + strings.Repeat("x", maxRequestSize) + `"}`, status: http.StatusOK, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := testtools.NewSlackServer()
			t.Cleanup(s.Close)
			s.SetWebhookResponse(tt.status, "invalid_payload")
			r := newRelay(t, s)

			resp := post(t, r, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, resp.Code)

			received := s.Webhooks()
			require.Len(t, received, tt.wantSent)
			for _, msg := range received {
				assert.Equal(t, "hello", msg.Text)
			}

			if tt.wantResult != "" {
				var got response
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
				assert.NotEmpty(t, got.ID)
				if tt.wantResult == "rejected" {
					assert.Equal(t, "failed to send message: invalid_payload", got.Errors["alerts"])
				}
				assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.notifications.WithLabelValues("alerts", tt.wantResult)))
			}
		})
	}
}

func TestRelay_NotifyAll(t *testing.T) {
	s := testtools.NewSlackServer()
	t.Cleanup(s.Close)
	r := newRelay(t, s)

	resp := post(t, r, "/notify", `{"body":"hello"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, s.Webhooks(), 2)

	s.SetWebhookResponse(http.StatusForbidden, "action_prohibited")
	resp = post(t, r, "/notify?mode=async", `{"body":"hello"}`)
	require.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Len(t, s.Webhooks(), 4)

	var got response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, map[string]string{
		"alerts":  "failed to send message: action_prohibited",
		"deploys": "failed to send message: action_prohibited",
	}, got.Errors)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.notifications.WithLabelValues("deploys", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.notifications.WithLabelValues("deploys", "rejected")))
}

func TestRelay_Health(t *testing.T) {
	s := testtools.NewSlackServer()
	t.Cleanup(s.Close)
	r := newRelay(t, s)

	require.Equal(t, http.StatusOK, post(t, r, "/notify/alerts", `{"body":"hello"}`).Code)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var got struct {
		Webhooks map[string]*struct {
			Error string `json:"error"`
		} `json:"webhooks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Contains(t, got.Webhooks, "alerts")
	require.NotNil(t, got.Webhooks["alerts"])
	assert.Empty(t, got.Webhooks["alerts"].Error)
	require.Contains(t, got.Webhooks, "deploys")
	assert.Nil(t, got.Webhooks["deploys"])
}
