package serve

import (
	"context"
	"github.com/clambin/slack-blocks/internal/testtools"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMakeServers(t *testing.T) {
	s := testtools.NewSlackServer()
	t.Cleanup(s.Close)

	v := viper.New()
	v.Set("slack.webhook", s.WebhookURL())
	v.Set("host.version", "3.0.0")
	v.Set("serve.addr", ":8080")
	v.Set("serve.metrics", ":9090")
	r := prometheus.NewPedanticRegistry()

	servers, err := makeServers(v, r, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Len(t, servers, 2)
	assert.Equal(t, ":8080", servers[0].Addr)
	assert.Equal(t, ":9090", servers[1].Addr)

	req := httptest.NewRequest(http.MethodPost, "/notify/default", strings.NewReader(`{"body":"hello"}`))
	resp := httptest.NewRecorder()
	servers[0].Handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, s.Webhooks(), 1)
	assert.Equal(t, "hello", s.Webhooks()[0].Text)

	assert.NoError(t, testutil.GatherAndCompare(r, strings.NewReader(`
# HELP slack_blocks_webhook_http_requests_total total number of webhook calls
# TYPE slack_blocks_webhook_http_requests_total counter
slack_blocks_webhook_http_requests_total{code="200",method="post"} 1
`), "slack_blocks_webhook_http_requests_total"))

	s.SetWebhookResponse(http.StatusNotFound, "no_service")
	req = httptest.NewRequest(http.MethodPost, "/notify/default", strings.NewReader(`{"body":"hello"}`))
	resp = httptest.NewRecorder()
	servers[0].Handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Contains(t, resp.Body.String(), "no_service")
}

func TestMakeServers_MissingBlocksFile(t *testing.T) {
	v := viper.New()
	v.Set("blocks", "/does/not/exist.yaml")
	_, err := makeServers(v, prometheus.NewPedanticRegistry(), slog.New(slog.DiscardHandler))
	assert.Error(t, err)
}

func TestRunServers(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := http.Server{
		Addr: addr,
		Handler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	}

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error)
	go func() { errCh <- runServers(ctx, []*http.Server{&s}) }()

	assert.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-errCh)
}
