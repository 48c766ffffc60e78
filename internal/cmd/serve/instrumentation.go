package serve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

type webhookMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.SummaryVec
}

func newWebhookMetrics() *webhookMetrics {
	return &webhookMetrics{
		requestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slack_blocks",
			Subsystem: "webhook",
			Name:      "http_requests_total",
			Help:      "total number of webhook calls",
		},
			[]string{"code", "method"},
		),
		requestDuration: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace: "slack_blocks",
			Subsystem: "webhook",
			Name:      "http_request_duration_seconds",
			Help:      "duration of webhook calls",
		},
			[]string{"code", "method"},
		),
	}
}

func (m *webhookMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestCounter.Describe(ch)
	m.requestDuration.Describe(ch)
}

func (m *webhookMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestCounter.Collect(ch)
	m.requestDuration.Collect(ch)
}

func (m *webhookMetrics) instrumentedClient(next http.RoundTripper) *http.Client {
	if next == nil {
		next = http.DefaultTransport
	}
	rt := promhttp.InstrumentRoundTripperCounter(m.requestCounter,
		promhttp.InstrumentRoundTripperDuration(m.requestDuration,
			next,
		),
	)
	return &http.Client{Transport: rt}
}
