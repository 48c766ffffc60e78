package relay

import (
	"errors"
	"github.com/clambin/slack-blocks/pkg/webhook"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	notifications *prometheus.CounterVec
}

func newMetrics(r prometheus.Registerer) *metrics {
	m := metrics{
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slack_blocks",
			Subsystem: "relay",
			Name:      "notifications_total",
			Help:      "total number of notifications relayed, by webhook and result",
		},
			[]string{"webhook", "result"},
		),
	}
	if r != nil {
		r.MustRegister(m.notifications)
	}
	return &m
}

func (m *metrics) observe(name string, err error) {
	m.notifications.WithLabelValues(name, result(err)).Inc()
}

func result(err error) string {
	var notificationErr *webhook.NotificationError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &notificationErr):
		return "rejected"
	default:
		return "error"
	}
}
