package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type consoleMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newConsoleMetrics(reg prometheus.Registerer) *consoleMetrics {
	factory := promauto.With(reg)
	return &consoleMetrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Console requests by route pattern and status code.",
		}, []string{"route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_http_request_duration_seconds",
			Help:    "Console request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *consoleMetrics) observe(pattern string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if pattern == "" {
		pattern = "unmatched"
	}
	m.requests.WithLabelValues(pattern, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(pattern).Observe(elapsed.Seconds())
}
