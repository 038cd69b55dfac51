package apiclient

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for remote API calls.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics registers the API call collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "materials_admin_api_requests_total",
			Help: "Remote API calls by endpoint, method and outcome",
		}, []string{"endpoint", "method", "outcome"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "materials_admin_api_request_duration_seconds",
			Help:    "Remote API call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
	}
}

func (m *Metrics) observe(endpoint, method, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(endpoint, method, outcome).Inc()
	m.Duration.WithLabelValues(endpoint, method).Observe(seconds)
}

// endpointLabel keeps label cardinality bounded: /materials/17 -> /materials.
func endpointLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return "/" + trimmed
}
