package medlinkapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK      = "ok"
	outcomeAuth    = "unauthorized"
	outcomeAPI     = "api_error"
	outcomeNetwork = "network_error"
)

// Metrics метрики обращений к backend. Нулевой указатель допустим и ничего не пишет.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	invalidations prometheus.Counter
}

// NewMetrics создает метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medlink_backend_requests_total",
			Help: "Requests to the MedLink backend by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medlink_backend_request_duration_seconds",
			Help:    "Latency of MedLink backend requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "medlink_session_invalidations_total",
			Help: "Sessions cleared after the backend rejected the token.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.invalidations)
	return m
}

func (m *Metrics) observe(endpoint, outcome string, started time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

func (m *Metrics) sessionInvalidated() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}
