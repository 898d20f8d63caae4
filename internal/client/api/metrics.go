package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments the transport. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	refreshes *prometheus.CounterVec
	retries   prometheus.Counter
}

// NewMetrics creates the transport collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campusshop",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests by method and status.",
			},
			[]string{"method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "campusshop",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Duration of API requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "campusshop",
				Subsystem: "api",
				Name:      "token_refresh_total",
				Help:      "Credential refresh attempts by result.",
			},
			[]string{"result"}, // "success" | "failed"
		),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campusshop",
			Subsystem: "api",
			Name:      "read_retries_total",
			Help:      "GET attempts repeated after a transient failure.",
		}),
	}
	reg.MustRegister(m.requests, m.duration, m.refreshes, m.retries)
	return m
}

func (m *Metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, label).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) refreshed(ok bool) {
	if m == nil {
		return
	}
	if ok {
		m.refreshes.WithLabelValues("success").Inc()
		return
	}
	m.refreshes.WithLabelValues("failed").Inc()
}

func (m *Metrics) retried() {
	if m == nil {
		return
	}
	m.retries.Inc()
}
