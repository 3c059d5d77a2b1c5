package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/histograms for auth and upstream flows.
type PortalMetrics struct {
	authTotal       *prometheus.CounterVec
	invalidations   prometheus.Counter
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		authTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Auth events by type and outcome",
		}, []string{"event", "outcome"}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "auth",
			Name:      "session_invalidations_total",
			Help:      "Sessions force-cleared after an upstream auth rejection",
		}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Requests forwarded to the records API",
		}, []string{"resource", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "upstream",
			Name:      "request_latency_seconds",
			Help:      "Latency of records API calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"resource"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.authTotal, m.invalidations, m.upstreamTotal, m.upstreamLatency)
	return m
}

func (m *PortalMetrics) ObserveAuth(event, outcome string) {
	if m == nil {
		return
	}
	m.authTotal.WithLabelValues(event, outcome).Inc()
}

func (m *PortalMetrics) ObserveInvalidation() {
	if m == nil {
		return
	}
	m.invalidations.Inc()
}

func (m *PortalMetrics) ObserveUpstream(resource, status string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(resource, status).Inc()
	m.upstreamLatency.WithLabelValues(resource).Observe(seconds)
}
