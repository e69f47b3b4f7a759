package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records calls to third-party services (payment gateway,
// generative provider, object storage).
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_call_duration_seconds",
		Help:    "Duration of outbound calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_call_failures_total",
		Help: "Failed outbound calls.",
	}, []string{"service"})
	reg.MustRegister(duration, failures)
	return &UpstreamMetrics{duration: duration, failures: failures}
}

// Observe records a finished call and counts it as failed when err is set.
func (u *UpstreamMetrics) Observe(service string, started time.Time, err error) {
	if u == nil || u.duration == nil {
		return
	}
	service = normalizeLabel(service)
	u.duration.WithLabelValues(service).Observe(time.Since(started).Seconds())
	if err != nil {
		u.failures.WithLabelValues(service).Inc()
	}
}
