package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pasteimg"

// Metrics are the relay's Prometheus instruments.
type Metrics struct {
	UploadsTotal       *prometheus.CounterVec
	RateLimitedTotal   prometheus.Counter
	ValidationFailures *prometheus.CounterVec
	UploadBytes        prometheus.Histogram
	ForwardDuration    prometheus.Histogram
}

// New registers the relay metrics on the given registry
// (prometheus.DefaultRegisterer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "uploads_total",
			Help:      "Upload requests by terminal outcome",
		}, []string{"outcome"}),

		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "rate_limited_total",
			Help:      "Upload requests rejected by the rate limiter",
		}),

		ValidationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "validation_failures_total",
			Help:      "File validation failures by reason",
		}, []string{"reason"}),

		UploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "upload_bytes",
			Help:      "Size of accepted uploads in bytes",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),

		ForwardDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "relay",
			Name:      "forward_duration_seconds",
			Help:      "Duration of the proxy leg to the external host",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}
