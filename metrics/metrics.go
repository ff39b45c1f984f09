// Package metrics defines the Prometheus collectors exported by the service
// and the HTTP server that exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh result labels.
const (
	ResultSuccess = "success"
)

// Metrics holds every collector the service updates.
type Metrics struct {
	// RefreshTotal counts keeper refresh attempts by result
	// ("success", "transport", "decode", "unknown").
	RefreshTotal *prometheus.CounterVec
	// RefreshDuration observes the wall time of refresh attempts.
	RefreshDuration prometheus.Histogram
	// KeepersKnown is the number of keepers in the registry.
	KeepersKnown prometheus.Gauge
	// KeepersUpstreamTime is the upstream update_time of the installed snapshot.
	KeepersUpstreamTime prometheus.Gauge
	// AuthFailuresTotal counts rejected requests by reason.
	AuthFailuresTotal *prometheus.CounterVec
	// ReportsTotal counts accepted reports.
	ReportsTotal prometheus.Counter
	// ReportedReleasesTotal counts releases carried by accepted reports.
	ReportedReleasesTotal prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keepers",
			Name:      "refresh_total",
			Help:      "Number of keeper refresh attempts by result.",
		}, []string{"result"}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "keepers",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of keeper refresh attempts.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		KeepersKnown: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "keepers",
			Name:      "known",
			Help:      "Number of keepers currently in the registry.",
		}),
		KeepersUpstreamTime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "keepers",
			Name:      "upstream_update_time_seconds",
			Help:      "Upstream update time of the installed keepers snapshot.",
		}),
		AuthFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "failures_total",
			Help:      "Number of rejected API requests by reason.",
		}, []string{"reason"}),
		ReportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "received_total",
			Help:      "Number of accepted keeper reports.",
		}),
		ReportedReleasesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reports",
			Name:      "releases_total",
			Help:      "Number of releases carried by accepted keeper reports.",
		}),
	}
}
