// Package telemetry holds the coordinator's prometheus metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Registry = prometheus.NewRegistry()

	ProbesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "godoze",
			Name:      "probes_total",
			Help:      "Total discovery probes answered.",
		},
	)

	StatusReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "godoze",
			Name:      "status_reports_total",
			Help:      "Total status reports received, labeled by node address.",
		},
		[]string{"node"},
	)

	ReportedLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "godoze",
			Name:      "reported_level",
			Help:      "Last pin level reported by each node (0 or 1).",
		},
		[]string{"node"},
	)

	DroppedDatagramsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "godoze",
			Name:      "dropped_datagrams_total",
			Help:      "Inbound datagrams ignored as malformed or foreign.",
		},
	)

	startTime = time.Now()
	uptime    = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "godoze",
			Name:      "uptime_seconds",
			Help:      "Coordinator process uptime in seconds.",
		},
		func() float64 { return time.Since(startTime).Seconds() },
	)
)

func init() {
	Registry.MustRegister(ProbesTotal, StatusReportsTotal, ReportedLevel, DroppedDatagramsTotal, uptime)
}

// MetricsHandler exposes /metrics. Mount it with
// mux.Handle("/metrics", telemetry.MetricsHandler()).
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
