// Package metrics exposes the Prometheus instrumentation for the ingestion
// pipeline and the HTTP surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	IngestCycles     prometheus.Counter
	IngestFailures   *prometheus.CounterVec
	AnomalousDeltas  prometheus.Counter
	CycleDuration    prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
	HTTPInFlight     prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		IngestCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamcomp_ingest_cycles_total",
			Help: "Completed ingestion cycles.",
		}),
		IngestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamcomp_ingest_user_failures_total",
			Help: "Users skipped during ingestion cycles, by reason.",
		}, []string{"reason"}),
		AnomalousDeltas: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamcomp_anomalous_deltas_total",
			Help: "Negative provider deltas clamped to zero.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "teamcomp_ingest_cycle_duration_seconds",
			Help:    "Wall time of a full ingestion cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "teamcomp_http_requests_total",
			Help: "HTTP requests served, by method and status class.",
		}, []string{"method", "status"}),
		HTTPInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "teamcomp_http_in_flight_requests",
			Help: "HTTP requests currently being served.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.IngestCycles,
		m.IngestFailures,
		m.AnomalousDeltas,
		m.CycleDuration,
		m.HTTPRequests,
		m.HTTPInFlight,
	)
	return m
}

// Handler serves the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
