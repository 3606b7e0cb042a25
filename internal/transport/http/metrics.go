package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the server's Prometheus collectors, kept on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	uploads  *prometheus.CounterVec
	queries  prometheus.Counter
	exports  *prometheus.CounterVec
	warnings *prometheus.CounterVec
	datasets prometheus.Gauge
}

// NewMetrics registers the asset collectors together with the Go runtime ones.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assetboard",
			Name:      "uploads_total",
			Help:      "Spreadsheet uploads by outcome.",
		}, []string{"result"}),
		queries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "assetboard",
			Name:      "queries_total",
			Help:      "Filter queries served.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assetboard",
			Name:      "exports_total",
			Help:      "Workbook exports by outcome.",
		}, []string{"result"}),
		warnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assetboard",
			Name:      "ingest_warnings_total",
			Help:      "Ingestion warnings by kind.",
		}, []string{"kind"}),
		datasets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "assetboard",
			Name:      "datasets",
			Help:      "Datasets currently held in memory.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.uploads, m.queries, m.exports, m.warnings, m.datasets,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
