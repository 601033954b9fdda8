// Package metrics exposes Prometheus collectors for the importer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the importer's Prometheus collectors.
type Metrics struct {
	ImportsTotal     *prometheus.CounterVec
	ImportDuration   *prometheus.HistogramVec
	ProductsImported *prometheus.CounterVec
}

// New registers the importer collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ImportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "importer_imports_total",
			Help: "Import attempts by retailer and outcome.",
		}, []string{"retailer", "outcome"}),
		ImportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "importer_import_duration_seconds",
			Help:    "Wall-clock duration of import attempts.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"retailer"}),
		ProductsImported: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "importer_products_imported_total",
			Help: "Products persisted per retailer.",
		}, []string{"retailer"}),
	}
}

// ObserveImport records one finished import attempt.
func (m *Metrics) ObserveImport(retailer, outcome string, imported int, duration time.Duration) {
	m.ImportsTotal.WithLabelValues(retailer, outcome).Inc()
	m.ImportDuration.WithLabelValues(retailer).Observe(duration.Seconds())
	if imported > 0 {
		m.ProductsImported.WithLabelValues(retailer).Add(float64(imported))
	}
}
