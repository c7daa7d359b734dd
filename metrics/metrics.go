// Package metrics provides Prometheus metrics for the HTTP server and the
// catalog:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - catalog_products_total / catalog_category_products: catalog size
//   - catalog_reloads_total: feed reloads by result
//
// All metrics are registered with the Prometheus default registry.
package metrics

import (
	"github.com/giygas/minsan-api/minsan"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets",
		},
	)

	CatalogProductsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_products_total",
			Help: "Products in the current catalog snapshot",
		},
	)

	CatalogCategoryProducts = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_category_products",
			Help: "Products per MINSAN category in the current snapshot",
		},
		[]string{"category"},
	)

	CatalogReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Catalog reloads by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(CatalogProductsTotal)
	prometheus.MustRegister(CatalogCategoryProducts)
	prometheus.MustRegister(CatalogReloadsTotal)
}

// RecordCatalog publishes the size of a new snapshot. Every table category
// and Other is always set so a category dropping to zero is visible.
func RecordCatalog(total int, categoryCounts map[string]int) {
	CatalogProductsTotal.Set(float64(total))

	for _, c := range minsan.Categories() {
		CatalogCategoryProducts.WithLabelValues(c.Name).Set(float64(categoryCounts[c.Name]))
	}
	CatalogCategoryProducts.WithLabelValues(minsan.Other).Set(float64(categoryCounts[minsan.Other]))
}

// RecordReload counts a reload attempt; result is "success", "failure" or "skipped".
func RecordReload(result string) {
	CatalogReloadsTotal.WithLabelValues(result).Inc()
}
