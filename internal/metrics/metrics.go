// Package metrics declares the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocell_http_requests_total",
		Help: "Total HTTP requests by route, method and status code",
	}, []string{"route", "method", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geocell_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{0.5, 1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route", "method"})
	IndexedLocations = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geocell_indexed_locations",
		Help: "Number of keyed locations held by the spatial index",
	})
	IndexOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geocell_index_operations_total",
		Help: "Spatial index operations by kind and outcome",
	}, []string{"op", "outcome"})
	QueryResults = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geocell_index_query_results",
		Help:    "Number of locations returned by a radius query",
		Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
	})
	CoverageHashes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "geocell_coverage_hashes",
		Help:    "Number of geohashes produced by a circle coverage request",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(IndexedLocations)
	prometheus.MustRegister(IndexOperationsTotal)
	prometheus.MustRegister(QueryResults)
	prometheus.MustRegister(CoverageHashes)
}

// Handler exposes every registered collector in the prometheus text format.
func Handler() http.Handler { return promhttp.Handler() }
