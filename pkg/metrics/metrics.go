// Package metrics defines the Prometheus collectors used across the platform
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the platform.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        *prometheus.HistogramVec
	SearchResultsCount   prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	RecordsIndexedTotal  prometheus.Counter
	StoreRecords         prometheus.Gauge
	KeyIndexCapacity     prometheus.Gauge
	KeyIndexResizesTotal prometheus.Gauge
	TrieNodes            prometheus.Gauge
}

// New creates and registers all Prometheus collectors.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by kind (id, prefix, exact) and result (hit, miss).",
			},
			[]string{"kind", "result"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per prefix search.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		RecordsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "records_indexed_total",
				Help: "Total records applied to the store.",
			},
		),
		StoreRecords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "store_records",
				Help: "Number of distinct keys in the store.",
			},
		),
		KeyIndexCapacity: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "key_index_capacity",
				Help: "Current bucket array length of the key index.",
			},
		),
		KeyIndexResizesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "key_index_resizes_total",
				Help: "Number of doubling resizes the key index has performed.",
			},
		),
		TrieNodes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "trie_nodes",
				Help: "Number of nodes allocated by the text trie.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.RecordsIndexedTotal,
		m.StoreRecords,
		m.KeyIndexCapacity,
		m.KeyIndexResizesTotal,
		m.TrieNodes,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
