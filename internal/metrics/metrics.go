// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	listingsTotal             *prometheus.CounterVec
	fetchesTotal              *prometheus.CounterVec
	fetchDelaySeconds         prometheus.Histogram
	searchesTotal             *prometheus.CounterVec
	searchDurationSeconds     *prometheus.HistogramVec
	httpRequestsTotal         *prometheus.CounterVec
	httpRequestDurationSecond *prometheus.HistogramVec

	once sync.Once
)

// Init registers the collectors. Safe to call multiple times.
func Init() {
	once.Do(func() {
		listingsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_listings_total",
				Help: "Listings successfully extracted, labeled by source.",
			},
			[]string{"source"},
		)

		fetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_fetches_total",
				Help: "Document fetches, labeled by strategy and outcome.",
			},
			[]string{"strategy", "status"},
		)

		fetchDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harvester_fetch_delay_seconds",
				Help:    "Politeness delay paid before each static fetch.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
		)

		searchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_searches_total",
				Help: "Multi-source searches, labeled by outcome.",
			},
			[]string{"status"},
		)

		searchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "harvester_search_duration_seconds",
				Help:    "Per-source search durations.",
				Buckets: []float64{1, 5, 10, 30, 60, 120},
			},
			[]string{"source"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests served, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSecond = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveListings adds extracted listing counts for a source.
func ObserveListings(source string, count int) {
	Init()
	listingsTotal.WithLabelValues(source).Add(float64(count))
}

// ObserveFetch records a fetch attempt outcome.
func ObserveFetch(strategy, status string) {
	Init()
	fetchesTotal.WithLabelValues(strategy, status).Inc()
}

// ObserveFetchDelay records the politeness wait paid before a static fetch.
func ObserveFetchDelay(d time.Duration) {
	Init()
	if d > time.Millisecond {
		fetchDelaySeconds.Observe(d.Seconds())
	}
}

// ObserveSearch records a completed multi-source search.
func ObserveSearch(status string) {
	Init()
	searchesTotal.WithLabelValues(status).Inc()
}

// ObserveSourceSearch records the duration of a single adapter run.
func ObserveSourceSearch(source string, d time.Duration) {
	Init()
	searchDurationSeconds.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveHTTPRequest records a served HTTP request.
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSecond.WithLabelValues(method, route).Observe(d.Seconds())
}
