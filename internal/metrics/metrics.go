// Package metrics exposes Prometheus collectors for the metadata source.
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
	lookupsTotal         *prometheus.CounterVec
	detailPagesTotal     *prometheus.CounterVec
	fieldParseFailures   *prometheus.CounterVec
	fetchDurationSeconds *prometheus.HistogramVec
	coverDownloadsTotal  *prometheus.CounterVec
	activeWorkers        prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		lookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yes24_lookups_total",
				Help: "Total identify lookups, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		detailPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yes24_detail_pages_total",
				Help: "Total detail pages fetched, labeled by HTTP status.",
			},
			[]string{"status"},
		)

		fieldParseFailures = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yes24_field_parse_failures_total",
				Help: "Total optional-field parse failures, labeled by field.",
			},
			[]string{"field"},
		)

		fetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "yes24_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by kind.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"kind"},
		)

		coverDownloadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "yes24_cover_downloads_total",
				Help: "Total cover downloads, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "yes24_active_workers",
				Help: "Number of detail-page workers currently running.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveLookup increments the lookup counter for the given outcome.
func ObserveLookup(outcome string) {
	lookupsTotal.WithLabelValues(outcome).Inc()
}

// ObserveDetailPage increments the detail-page counter for an HTTP status.
func ObserveDetailPage(status int) {
	detailPagesTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveFieldParseFailure increments the parse-failure counter for a field.
func ObserveFieldParseFailure(field string) {
	fieldParseFailures.WithLabelValues(field).Inc()
}

// ObserveFetchDuration records a page fetch latency.
func ObserveFetchDuration(kind string, d time.Duration) {
	fetchDurationSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveCoverDownload increments the cover download counter.
func ObserveCoverDownload(outcome string) {
	coverDownloadsTotal.WithLabelValues(outcome).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	activeWorkers.Dec()
}
