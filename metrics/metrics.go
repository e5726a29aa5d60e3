// Package metrics provides Prometheus metrics for the HTTP server and the index builds.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//   - http_response_size_bytes: Histogram of body sizes with method and path labels;
//     304 answers to snapshot ETags show up as zero-byte responses
//
// Index metrics describe the last successful build (drugs, mentions, journals,
// build duration and time) and count failed builds and query cache lookups.
//
// All metrics are automatically registered with the Prometheus default registry
// during package initialization.
package metrics

import (
	"time"

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

	HTTPResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response body size",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"method", "path"},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	IndexDrugs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mention_index_drugs",
			Help: "Number of drugs in the published index",
		},
	)

	IndexMentions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mention_index_mentions",
			Help: "Number of distinct mentions in the published index",
		},
	)

	IndexJournals = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mention_index_journals",
			Help: "Number of journals mentioning at least one drug",
		},
	)

	IndexBuildDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mention_index_build_duration_seconds",
			Help: "Duration of the last successful index build, parsing included",
		},
	)

	IndexLastBuild = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mention_index_last_build_timestamp_seconds",
			Help: "Unix time of the last successful index build",
		},
	)

	IndexBuildFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mention_index_build_failures_total",
			Help: "Total failed index builds",
		},
	)

	QueryCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_lookups_total",
			Help: "Query cache lookups by query and result",
		},
		[]string{"query", "result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(HTTPResponseSize)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(IndexDrugs)
	prometheus.MustRegister(IndexMentions)
	prometheus.MustRegister(IndexJournals)
	prometheus.MustRegister(IndexBuildDuration)
	prometheus.MustRegister(IndexLastBuild)
	prometheus.MustRegister(IndexBuildFailures)
	prometheus.MustRegister(QueryCacheLookups)
}

// RecordBuild updates the index gauges after a successful build.
func RecordBuild(drugs, mentions, journals int, duration time.Duration, at time.Time) {
	IndexDrugs.Set(float64(drugs))
	IndexMentions.Set(float64(mentions))
	IndexJournals.Set(float64(journals))
	IndexBuildDuration.Set(duration.Seconds())
	IndexLastBuild.Set(float64(at.Unix()))
}

// RecordCacheLookup counts a query cache hit or miss.
func RecordCacheLookup(query string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	QueryCacheLookups.WithLabelValues(query, result).Inc()
}
