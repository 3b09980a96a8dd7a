// Cropwise - Crop Recommendation Scoring and Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cropwise

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Engine Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"}, // success, no_candidates, internal_error, cache_hit
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time spent scoring and ranking one request",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	CandidatesScored = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates_scored",
			Help:    "Number of crops scored per request",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	InputCoercions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "input_coercions_total",
			Help: "Numeric inputs that failed to parse and were replaced by a default",
		},
		[]string{"field"},
	)

	RegionLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "region_lookups_total",
			Help: "Region table lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	// Classifier Metrics
	ClassifierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_duration_seconds",
			Help:    "Duration of one batch scoring call",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"kind"},
	)

	ClassifierErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_errors_total",
			Help: "Total number of classifier scoring failures",
		},
		[]string{"kind"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Encoder Metrics
	EncoderExtensions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encoder_extensions_total",
			Help: "Categorical values first seen at serving time",
		},
		[]string{"field"},
	)

	EncoderTableSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "encoder_table_size",
			Help: "Number of codes assigned per categorical field",
		},
		[]string{"field"},
	)

	EncoderPersistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encoder_persist_errors_total",
			Help: "Failed writes of encoder extensions to the backing store",
		},
	)

	EncoderStoreOverwrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encoder_store_overwrites_total",
			Help: "Stale encoder store slots replaced by a live assignment",
		},
	)

	EncoderStalePruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encoder_store_stale_pruned_total",
			Help: "Stored extensions dropped at startup because they no longer fit the table",
		},
	)

	EncoderOverflow = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "encoder_overflow_total",
			Help: "Unseen values given a hashed code because the field reached its extension limit",
		},
		[]string{"field"},
	)

	EncoderStoreGCRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "encoder_store_gc_runs_total",
			Help: "Value log garbage collection passes over the encoder store",
		},
	)

	// Result Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Recommendation results served from cache",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_misses_total",
			Help: "Recommendation cache lookups that missed",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Domain events published",
		},
		[]string{"topic"},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_failed_total",
			Help: "Domain events that could not be published",
		},
		[]string{"topic"},
	)

	// Reference Data Metrics
	ReferenceRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reference_rows",
			Help: "Rows loaded into the reference data store",
		},
		[]string{"table"}, // crops, regions
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records the outcome and latency of one engine call.
func RecordRecommendation(outcome string, candidates int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	if candidates >= 0 {
		CandidatesScored.Observe(float64(candidates))
	}
}

// RecordClassifierCall records a batch scoring call.
func RecordClassifierCall(kind string, duration time.Duration, err error) {
	ClassifierDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if err != nil {
		ClassifierErrors.WithLabelValues(kind).Inc()
	}
}

// RecordRegionLookup records whether a query matched a region row.
func RecordRegionLookup(hit bool) {
	if hit {
		RegionLookups.WithLabelValues("hit").Inc()
		return
	}
	RegionLookups.WithLabelValues("miss").Inc()
}

// RecordInputCoercion records a numeric field that fell back to its default.
func RecordInputCoercion(field string) {
	InputCoercions.WithLabelValues(field).Inc()
}

// RecordEncoderExtension records a new serving-time code for field.
func RecordEncoderExtension(field string, size int) {
	EncoderExtensions.WithLabelValues(field).Inc()
	EncoderTableSize.WithLabelValues(field).Set(float64(size))
}

// RecordEvent records the publish result for a topic.
func RecordEvent(topic string, err error) {
	if err != nil {
		EventsFailed.WithLabelValues(topic).Inc()
		return
	}
	EventsPublished.WithLabelValues(topic).Inc()
}
