// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

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

	// Image Dimension Metrics
	ImageSizeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_size_cache_hits_total",
			Help: "Image size lookups served from the URL cache",
		},
	)

	ImageSizeCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "image_size_cache_misses_total",
			Help: "Image size lookups that required a fetch",
		},
	)

	ImageSizeFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_size_fetch_duration_seconds",
			Help:    "Duration of remote image header fetches",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ImageSizeFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_size_fetch_errors_total",
			Help: "Failed image size resolutions",
		},
		[]string{"reason"},
	)

	// Day/Night Conversion Metrics
	ConversionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversion_transitions_total",
			Help: "Day/night conversion state transitions",
		},
		[]string{"to_state"},
	)

	// Order Sync Metrics
	OrderSyncFlushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_sync_flushes_total",
			Help: "Order sync flush attempts by result",
		},
		[]string{"result"},
	)

	OrderSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_sync_duration_seconds",
			Help:    "Duration of order sync requests",
			Buckets: prometheus.DefBuckets,
		},
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
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Scene Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "designer_sessions_active",
			Help: "Current number of open designer sessions",
		},
	)

	SceneEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scene_events_total",
			Help: "Events raised by designer scenes",
		},
		[]string{"event"},
	)

	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "export_duration_seconds",
			Help:    "Duration of raster scene exports",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "WebSocket messages dropped because a buffer was full",
		},
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

// RecordImageLookup records a size cache hit or miss.
func RecordImageLookup(hit bool) {
	if hit {
		ImageSizeCacheHits.Inc()
	} else {
		ImageSizeCacheMisses.Inc()
	}
}

// RecordImageFetch records a remote size fetch. reason is empty on success.
func RecordImageFetch(duration time.Duration, reason string) {
	ImageSizeFetchDuration.Observe(duration.Seconds())
	if reason != "" {
		ImageSizeFetchErrors.WithLabelValues(reason).Inc()
	}
}

// RecordConversionTransition records a conversion state change.
func RecordConversionTransition(toState string) {
	ConversionTransitions.WithLabelValues(toState).Inc()
}

// RecordOrderSync records the outcome of an order sync flush.
func RecordOrderSync(result string, duration time.Duration) {
	OrderSyncFlushes.WithLabelValues(result).Inc()
	if duration > 0 {
		OrderSyncDuration.Observe(duration.Seconds())
	}
}

// RecordSceneEvent counts an event raised by a scene.
func RecordSceneEvent(event string) {
	SceneEvents.WithLabelValues(event).Inc()
}

// RecordExport records a raster export duration.
func RecordExport(duration time.Duration) {
	ExportDuration.Observe(duration.Seconds())
}
