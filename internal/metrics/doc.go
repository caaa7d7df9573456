// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package metrics provides Prometheus metrics for the designer service.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Image dimension resolution and the size cache
  - Day/night conversion state transitions
  - Order sync flushes and the order-sync circuit breaker
  - Raster exports
  - Designer sessions and WebSocket connections

# Metrics Endpoint

Metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:8088/metrics

# Available Metrics

HTTP Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)

Image Metrics:
  - image_size_cache_hits_total / image_size_cache_misses_total (counter)
  - image_size_fetch_duration_seconds: Remote fetch latency (histogram)
  - image_size_fetch_errors_total: Failed fetches (counter)
    Labels: reason

Conversion Metrics:
  - conversion_transitions_total: State transitions (counter)
    Labels: to_state

Order Sync Metrics:
  - order_sync_flushes_total: Flush attempts (counter)
    Labels: result (sent, unchanged, in_flight, failed)
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open

Scene Metrics:
  - designer_sessions_active: Open sessions (gauge)
  - scene_events_total: Events raised by scenes (counter)
    Labels: event
  - export_duration_seconds: Raster export latency (histogram)

All metrics are registered on the default registry through promauto.
*/
package metrics
