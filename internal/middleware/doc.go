// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package middleware provides the HTTP middleware shared by every designer
endpoint.

  - RequestID: accepts or generates X-Request-ID and seeds the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge
  - PerformanceMonitor: rolling per-route latency percentiles for
    GET /api/v1/stats/endpoints

Middleware is written against http.HandlerFunc and adapted to chi in the
api package. Metrics are labelled with the chi route pattern
(/api/v1/sessions/{sessionID}) rather than the raw path, so session and
decoration ids never become label values.

The response writer wrapper comes from chi's middleware.WrapResponseWriter,
which keeps http.Hijacker working for the WebSocket upgrade.
*/
package middleware
