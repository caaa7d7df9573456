// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"net/http"
	"strconv"
	"time"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status           string  `json:"status"`
	Uptime           float64 `json:"uptime_seconds"`
	Sessions         int     `json:"sessions"`
	WebSocketClients int     `json:"websocket_clients"`
	ExportStore      bool    `json:"export_store"`
	OrderSync        string  `json:"order_sync"`
}

// Health reports overall status. It is degraded while the order
// collaborator's circuit is open or the export store is missing.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:      "healthy",
		Uptime:      time.Since(h.startTime).Seconds(),
		Sessions:    h.sessions.Len(),
		ExportStore: h.exports != nil,
		OrderSync:   "disabled",
	}
	if h.wsHub != nil {
		health.WebSocketClients = h.wsHub.GetClientCount()
	}
	if h.breaker != nil {
		health.OrderSync = h.breaker.State()
		if health.OrderSync == "open" {
			health.Status = "degraded"
		}
	}
	if !health.ExportStore {
		health.Status = "degraded"
	}
	NewResponseWriter(w, r).Success(health)
}

// HealthLive returns 200 while the process is alive.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 503 once the registry stops accepting sessions.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.sessions.Accepting() {
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "shutting down")
		return
	}
	rw.Success(map[string]bool{"ready": true})
}

// EndpointStats returns per-route latency statistics.
func (h *Handler) EndpointStats(w http.ResponseWriter, r *http.Request) {
	stats := h.perfMon.GetStats()
	NewResponseWriter(w, r).SuccessList(stats, len(stats))
}

// RecentRequests returns the last n requests, 100 by default.
func (h *Handler) RecentRequests(w http.ResponseWriter, r *http.Request) {
	n := 100
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 || v > 1000 {
			NewResponseWriter(w, r).BadRequest("n must be between 1 and 1000")
			return
		}
		n = v
	}
	recent := h.perfMon.GetRecentMetrics(n)
	NewResponseWriter(w, r).SuccessList(recent, len(recent))
}
