// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/decorum/internal/middleware"
	"github.com/tomtom215/decorum/internal/render"
	"github.com/tomtom215/decorum/internal/store"
	"github.com/tomtom215/decorum/internal/validation"
	ws "github.com/tomtom215/decorum/internal/websocket"
)

// BreakerStater reports the order collaborator circuit state.
// *ordersync.HTTPSender satisfies it.
type BreakerStater interface {
	State() string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers_sessions.go: session lifecycle, stage, background, modes
//   - handlers_decorations.go: decoration editing and gestures
//   - handlers_conversion.go: source images and the day/night status feed
//   - handlers_export.go: PNG export and order sync
//   - handlers_health.go: health and monitoring endpoints
//   - handlers_websocket.go: per-session event stream
type Handler struct {
	sessions  *Registry
	renderer  *render.Renderer
	exports   *store.Store
	wsHub     *ws.Hub
	perfMon   *middleware.PerformanceMonitor
	origins   func(origin string) bool
	breaker   BreakerStater
	startTime time.Time
}

// HandlerDeps are the collaborators a Handler serves from.
type HandlerDeps struct {
	Sessions *Registry
	Renderer *render.Renderer
	Exports  *store.Store
	Hub      *ws.Hub
	PerfMon  *middleware.PerformanceMonitor
	// AllowOrigin decides WebSocket origins. Nil allows every origin.
	AllowOrigin func(origin string) bool
	// Breaker is optional.
	Breaker BreakerStater
}

// NewHandler creates a Handler.
func NewHandler(deps HandlerDeps) *Handler {
	perfMon := deps.PerfMon
	if perfMon == nil {
		perfMon = middleware.NewPerformanceMonitor(1000, time.Second)
	}
	return &Handler{
		sessions:  deps.Sessions,
		renderer:  deps.Renderer,
		exports:   deps.Exports,
		wsHub:     deps.Hub,
		perfMon:   perfMon,
		origins:   deps.AllowOrigin,
		breaker:   deps.Breaker,
		startTime: time.Now(),
	}
}

// session resolves the {sessionID} URL parameter. It writes the error
// response and returns nil when the session does not exist.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *Session {
	sess, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return nil
	}
	return sess
}

// decodeRequest decodes and validates the body, writing a 400 on failure.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	err := decodeBody(w, r, dst)
	if err == nil {
		return true
	}
	respondDecodeError(w, r, err)
	return false
}

// respondDecodeError writes validation failures in detail and anything else
// as a plain bad request.
func respondDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		respondError(w, r, err)
	} else {
		NewResponseWriter(w, r).BadRequest(err.Error())
	}
}
