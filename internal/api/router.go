// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/decorum/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	mw := router.chiMiddleware

	r := chi.NewRouter()

	// Global middleware, applied to every route in order
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered everywhere

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(h.perfMon.Middleware))

		r.Get("/stats/endpoints", h.EndpointStats)
		r.Get("/stats/recent", h.RecentRequests)

		r.Route("/exports/{exportID}", func(r chi.Router) {
			r.Use(mw.RateLimit())
			r.Get("/", h.GetExport)
			r.Get("/png", h.GetExportPNG)
			r.Delete("/", h.DeleteExport)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.With(mw.RateLimit()).Post("/", h.CreateSession)
			r.With(mw.RateLimit()).Get("/", h.ListSessions)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(SessionLogContext)
				r.With(mw.RateLimitCustom(RateLimitWebSocket)).Get("/ws", h.WebSocket)
				r.With(mw.RateLimitCustom(RateLimitPointer)).Post("/pointer", h.Pointer)
				r.With(mw.RateLimitCustom(RateLimitPointer)).Post("/decorations/{decorationID}/drag", h.Drag)
				r.With(mw.RateLimitCustom(RateLimitExport)).Post("/exports", h.CreateExport)

				r.Group(func(r chi.Router) {
					r.Use(mw.RateLimit())

					r.Get("/", h.GetSession)
					r.Delete("/", h.DeleteSession)
					r.Put("/stage", h.ResizeStage)

					r.Put("/background", h.SetBackground)
					r.Delete("/background", h.RemoveBackground)
					r.Put("/background/night", h.SetBackgroundNight)
					r.Put("/cartouche", h.SetCartouche)
					r.Put("/zones", h.SetZones)
					r.Put("/zone-edit", h.SetZoneEditMode)
					r.Put("/mode", h.SetMode)

					r.Put("/selection", h.Select)
					r.Delete("/selection", h.ClearSelection)
					r.Post("/click-empty", h.ClickEmpty)

					r.Get("/decorations", h.ListDecorations)
					r.Post("/decorations", h.AddDecoration)
					r.Post("/decorations/load", h.LoadDecorations)
					r.Patch("/decorations/{decorationID}", h.UpdateDecoration)
					r.Delete("/decorations/{decorationID}", h.DeleteDecoration)
					r.Post("/decorations/{decorationID}/transform", h.Transform)
					r.Post("/decorations/{decorationID}/front", h.BringToFront)
					r.Post("/decorations/{decorationID}/back", h.SendToBack)
					r.Post("/decorations/{decorationID}/correct-aspect", h.CorrectAspect)

					r.Get("/conversion", h.GetConversion)
					r.Post("/source-images", h.AddSourceImages)
					r.Post("/conversion-status", h.ConversionStatus)
					r.Put("/active-image", h.ActivateImage)

					r.Get("/exports", h.ListSessionExports)
					r.Post("/orders/flush", h.FlushOrders)
				})
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}
