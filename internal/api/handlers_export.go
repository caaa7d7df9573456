// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/decorum/internal/geometry"
	"github.com/tomtom215/decorum/internal/logging"
	"github.com/tomtom215/decorum/internal/metrics"
	"github.com/tomtom215/decorum/internal/store"
)

// ExportHeader carries the stored export's id on PNG responses.
const ExportHeader = "X-Export-ID"

// CreateExport renders the session's scene to PNG and stores it. The pixel
// ratio comes from the body or the pixelRatio query parameter. Clients
// sending Accept: image/png get the image itself; everyone else gets the
// export metadata.
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil || h.exports == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "export not available")
		return
	}
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	var req ExportRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondDecodeError(w, r, err)
		return
	}
	if q := r.URL.Query().Get("pixelRatio"); q != "" && req.PixelRatio == 0 {
		v, err := strconv.ParseFloat(q, 64)
		if err != nil {
			NewResponseWriter(w, r).Error(http.StatusBadRequest, ErrCodeInvalidPixelRatio, "pixelRatio must be a number")
			return
		}
		req.PixelRatio = v
	}
	ratio, err := h.renderer.PixelRatio(req.PixelRatio)
	if err != nil {
		respondError(w, r, err)
		return
	}

	snap := sess.Scene.Snapshot()
	start := time.Now()
	png, err := h.renderer.RenderPNG(r.Context(), &snap, ratio)
	metrics.RecordExport(time.Since(start))
	if err != nil {
		respondError(w, r, err)
		return
	}

	sceneJSON, err := json.Marshal(snap)
	if err != nil {
		respondError(w, r, err)
		return
	}
	exp := &store.Export{
		SessionID:  sess.ID,
		PixelRatio: ratio,
		Width:      int(math.Round(geometry.SceneWidth * ratio)),
		Height:     int(math.Round(geometry.SceneHeight * ratio)),
		Scene:      sceneJSON,
	}
	if err := h.exports.Put(r.Context(), exp, png); err != nil {
		respondError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("session_id", sess.ID).
		Str("export_id", exp.ID).
		Float64("pixel_ratio", ratio).
		Int("bytes", exp.Bytes).
		Dur("duration", time.Since(start)).
		Msg("Scene exported")

	if wantsPNG(r) {
		w.Header().Set(ExportHeader, exp.ID)
		writePNG(w, png)
		return
	}
	exp.Scene = nil
	NewResponseWriter(w, r).Created(exp)
}

func wantsPNG(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "image/png") || r.URL.Query().Get("format") == "png"
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// ListSessionExports returns a session's stored exports, oldest first.
func (h *Handler) ListSessionExports(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "export not available")
		return
	}
	exps, err := h.exports.ListBySession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	for _, e := range exps {
		e.Scene = nil
	}
	NewResponseWriter(w, r).SuccessList(exps, len(exps))
}

// GetExport returns export metadata, or the PNG when asked for it.
func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "export not available")
		return
	}
	id := chi.URLParam(r, "exportID")
	if wantsPNG(r) {
		png, err := h.exports.PNG(r.Context(), id)
		if err != nil {
			respondError(w, r, err)
			return
		}
		w.Header().Set(ExportHeader, id)
		writePNG(w, png)
		return
	}
	exp, err := h.exports.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(exp)
}

// GetExportPNG streams the stored image.
func (h *Handler) GetExportPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	q.Set("format", "png")
	r.URL.RawQuery = q.Encode()
	h.GetExport(w, r)
}

// DeleteExport removes a stored export.
func (h *Handler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	if h.exports == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "export not available")
		return
	}
	if err := h.exports.Delete(r.Context(), chi.URLParam(r, "exportID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FlushOrders pushes the session's current decoration list to the order
// collaborator without waiting for the debounce.
func (h *Handler) FlushOrders(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	rw := NewResponseWriter(w, r)
	if sess.Orders == nil {
		rw.Error(http.StatusConflict, ErrCodeOrderSyncDisabled, "order sync is not enabled")
		return
	}
	sess.Orders.Update(sess.orderItems())
	result, err := sess.Orders.Flush(r.Context())
	if err != nil {
		rw.ErrorWithDetails(http.StatusBadGateway, ErrCodeOrderSyncFailed, err.Error(), map[string]string{"result": result})
		return
	}
	rw.Success(map[string]string{"result": result})
}
