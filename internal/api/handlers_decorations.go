// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/decorum/internal/geometry"
	"github.com/tomtom215/decorum/internal/scene"
)

// AddDecoration places a catalog entry on the scene.
func (h *Handler) AddDecoration(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req AddDecorationRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	entry, opts := req.entry()
	d, err := sess.Scene.AddDecoration(entry, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(d)
}

// ListDecorations returns decorations in z-order, bottom first.
func (h *Handler) ListDecorations(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	decos := sess.Scene.Decorations()
	NewResponseWriter(w, r).SuccessList(decos, len(decos))
}

// LoadDecorations restores previously saved decoration records.
func (h *Handler) LoadDecorations(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req LoadDecorationsRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	loaded, skipped, err := sess.Scene.LoadDecorations(req.Decorations)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]int{"loaded": loaded, "skipped": skipped})
}

// UpdateDecoration patches one decoration.
func (h *Handler) UpdateDecoration(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req UpdateDecorationRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	d, err := sess.Scene.UpdateDecoration(chi.URLParam(r, "decorationID"), req.patch())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(d)
}

// DeleteDecoration removes one decoration.
func (h *Handler) DeleteDecoration(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	if err := sess.Scene.RemoveDecoration(chi.URLParam(r, "decorationID")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dragResponse is returned by Drag and by pointer moves.
type dragResponse struct {
	Dragging   bool                 `json:"dragging"`
	Snap       *geometry.SnapResult `json:"snap,omitempty"`
	Decoration *scene.Decoration    `json:"decoration,omitempty"`
}

// Drag previews (move) or commits (end) a drag in logical units.
func (h *Handler) Drag(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req DragRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "decorationID")

	if req.Phase == PhaseMove {
		snap, err := sess.Scene.DragMove(id, req.X, req.Y)
		if err != nil {
			respondError(w, r, err)
			return
		}
		NewResponseWriter(w, r).Success(dragResponse{Dragging: true, Snap: &snap})
		return
	}

	d, snap, err := sess.Scene.DragEnd(id, req.X, req.Y)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(dragResponse{Snap: &snap, Decoration: &d})
}

// Transform commits a resize/rotate gesture.
func (h *Handler) Transform(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req TransformRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	d, err := sess.Scene.TransformEnd(chi.URLParam(r, "decorationID"), req.transform())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(d)
}

// orderResponse reports a z-order change.
type orderResponse struct {
	Changed bool     `json:"changed"`
	Order   []string `json:"order"`
}

// BringToFront moves a decoration to the top of the z-order.
func (h *Handler) BringToFront(w http.ResponseWriter, r *http.Request) {
	h.reorder(w, r, true)
}

// SendToBack moves a decoration to the bottom of the z-order.
func (h *Handler) SendToBack(w http.ResponseWriter, r *http.Request) {
	h.reorder(w, r, false)
}

func (h *Handler) reorder(w http.ResponseWriter, r *http.Request, front bool) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	id := chi.URLParam(r, "decorationID")
	reorder := sess.Scene.SendToBack
	if front {
		reorder = sess.Scene.BringToFront
	}
	order, changed, err := reorder(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	ids := make([]string, len(order))
	for i := range order {
		ids[i] = order[i].ID
	}
	NewResponseWriter(w, r).Success(orderResponse{Changed: changed, Order: ids})
}

// CorrectAspect restores a decoration's natural aspect ratio.
func (h *Handler) CorrectAspect(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	id := chi.URLParam(r, "decorationID")
	corrected, err := sess.Scene.CorrectAspect(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	d, _ := sess.Scene.Decoration(id)
	NewResponseWriter(w, r).Success(map[string]interface{}{"corrected": corrected, "decoration": d})
}

// Pointer feeds one raw pointer event into the session's gesture tracker.
// Coordinates default to physical container pixels.
func (h *Handler) Pointer(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req PointerRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	p := geometry.Point{X: req.X, Y: req.Y}
	if req.Space != SpaceLogical {
		p = sess.Stage.ToLogical(req.X, req.Y)
	}
	rw := NewResponseWriter(w, r)

	switch req.Phase {
	case PointerPhaseDown:
		if err := sess.Scene.PointerDown(req.DecorationID, scene.PointerKind(req.Kind), p.X, p.Y); err != nil {
			respondError(w, r, err)
			return
		}
		rw.Success(map[string]string{"selectedId": sess.Scene.Selected()})
	case PointerPhaseMove:
		snap, dragging, err := sess.Scene.PointerMove(p.X, p.Y)
		if err != nil {
			respondError(w, r, err)
			return
		}
		resp := dragResponse{Dragging: dragging}
		if dragging {
			resp.Snap = &snap
		}
		rw.Success(resp)
	case PointerPhaseUp:
		res, err := sess.Scene.PointerUp(p.X, p.Y)
		if err != nil {
			respondError(w, r, err)
			return
		}
		rw.Success(res)
	default:
		sess.Scene.CancelGesture()
		w.WriteHeader(http.StatusNoContent)
	}
}
