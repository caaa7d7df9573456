// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CreateSession opens a designer session. The body is optional.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondDecodeError(w, r, err)
		return
	}

	sess, err := h.sessions.Create(req.ContainerWidth, req.ContainerHeight)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Created(sess.View())
}

// ListSessions returns every open session.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	list := h.sessions.List()
	NewResponseWriter(w, r).SuccessList(list, len(list))
}

// GetSession returns the full session state.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	NewResponseWriter(w, r).Success(sess.View())
}

// DeleteSession closes a session.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sessionID"), "client"); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResizeStage reports a new container size and returns the fitted stage.
func (h *Handler) ResizeStage(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req StageRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	sess.Container.SetSize(req.Width, req.Height)
	NewResponseWriter(w, r).Success(sess.Stage.Snapshot())
}

// SetBackground places or replaces the background image.
func (h *Handler) SetBackground(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req BackgroundRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	in, opts := req.input()
	bg, err := sess.Scene.SetBackground(in, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(bg)
}

// RemoveBackground clears the background. Decorations stay.
func (h *Handler) RemoveBackground(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	bgID, _ := sess.Scene.BackgroundID()
	if err := sess.Scene.RemoveBackground(); err != nil {
		respondError(w, r, err)
		return
	}
	sess.Conversion.Deactivate(bgID)
	w.WriteHeader(http.StatusNoContent)
}

// SetBackgroundNight attaches a night variant to the current background.
func (h *Handler) SetBackgroundNight(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req BackgroundNightRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := sess.Scene.SetBackgroundNight(req.ID, req.NightURL); err != nil {
		respondError(w, r, err)
		return
	}
	bg, _ := sess.Scene.Background()
	NewResponseWriter(w, r).Success(bg)
}

// SetZones replaces the snap zones.
func (h *Handler) SetZones(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req ZonesRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := sess.Scene.SetZones(req.zones()); err != nil {
		respondError(w, r, err)
		return
	}
	zones := sess.Scene.Zones()
	NewResponseWriter(w, r).SuccessList(zones, len(zones))
}

// SetZoneEditMode shows or hides zone outlines.
func (h *Handler) SetZoneEditMode(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req ToggleRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := sess.Scene.SetZoneEditMode(*req.Enabled); err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]bool{"zoneEditMode": *req.Enabled})
}

// SetCartouche updates the cartouche text of the current background.
func (h *Handler) SetCartouche(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req CartoucheRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	overlay, err := sess.Scene.SetCartouche(req.info())
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(overlay)
}

// SetMode switches day or night mode. An empty body toggles.
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req ModeRequest
	if err := decodeBody(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondDecodeError(w, r, err)
		return
	}

	var (
		day bool
		err error
	)
	if req.Day == nil {
		day, err = sess.Conversion.Toggle()
	} else {
		day = *req.Day
		err = sess.Conversion.SetDayMode(day)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]bool{"dayMode": day})
}

// Select selects a decoration.
func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req SelectRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if err := sess.Scene.Select(req.ID); err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]string{"selectedId": sess.Scene.Selected()})
}

// ClearSelection deselects.
func (h *Handler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	if err := sess.Scene.ClearSelection(); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClickEmpty handles a click on empty canvas. Outside zone editing it
// clears the selection.
func (h *Handler) ClickEmpty(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	cleared, err := sess.Scene.ClickEmpty()
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]bool{"cleared": cleared})
}
