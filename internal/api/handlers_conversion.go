// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"net/http"

	"github.com/tomtom215/decorum/internal/daynight"
	"github.com/tomtom215/decorum/internal/scene"
)

// AddSourceImages registers uploaded photos and starts their conversion
// timeline.
func (h *Handler) AddSourceImages(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req SourceImagesRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	added, err := sess.Conversion.AddBatch(req.Images)
	if err != nil {
		respondError(w, r, err)
		return
	}
	images := sess.Conversion.Images()
	NewResponseWriter(w, r).Success(map[string]interface{}{"added": added, "images": images})
}

// GetConversion returns the mode and every tracked image.
func (h *Handler) GetConversion(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"conversion": sess.conversionView(),
		"images":     sess.Conversion.Images(),
	})
}

// ConversionStatus applies one entry of the conversion status feed.
// Stale and repeated reports succeed with changed=false.
func (h *Handler) ConversionStatus(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req ConversionStatusRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	status, err := daynight.ParseStatus(req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	changed, err := sess.Conversion.ApplyStatus(req.ImageID, status, req.NightURL)
	if err != nil {
		respondError(w, r, err)
		return
	}
	current, _ := sess.Conversion.Status(req.ImageID)
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"imageId": req.ImageID,
		"status":  current,
		"changed": changed,
	})
}

// ActivateImage makes a source image the scene background. The cartouche
// of the previous background carries over.
func (h *Handler) ActivateImage(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req ActiveImageRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	src, err := sess.Conversion.Activate(req.ImageID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	bg, err := sess.Scene.SetBackground(scene.BackgroundInput{
		ID:            src.ID,
		DayURL:        src.DayThumbnailURL,
		NightURL:      src.NightURL,
		IsSourceImage: true,
	}, scene.BackgroundOptions{PreserveCartouche: true})
	if err != nil {
		sess.Conversion.Deactivate(src.ID)
		respondError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(bg)
}
