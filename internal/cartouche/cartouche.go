// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

// Package cartouche lays out the project label drawn over a background.
//
// A cartouche is up to three stacked text lines (project name, street or
// zone, option) placed at a fixed logical offset from the scene origin, not
// relative to the background's bounds. It is purely presentational and never
// receives pointer input. A Tracker recreates the overlay whenever the anchor
// background or any of the three fields changes.
package cartouche

import (
	"strings"

	"github.com/google/uuid"
)

// Fixed layout constants in logical units.
const (
	OriginX = 258.0
	OriginY = 536.0

	TitleFontSize  = 17.0
	DetailFontSize = 12.0
	LineSpacing    = 5.0
)

// BaseOfferLabel is shown for the base option.
const BaseOfferLabel = "Offre de base"

// Info is the cartouche metadata attached to a background image.
type Info struct {
	ProjectName  string `json:"projectName"`
	StreetOrZone string `json:"streetOrZone"`
	Option       string `json:"option"`
	HasCartouche bool   `json:"hasCartouche"`
}

// Line is one positioned text line. Y is the top of the line box.
type Line struct {
	Field    string  `json:"field"`
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize"`
}

// Overlay is a laid-out cartouche bound to one background.
type Overlay struct {
	ID          string `json:"id"`
	AnchorID    string `json:"anchorId"`
	Lines       []Line `json:"lines"`
	Interactive bool   `json:"interactive"`
}

// DecodeOption converts an option code to its display label:
// "base" or empty gives "Offre de base", "option-N" gives "Option N",
// anything else is returned unchanged.
func DecodeOption(code string) string {
	if code == "" || code == "base" {
		return BaseOfferLabel
	}
	if n, ok := strings.CutPrefix(code, "option-"); ok && n != "" {
		return "Option " + n
	}
	return code
}

// Layout positions the cartouche lines for info. Empty project and street
// fields are omitted and the remaining lines close up; the option line is
// always present. Returns nil when the background carries no cartouche.
func Layout(anchorID string, info Info) *Overlay {
	if !info.HasCartouche {
		return nil
	}

	fields := []struct {
		name string
		text string
		size float64
	}{
		{"projectName", info.ProjectName, TitleFontSize},
		{"streetOrZone", info.StreetOrZone, DetailFontSize},
		{"option", DecodeOption(info.Option), DetailFontSize},
	}

	overlay := &Overlay{ID: uuid.NewString(), AnchorID: anchorID}
	y := OriginY
	for _, f := range fields {
		if strings.TrimSpace(f.text) == "" {
			continue
		}
		overlay.Lines = append(overlay.Lines, Line{
			Field:    f.name,
			Text:     f.text,
			X:        OriginX,
			Y:        y,
			FontSize: f.size,
		})
		y += f.size + LineSpacing
	}
	return overlay
}

// Tracker holds the current overlay and rebuilds it only on change.
// It is not safe for concurrent use; the owning scene serializes access.
type Tracker struct {
	bound    bool
	anchorID string
	info     Info
	overlay  *Overlay
}

// Update binds the tracker to anchorID and info. The overlay is destroyed
// and recreated when either differs from the previous binding; recreated
// reports whether that happened. An unbound tracker given no anchor stays
// empty without reporting a change.
func (t *Tracker) Update(anchorID string, info Info) (overlay *Overlay, recreated bool) {
	if t.anchorID == anchorID && t.info == info && (t.bound || anchorID == "") {
		return t.overlay, false
	}

	t.bound = true
	t.anchorID = anchorID
	t.info = info
	t.overlay = nil
	if anchorID != "" {
		t.overlay = Layout(anchorID, info)
	}
	return t.overlay, true
}

// Clear destroys the overlay.
func (t *Tracker) Clear() {
	t.bound = false
	t.anchorID = ""
	t.info = Info{}
	t.overlay = nil
}

// Current returns the live overlay, or nil.
func (t *Tracker) Current() *Overlay {
	return t.overlay
}
