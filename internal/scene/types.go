// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package scene

import (
	"errors"

	"github.com/tomtom215/decorum/internal/cartouche"
	"github.com/tomtom215/decorum/internal/geometry"
)

// Sentinel errors returned by scene operations.
var (
	ErrBackgroundRequired = errors.New("background image required")
	ErrDecorationNotFound = errors.New("decoration not found")
	ErrNoBackground       = errors.New("no background image")
	ErrInvalidDecoration  = errors.New("invalid decoration")
	ErrInvalidBackground  = errors.New("invalid background")
	ErrClosed             = errors.New("scene closed")
)

// KindImage is the only decoration kind.
const KindImage = "image"

// Decoration is a positioned, transformable image placed over the background.
// Field tags follow the decoration record exchanged with the host page.
type Decoration struct {
	ID           string   `json:"id"`
	DecorationID string   `json:"decorationId,omitempty"`
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	DayURL       string   `json:"dayUrl,omitempty"`
	NightURL     string   `json:"nightUrl,omitempty"`
	Src          string   `json:"src,omitempty"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Width        float64  `json:"width"`
	Height       float64  `json:"height"`
	Rotation     float64  `json:"rotation"`
	Price        *float64 `json:"price,omitempty"`
	Color        string   `json:"color,omitempty"`
	ImageID      string   `json:"imageId,omitempty"`
	ImageFailed  bool     `json:"imageFailed,omitempty"`

	natural     geometry.Size
	sized       bool
	appliedHash string
	pendingURL  string
}

// Center returns the decoration's anchor point.
func (d *Decoration) Center() geometry.Point {
	return geometry.Point{X: d.X, Y: d.Y}
}

// Size returns the decoration's logical size.
func (d *Decoration) Size() geometry.Size {
	return geometry.Size{Width: d.Width, Height: d.Height}
}

// NaturalSize returns the resolved natural size of the active image, if known.
func (d *Decoration) NaturalSize() (geometry.Size, bool) {
	return d.natural, d.natural.Valid()
}

// Background is the single background image of a scene.
type Background struct {
	ID            string          `json:"id"`
	Src           string          `json:"src"`
	DayURL        string          `json:"dayUrl,omitempty"`
	NightURL      string          `json:"nightUrl,omitempty"`
	X             float64         `json:"x"`
	Y             float64         `json:"y"`
	Width         float64         `json:"width"`
	Height        float64         `json:"height"`
	IsSourceImage bool            `json:"isSourceImage,omitempty"`
	IsCartouche   bool            `json:"isCartouche,omitempty"`
	Cartouche     *cartouche.Info `json:"cartouche,omitempty"`
	ImageFailed   bool            `json:"imageFailed,omitempty"`

	natural    geometry.Size
	pendingURL string
}

// Bounds returns the background's rectangle.
func (b *Background) Bounds() geometry.Rect {
	return geometry.CenteredRect(geometry.Point{X: b.X, Y: b.Y}, geometry.Size{Width: b.Width, Height: b.Height})
}

// BackgroundInput describes a background to place.
type BackgroundInput struct {
	ID            string          `json:"id" validate:"required"`
	DayURL        string          `json:"dayUrl" validate:"required"`
	NightURL      string          `json:"nightUrl,omitempty"`
	IsSourceImage bool            `json:"isSourceImage,omitempty"`
	Cartouche     *cartouche.Info `json:"cartouche,omitempty"`
}

// BackgroundOptions modifies SetBackground.
type BackgroundOptions struct {
	// PreserveCartouche carries the previous background's cartouche over to
	// the new background when the new one brings none of its own.
	PreserveCartouche bool
}

// CatalogEntry is a decoration from the decoration library collaborator.
type CatalogEntry struct {
	ID            string   `json:"id"`
	Name          string   `json:"name" validate:"required"`
	ImageURLDay   string   `json:"imageUrlDay,omitempty"`
	ImageURLNight string   `json:"imageUrlNight,omitempty"`
	ThumbnailURL  string   `json:"thumbnailUrl,omitempty"`
	Price         *float64 `json:"price,omitempty"`
}

// AddOptions modifies AddDecoration.
type AddOptions struct {
	// At requests a placement; the scene center is used when nil.
	At    *geometry.Point
	Color string
}

// Patch updates selected decoration attributes. Nil fields are left alone.
type Patch struct {
	Name     *string  `json:"name,omitempty"`
	DayURL   *string  `json:"dayUrl,omitempty"`
	NightURL *string  `json:"nightUrl,omitempty"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Color    *string  `json:"color,omitempty"`
}

// Transform is the outcome of a resize/rotate gesture. ScaleX and ScaleY
// are relative to the size at gesture start; X and Y, when set, are the
// new center after the transform.
type Transform struct {
	ScaleX   float64  `json:"scaleX"`
	ScaleY   float64  `json:"scaleY"`
	Rotation float64  `json:"rotation"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
}

// Snapshot is a consistent copy of the scene.
type Snapshot struct {
	ID           string             `json:"id"`
	Background   *Background        `json:"background,omitempty"`
	Decorations  []Decoration       `json:"decorations"`
	SelectedID   string             `json:"selectedId,omitempty"`
	Zones        []geometry.Zone    `json:"zones"`
	ZoneEditMode bool               `json:"zoneEditMode"`
	DayMode      bool               `json:"dayMode"`
	Cartouche    *cartouche.Overlay `json:"cartouche,omitempty"`
}

// ActiveSource picks the URL shown for a day/night pair. Night falls back to
// day when no night variant exists, and day falls back to night when only a
// night variant exists.
func ActiveSource(dayURL, nightURL string, dayMode bool) string {
	if !dayMode && nightURL != "" {
		return nightURL
	}
	if dayURL == "" {
		return nightURL
	}
	return dayURL
}
