// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/decorum/internal/cartouche"
	"github.com/tomtom215/decorum/internal/daynight"
	"github.com/tomtom215/decorum/internal/geometry"
	"github.com/tomtom215/decorum/internal/scene"
	"github.com/tomtom215/decorum/internal/validation"
)

// maxBodyBytes bounds request bodies. Images travel by URL, so bodies are
// small apart from inline data URLs.
const maxBodyBytes = 4 << 20

// errEmptyBody marks a request that needs a body but has none.
var errEmptyBody = errors.New("request body required")

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// CreateSessionRequest opens a session, optionally sized to a container.
type CreateSessionRequest struct {
	ContainerWidth  float64 `json:"containerWidth" validate:"gte=0,finite"`
	ContainerHeight float64 `json:"containerHeight" validate:"gte=0,finite"`
}

// StageRequest reports the client container size.
type StageRequest struct {
	Width  float64 `json:"width" validate:"gte=0,finite"`
	Height float64 `json:"height" validate:"gte=0,finite"`
}

// BackgroundRequest places a background image.
type BackgroundRequest struct {
	ID                string          `json:"id" validate:"required"`
	DayURL            string          `json:"dayUrl" validate:"required,imageurl"`
	NightURL          string          `json:"nightUrl,omitempty" validate:"omitempty,imageurl"`
	IsSourceImage     bool            `json:"isSourceImage,omitempty"`
	Cartouche         *cartouche.Info `json:"cartouche,omitempty"`
	PreserveCartouche bool            `json:"preserveCartouche,omitempty"`
}

func (b *BackgroundRequest) input() (scene.BackgroundInput, scene.BackgroundOptions) {
	return scene.BackgroundInput{
			ID:            b.ID,
			DayURL:        b.DayURL,
			NightURL:      b.NightURL,
			IsSourceImage: b.IsSourceImage,
			Cartouche:     b.Cartouche,
		}, scene.BackgroundOptions{
			PreserveCartouche: b.PreserveCartouche,
		}
}

// ZonesRequest replaces the snap zones.
type ZonesRequest struct {
	Zones []ZoneRequest `json:"zones" validate:"dive"`
}

// ZoneRequest is one snap zone.
type ZoneRequest struct {
	ID     string  `json:"id,omitempty"`
	X      float64 `json:"x" validate:"finite"`
	Y      float64 `json:"y" validate:"finite"`
	Width  float64 `json:"width" validate:"gt=0,finite"`
	Height float64 `json:"height" validate:"gt=0,finite"`
	Label  string  `json:"label" validate:"max=200"`
}

func (z ZonesRequest) zones() []geometry.Zone {
	out := make([]geometry.Zone, len(z.Zones))
	for i, zr := range z.Zones {
		out[i] = geometry.Zone{ID: zr.ID, X: zr.X, Y: zr.Y, Width: zr.Width, Height: zr.Height, Label: zr.Label}
	}
	return out
}

// ToggleRequest switches a boolean mode.
type ToggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// ModeRequest sets day or night mode. Omitting day toggles.
type ModeRequest struct {
	Day *bool `json:"day,omitempty"`
}

// AddDecorationRequest places a catalog entry.
type AddDecorationRequest struct {
	ID            string   `json:"id"`
	Name          string   `json:"name" validate:"required,max=200"`
	ImageURLDay   string   `json:"imageUrlDay,omitempty" validate:"omitempty,imageurl"`
	ImageURLNight string   `json:"imageUrlNight,omitempty" validate:"omitempty,imageurl"`
	ThumbnailURL  string   `json:"thumbnailUrl,omitempty" validate:"omitempty,imageurl"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0,finite"`
	X             *float64 `json:"x,omitempty" validate:"omitempty,finite"`
	Y             *float64 `json:"y,omitempty" validate:"omitempty,finite"`
	Color         string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func (a *AddDecorationRequest) entry() (scene.CatalogEntry, scene.AddOptions) {
	opts := scene.AddOptions{Color: a.Color}
	if a.X != nil && a.Y != nil {
		opts.At = &geometry.Point{X: *a.X, Y: *a.Y}
	}
	return scene.CatalogEntry{
		ID:            a.ID,
		Name:          a.Name,
		ImageURLDay:   a.ImageURLDay,
		ImageURLNight: a.ImageURLNight,
		ThumbnailURL:  a.ThumbnailURL,
		Price:         a.Price,
	}, opts
}

// UpdateDecorationRequest patches decoration attributes.
type UpdateDecorationRequest struct {
	Name     *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	DayURL   *string  `json:"dayUrl,omitempty" validate:"omitempty,imageurl"`
	NightURL *string  `json:"nightUrl,omitempty" validate:"omitempty,imageurl"`
	X        *float64 `json:"x,omitempty" validate:"omitempty,finite"`
	Y        *float64 `json:"y,omitempty" validate:"omitempty,finite"`
	Width    *float64 `json:"width,omitempty" validate:"omitempty,finite"`
	Height   *float64 `json:"height,omitempty" validate:"omitempty,finite"`
	Rotation *float64 `json:"rotation,omitempty" validate:"omitempty,finite"`
	Price    *float64 `json:"price,omitempty" validate:"omitempty,gte=0,finite"`
	Color    *string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

func (u *UpdateDecorationRequest) patch() scene.Patch {
	return scene.Patch{
		Name:     u.Name,
		DayURL:   u.DayURL,
		NightURL: u.NightURL,
		X:        u.X,
		Y:        u.Y,
		Width:    u.Width,
		Height:   u.Height,
		Rotation: u.Rotation,
		Price:    u.Price,
		Color:    u.Color,
	}
}

// LoadDecorationsRequest restores saved decoration records. Records are
// kept raw so one malformed entry is skipped rather than failing the batch.
type LoadDecorationsRequest struct {
	Decorations []json.RawMessage `json:"decorations" validate:"required"`
}

// SelectRequest selects a decoration.
type SelectRequest struct {
	ID string `json:"id" validate:"required"`
}

// Drag phases.
const (
	PhaseMove = "move"
	PhaseEnd  = "end"
)

// DragRequest reports a drag position in logical units.
type DragRequest struct {
	Phase string  `json:"phase" validate:"required,oneof=move end"`
	X     float64 `json:"x" validate:"finite"`
	Y     float64 `json:"y" validate:"finite"`
}

// TransformRequest commits a resize/rotate gesture.
type TransformRequest struct {
	ScaleX   float64  `json:"scaleX" validate:"finite"`
	ScaleY   float64  `json:"scaleY" validate:"finite"`
	Rotation float64  `json:"rotation" validate:"finite"`
	X        *float64 `json:"x,omitempty" validate:"omitempty,finite"`
	Y        *float64 `json:"y,omitempty" validate:"omitempty,finite"`
}

func (t *TransformRequest) transform() scene.Transform {
	return scene.Transform{ScaleX: t.ScaleX, ScaleY: t.ScaleY, Rotation: t.Rotation, X: t.X, Y: t.Y}
}

// Pointer phases and coordinate spaces.
const (
	PointerPhaseDown   = "down"
	PointerPhaseMove   = "move"
	PointerPhaseUp     = "up"
	PointerPhaseCancel = "cancel"

	SpacePhysical = "physical"
	SpaceLogical  = "logical"
)

// PointerRequest is one raw pointer event. Physical coordinates are
// converted through the session's stage scale.
type PointerRequest struct {
	Phase        string  `json:"phase" validate:"required,oneof=down move up cancel"`
	DecorationID string  `json:"decorationId" validate:"required_if=Phase down"`
	Kind         string  `json:"kind,omitempty" validate:"omitempty,oneof=mouse touch"`
	Space        string  `json:"space,omitempty" validate:"omitempty,oneof=physical logical"`
	X            float64 `json:"x" validate:"finite"`
	Y            float64 `json:"y" validate:"finite"`
}

// SourceImagesRequest registers uploaded source images.
type SourceImagesRequest struct {
	Images []daynight.SourceImage `json:"images" validate:"required,min=1,dive"`
}

// ConversionStatusRequest is one status feed entry.
type ConversionStatusRequest struct {
	ImageID  string `json:"imageId" validate:"required"`
	Status   string `json:"status" validate:"required"`
	NightURL string `json:"nightUrl,omitempty" validate:"omitempty,imageurl"`
}

// ActiveImageRequest switches the background to a source image.
type ActiveImageRequest struct {
	ImageID string `json:"imageId" validate:"required"`
}

// CartoucheRequest sets the cartouche fields of the current background.
type CartoucheRequest struct {
	ProjectName  string `json:"projectName" validate:"max=200"`
	StreetOrZone string `json:"streetOrZone" validate:"max=200"`
	Option       string `json:"option" validate:"max=100"`
	HasCartouche bool   `json:"hasCartouche"`
}

func (c *CartoucheRequest) info() cartouche.Info {
	return cartouche.Info{
		ProjectName:  c.ProjectName,
		StreetOrZone: c.StreetOrZone,
		Option:       c.Option,
		HasCartouche: c.HasCartouche,
	}
}

// BackgroundNightRequest attaches a night variant to the current background.
type BackgroundNightRequest struct {
	ID       string `json:"id" validate:"required"`
	NightURL string `json:"nightUrl" validate:"required,imageurl"`
}

// ExportRequest asks for a PNG snapshot. A zero pixel ratio selects the
// configured default.
type ExportRequest struct {
	PixelRatio float64 `json:"pixelRatio" validate:"finite"`
}
