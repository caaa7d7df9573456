// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

// Package render rasterizes a scene snapshot to PNG.
//
// The canvas is the 1200x600 logical scene multiplied by a pixel ratio.
// Layers are drawn bottom up: background, decorations in list order, then
// the cartouche text. An image that cannot be fetched or decoded is drawn as
// a neutral placeholder at the entity's bounds so one bad URL never fails
// the export.
package render
