// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

// Package stage maps the fixed logical scene onto a physical container.
//
// The scene is always 1200x600 logical units. A Stage observes the host
// container's size and keeps a uniform scale
//
//	scale = min(containerWidth/1200, containerHeight/600)
//
// so the physical stage is 1200*scale x 600*scale. Pointer positions arrive
// in physical pixels and are divided by the scale to get logical coordinates.
// Entity positions are never stored in physical units.
//
// A Stage starts Uninitialized with an identity scale and becomes Fitted on
// the first non-empty resize. Zero-area resizes (a collapsed or hidden
// container) are skipped and the last valid scale is kept.
package stage
