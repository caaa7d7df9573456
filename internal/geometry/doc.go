// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

// Package geometry holds the pure coordinate math of the designer scene.
//
// All values are logical scene units. The scene is a fixed 1200x600 space;
// physical pixels are derived by the stage package and never stored here.
//
// The functions in this package never mutate their inputs and are safe to
// call concurrently:
//
//   - FitToBox and FitWithBaseSize size backgrounds and decorations from
//     an image's natural dimensions.
//   - Snap pulls a point onto the center of the nearest snap zone.
//   - OffsetIfColliding nudges a new placement off existing decorations.
//   - RotatedBounds computes the axis-aligned box of a rotated decoration.
package geometry
