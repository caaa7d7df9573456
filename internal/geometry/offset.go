// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package geometry

import "math"

// Default placement search parameters for new decorations.
const (
	DefaultOffsetStep     = 10.0
	DefaultOffsetMaxTries = 20
)

// OffsetIfColliding searches for a placement near (x, y) that does not sit on
// top of an existing decoration. A candidate collides when it lies within step
// units of an existing position on both axes; each collision shifts the
// candidate diagonally by step. The first free candidate is returned, or the
// last attempted one once maxTries shifts are spent.
func OffsetIfColliding(existing []Point, x, y, step float64, maxTries int) Point {
	candidate := Point{X: x, Y: y}
	if step <= 0 {
		return candidate
	}

	for tries := 0; tries < maxTries && collides(existing, candidate, step); tries++ {
		candidate.X += step
		candidate.Y += step
	}
	return candidate
}

func collides(existing []Point, p Point, step float64) bool {
	for _, e := range existing {
		if math.Abs(e.X-p.X) < step && math.Abs(e.Y-p.Y) < step {
			return true
		}
	}
	return false
}
