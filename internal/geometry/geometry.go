// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Logical scene extent. Every entity coordinate lives in this space.
const (
	SceneWidth  = 1200.0
	SceneHeight = 600.0
)

// Point is a logical scene coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec converts p to a gonum vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// PointFromVec converts a gonum vector back to a Point.
func PointFromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return r2.Norm(r2.Sub(p.Vec(), q.Vec()))
}

// Size is a logical width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Valid reports whether both dimensions are strictly positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

// Aspect returns width/height, or 0 for an invalid size.
func (s Size) Aspect() float64 {
	if !s.Valid() {
		return 0
	}
	return s.Width / s.Height
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the rectangle's center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// CenteredRect returns the rectangle of the given size centered on c.
func CenteredRect(c Point, s Size) Rect {
	return Rect{X: c.X - s.Width/2, Y: c.Y - s.Height/2, Width: s.Width, Height: s.Height}
}

// SceneCenter returns the center of the logical scene, where backgrounds
// are always anchored.
func SceneCenter() Point {
	return Point{X: SceneWidth / 2, Y: SceneHeight / 2}
}

// RotatedBounds returns the axis-aligned bounding box of a center-anchored
// rectangle rotated by deg degrees around its center.
func RotatedBounds(center Point, s Size, deg float64) Rect {
	if math.Mod(deg, 360) == 0 {
		return CenteredRect(center, s)
	}
	c := center.Vec()
	hw, hh := s.Width/2, s.Height/2
	corners := [4]r2.Vec{
		{X: c.X - hw, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y - hh},
		{X: c.X + hw, Y: c.Y + hh},
		{X: c.X - hw, Y: c.Y + hh},
	}
	alpha := deg * math.Pi / 180
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, corner := range corners {
		v := r2.Rotate(corner, alpha, c)
		minX = math.Min(minX, v.X)
		minY = math.Min(minY, v.Y)
		maxX = math.Max(maxX, v.X)
		maxY = math.Max(maxY, v.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
