// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package geometry

// DefaultSnapThreshold is the distance within which a zone center attracts a point.
const DefaultSnapThreshold = 50.0

// Zone is a rectangular snap attractor. It never owns decorations.
type Zone struct {
	ID     string  `json:"id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Label  string  `json:"label"`
}

// Center returns the zone's center point.
func (z Zone) Center() Point {
	return Rect{X: z.X, Y: z.Y, Width: z.Width, Height: z.Height}.Center()
}

// SnapResult is the outcome of a snap query.
type SnapResult struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Snapped bool    `json:"snapped"`
	Zone    string  `json:"zone,omitempty"`
}

// Point returns the resulting coordinate.
func (r SnapResult) Point() Point {
	return Point{X: r.X, Y: r.Y}
}

// Snap resolves (x, y) against zones using DefaultSnapThreshold.
func Snap(x, y float64, zones []Zone) SnapResult {
	return SnapWithin(x, y, zones, DefaultSnapThreshold)
}

// SnapWithin returns the center of the closest zone whose center lies within
// threshold of (x, y). With no such zone the input is returned unchanged and
// Snapped is false. Ties keep the earliest zone in the list.
func SnapWithin(x, y float64, zones []Zone, threshold float64) SnapResult {
	result := SnapResult{X: x, Y: y}
	p := Point{X: x, Y: y}
	best := threshold

	for i := range zones {
		c := zones[i].Center()
		d := p.Distance(c)
		if d > threshold {
			continue
		}
		if !result.Snapped || d < best {
			best = d
			result = SnapResult{X: c.X, Y: c.Y, Snapped: true, Zone: zoneKey(zones[i])}
		}
	}
	return result
}

func zoneKey(z Zone) string {
	if z.ID != "" {
		return z.ID
	}
	return z.Label
}
