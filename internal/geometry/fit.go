// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package geometry

import "math"

// DefaultBackgroundMargin is the fraction of the scene a background may fill.
const DefaultBackgroundMargin = 0.96

// FitToBox scales a shape with the given aspect ratio (width/height) to
// fully fit inside boxWidth*margin x boxHeight*margin.
//
// The width-limited branch is taken when boxWidth/aspect <= boxHeight;
// otherwise the shape is height-limited. A non-positive aspect ratio yields
// the zero Size.
func FitToBox(aspect, boxWidth, boxHeight, margin float64) Size {
	if aspect <= 0 || math.IsNaN(aspect) || math.IsInf(aspect, 0) {
		return Size{}
	}
	maxW := boxWidth * margin
	maxH := boxHeight * margin

	if boxWidth/aspect <= boxHeight {
		return Size{Width: maxW, Height: maxW / aspect}
	}
	return Size{Width: maxH * aspect, Height: maxH}
}

// FitBackground sizes a background from its natural dimensions so it fits
// the logical scene at the given margin.
func FitBackground(natural Size, margin float64) Size {
	return FitToBox(natural.Aspect(), SceneWidth, SceneHeight, margin)
}

// FitWithBaseSize sizes a decoration from its natural dimensions. The longer
// side maps to baseSize and the shorter side scales proportionally, floored
// at minSize. Square images map to baseSize x baseSize, as do images with a
// zero or negative dimension.
func FitWithBaseSize(naturalWidth, naturalHeight, baseSize, minSize float64) Size {
	if naturalWidth <= 0 || naturalHeight <= 0 {
		return Size{Width: baseSize, Height: baseSize}
	}

	switch {
	case naturalWidth > naturalHeight:
		h := baseSize * naturalHeight / naturalWidth
		return Size{Width: baseSize, Height: math.Max(h, minSize)}
	case naturalHeight > naturalWidth:
		w := baseSize * naturalWidth / naturalHeight
		return Size{Width: math.Max(w, minSize), Height: baseSize}
	default:
		return Size{Width: baseSize, Height: baseSize}
	}
}

// AspectWithin reports whether current matches the aspect ratio of natural
// within the relative tolerance (0.01 for 1%).
func AspectWithin(current, natural Size, tolerance float64) bool {
	if !current.Valid() || !natural.Valid() {
		return true
	}
	want := natural.Aspect()
	got := current.Aspect()
	return math.Abs(got-want)/want <= tolerance
}

// CorrectAspect returns current adjusted to the natural aspect ratio. The
// width is kept and the height recomputed, unless that would shrink the
// shape below minSize, in which case the height is kept instead.
func CorrectAspect(current, natural Size, minSize float64) Size {
	if !natural.Valid() || !current.Valid() {
		return current
	}
	aspect := natural.Aspect()
	h := current.Width / aspect
	if h >= minSize {
		return Size{Width: current.Width, Height: h}
	}
	return Size{Width: current.Height * aspect, Height: current.Height}
}
