// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestFitToBox_BranchSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		aspect float64
		boxW   float64
		boxH   float64
		margin float64
		want   Size
	}{
		{"4:3 into scene is height-limited", 800.0 / 600.0, 1200, 600, 0.96, Size{Width: 768, Height: 576}},
		{"wide panorama is width-limited", 4, 1200, 600, 0.96, Size{Width: 1152, Height: 288}},
		{"exact 2:1 takes width branch", 2, 1200, 600, 1, Size{Width: 1200, Height: 600}},
		{"portrait is height-limited", 0.5, 1200, 600, 1, Size{Width: 300, Height: 600}},
		{"zero aspect yields zero size", 0, 1200, 600, 0.96, Size{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FitToBox(tt.aspect, tt.boxW, tt.boxH, tt.margin)
			if math.Abs(got.Width-tt.want.Width) > eps || math.Abs(got.Height-tt.want.Height) > eps {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestFitToBox_BoundsAndAspect(t *testing.T) {
	t.Parallel()

	margins := []float64{1, 0.96, 0.5}
	for _, margin := range margins {
		for aspect := 0.1; aspect < 10; aspect += 0.37 {
			got := FitToBox(aspect, SceneWidth, SceneHeight, margin)
			if got.Width > SceneWidth*margin+eps || got.Height > SceneHeight*margin+eps {
				t.Fatalf("aspect %.2f margin %.2f: %+v exceeds box", aspect, margin, got)
			}
			if math.Abs(got.Width/got.Height-aspect) > 1e-6 {
				t.Fatalf("aspect %.2f: got ratio %.6f", aspect, got.Width/got.Height)
			}
		}
	}
}

func TestFitBackground(t *testing.T) {
	t.Parallel()

	got := FitBackground(Size{Width: 800, Height: 600}, DefaultBackgroundMargin)
	if math.Abs(got.Width-768) > eps || math.Abs(got.Height-576) > eps {
		t.Errorf("expected 768x576, got %+v", got)
	}
}

func TestFitWithBaseSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		natW, natH float64
		want       Size
	}{
		{"landscape", 300, 150, Size{Width: 150, Height: 75}},
		{"portrait", 100, 400, Size{Width: 37.5, Height: 150}},
		{"square", 512, 512, Size{Width: 150, Height: 150}},
		{"thin landscape floors height", 1000, 10, Size{Width: 150, Height: 20}},
		{"thin portrait floors width", 5, 1000, Size{Width: 20, Height: 150}},
		{"zero width falls back", 0, 300, Size{Width: 150, Height: 150}},
		{"negative height falls back", 300, -1, Size{Width: 150, Height: 150}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := FitWithBaseSize(tt.natW, tt.natH, 150, 20)
			if math.Abs(got.Width-tt.want.Width) > eps || math.Abs(got.Height-tt.want.Height) > eps {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAspectWithin(t *testing.T) {
	t.Parallel()

	natural := Size{Width: 200, Height: 100}
	if !AspectWithin(Size{Width: 150, Height: 75}, natural, 0.01) {
		t.Error("expected exact ratio to be within tolerance")
	}
	if !AspectWithin(Size{Width: 150, Height: 75.5}, natural, 0.01) {
		t.Error("expected 0.7% drift to be within tolerance")
	}
	if AspectWithin(Size{Width: 150, Height: 150}, natural, 0.01) {
		t.Error("expected square to be outside tolerance")
	}
}

func TestCorrectAspect(t *testing.T) {
	t.Parallel()

	got := CorrectAspect(Size{Width: 150, Height: 150}, Size{Width: 300, Height: 100}, 20)
	if got.Width != 150 || math.Abs(got.Height-50) > eps {
		t.Errorf("expected 150x50, got %+v", got)
	}

	got = CorrectAspect(Size{Width: 30, Height: 100}, Size{Width: 400, Height: 100}, 20)
	if got.Height != 100 || math.Abs(got.Width-400) > eps {
		t.Errorf("expected height kept when width-derived height is below min, got %+v", got)
	}

	again := CorrectAspect(got, Size{Width: 400, Height: 100}, 20)
	if again != got {
		t.Errorf("expected correction to be stable, got %+v then %+v", got, again)
	}
}

func TestRotatedBounds(t *testing.T) {
	t.Parallel()

	c := Point{X: 100, Y: 100}
	s := Size{Width: 40, Height: 20}

	straight := RotatedBounds(c, s, 0)
	if straight != (Rect{X: 80, Y: 90, Width: 40, Height: 20}) {
		t.Errorf("expected unrotated bounds, got %+v", straight)
	}

	quarter := RotatedBounds(c, s, 90)
	if math.Abs(quarter.Width-20) > 1e-6 || math.Abs(quarter.Height-40) > 1e-6 {
		t.Errorf("expected swapped extent at 90 degrees, got %+v", quarter)
	}
	if got := quarter.Center(); math.Abs(got.X-100) > 1e-6 || math.Abs(got.Y-100) > 1e-6 {
		t.Errorf("expected center preserved, got %+v", got)
	}
}
