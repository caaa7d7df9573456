// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package stage

import (
	"math"
	"testing"

	"github.com/tomtom215/decorum/internal/geometry"
)

func TestStage_InitialState(t *testing.T) {
	t.Parallel()

	s := New()
	if s.State() != Uninitialized {
		t.Errorf("expected uninitialized, got %s", s.State())
	}
	if s.Scale() != 1 {
		t.Errorf("expected identity scale, got %v", s.Scale())
	}
}

func TestStage_Resize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		w, h      float64
		wantScale float64
	}{
		{"exact fit", 1200, 600, 1},
		{"width limited", 600, 600, 0.5},
		{"height limited", 2400, 300, 0.5},
		{"upscale", 2400, 1200, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New()
			if !s.Resize(tt.w, tt.h) {
				t.Fatal("expected resize to apply")
			}
			if s.Scale() != tt.wantScale {
				t.Errorf("expected scale %v, got %v", tt.wantScale, s.Scale())
			}
			size := s.Size()
			if size.Width != 1200*tt.wantScale || size.Height != 600*tt.wantScale {
				t.Errorf("unexpected stage size %+v", size)
			}
			if s.State() != Fitted {
				t.Errorf("expected fitted, got %s", s.State())
			}
		})
	}
}

func TestStage_ZeroAreaIsSkipped(t *testing.T) {
	t.Parallel()

	s := New()
	s.Resize(600, 300)

	for _, dims := range [][2]float64{{0, 0}, {0, 300}, {600, 0}, {-1, 300}, {math.NaN(), 10}} {
		if s.Resize(dims[0], dims[1]) {
			t.Errorf("expected %v to be skipped", dims)
		}
	}
	if s.Scale() != 0.5 {
		t.Errorf("expected last valid scale 0.5 retained, got %v", s.Scale())
	}
	if s.Container() != (geometry.Size{Width: 600, Height: 300}) {
		t.Errorf("expected container retained, got %+v", s.Container())
	}
}

func TestStage_ZeroAreaBeforeFitStaysUninitialized(t *testing.T) {
	t.Parallel()

	s := New()
	s.Resize(0, 0)
	if s.State() != Uninitialized {
		t.Errorf("expected uninitialized, got %s", s.State())
	}
}

func TestStage_CoordinateConversion(t *testing.T) {
	t.Parallel()

	s := New()
	s.Resize(600, 300)

	logical := s.ToLogical(150, 75)
	if logical != (geometry.Point{X: 300, Y: 150}) {
		t.Errorf("expected (300,150), got %+v", logical)
	}
	physical := s.ToPhysical(logical)
	if physical != (geometry.Point{X: 150, Y: 75}) {
		t.Errorf("expected round trip to (150,75), got %+v", physical)
	}
}

func TestStage_ObservesContainerUntilClosed(t *testing.T) {
	t.Parallel()

	c := NewContainer()
	s := New()
	var seen []float64
	s.OnChange(func(scale float64) { seen = append(seen, scale) })
	s.Attach(c)

	c.SetSize(1200, 600)
	c.SetSize(600, 600)
	if s.Scale() != 0.5 {
		t.Errorf("expected scale 0.5 after second resize, got %v", s.Scale())
	}
	if len(seen) != 2 {
		t.Errorf("expected 2 change notifications, got %d", len(seen))
	}

	s.Close()
	if c.Subscribers() != 0 {
		t.Errorf("expected subscription removed, got %d", c.Subscribers())
	}
	c.SetSize(2400, 1200)
	if s.Scale() != 0.5 {
		t.Errorf("expected closed stage to ignore resizes, got %v", s.Scale())
	}
}

func TestStage_Snapshot(t *testing.T) {
	t.Parallel()

	s := New()
	s.Resize(900, 900)
	snap := s.Snapshot()
	if snap.State != "fitted" || snap.Scale != 0.75 || snap.Width != 900 || snap.Height != 450 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}
