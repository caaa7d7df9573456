// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package scene

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/decorum/internal/cartouche"
	"github.com/tomtom215/decorum/internal/geometry"
)

// staticResolver answers synchronously from a fixed table.
type staticResolver struct {
	sizes map[string]geometry.Size
}

func (r staticResolver) ResolveAsync(_ context.Context, url string, done func(geometry.Size, bool)) {
	size, ok := r.sizes[url]
	done(size, ok)
}

// manualResolver holds loads until the test completes them.
type manualResolver struct {
	mu      sync.Mutex
	pending map[string][]func(geometry.Size, bool)
}

func newManualResolver() *manualResolver {
	return &manualResolver{pending: make(map[string][]func(geometry.Size, bool))}
}

func (r *manualResolver) ResolveAsync(_ context.Context, url string, done func(geometry.Size, bool)) {
	r.mu.Lock()
	r.pending[url] = append(r.pending[url], done)
	r.mu.Unlock()
}

func (r *manualResolver) complete(url string, size geometry.Size, ok bool) {
	r.mu.Lock()
	callbacks := r.pending[url]
	delete(r.pending, url)
	r.mu.Unlock()
	for _, cb := range callbacks {
		cb(size, ok)
	}
}

func newTestScene(t *testing.T, resolver ImageResolver) (*State, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	s := New("scene-1", DefaultConfig(), resolver, rec)
	t.Cleanup(s.Close)
	return s, rec
}

func withBackground(t *testing.T, s *State) {
	t.Helper()
	if _, err := s.SetBackground(BackgroundInput{ID: "bg-1", DayURL: "https://img.test/bg.png"}, BackgroundOptions{}); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}
}

func entry(name, day, night string) CatalogEntry {
	return CatalogEntry{ID: "cat-" + name, Name: name, ImageURLDay: day, ImageURLNight: night}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func containsType(types []EventType, want EventType) bool {
	for _, tp := range types {
		if tp == want {
			return true
		}
	}
	return false
}

func TestAddDecoration_RequiresBackground(t *testing.T) {
	t.Parallel()
	s, rec := newTestScene(t, nil)

	_, err := s.AddDecoration(entry("star", "https://img.test/star.png", ""), AddOptions{})
	if !errors.Is(err, ErrBackgroundRequired) {
		t.Fatalf("expected ErrBackgroundRequired, got %v", err)
	}
	if n := len(s.Decorations()); n != 0 {
		t.Errorf("expected empty decoration list, got %d entries", n)
	}
	types := rec.Types()
	if len(types) != 1 || types[0] != EventBackgroundRequired {
		t.Errorf("expected single background_image_required event, got %v", types)
	}
}

func TestAddDecoration_PlacementAndOffset(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)
	withBackground(t, s)

	first, err := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{})
	if err != nil {
		t.Fatalf("AddDecoration failed: %v", err)
	}
	second, err := s.AddDecoration(entry("b", "https://img.test/b.png", ""), AddOptions{})
	if err != nil {
		t.Fatalf("AddDecoration failed: %v", err)
	}

	if first.X != 600 || first.Y != 300 {
		t.Errorf("expected first decoration at (600,300), got (%v,%v)", first.X, first.Y)
	}
	if second.X != 610 || second.Y != 310 {
		t.Errorf("expected second decoration offset to (610,310), got (%v,%v)", second.X, second.Y)
	}
	if first.Width != 150 || first.Height != 150 {
		t.Errorf("expected provisional 150x150, got %vx%v", first.Width, first.Height)
	}
	if first.ImageID != "bg-1" {
		t.Errorf("expected imageId bg-1, got %q", first.ImageID)
	}
	if first.ID == second.ID {
		t.Error("expected distinct decoration ids")
	}
}

func TestAddDecoration_RejectsEntryWithoutImage(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)
	withBackground(t, s)

	_, err := s.AddDecoration(CatalogEntry{ID: "x", Name: "empty"}, AddOptions{})
	if !errors.Is(err, ErrInvalidDecoration) {
		t.Fatalf("expected ErrInvalidDecoration, got %v", err)
	}
}

func TestImageLoad_SizesToBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		natural geometry.Size
		want    geometry.Size
	}{
		{"landscape", geometry.Size{Width: 300, Height: 150}, geometry.Size{Width: 150, Height: 75}},
		{"portrait", geometry.Size{Width: 100, Height: 400}, geometry.Size{Width: 37.5, Height: 150}},
		{"square", geometry.Size{Width: 80, Height: 80}, geometry.Size{Width: 150, Height: 150}},
		{"thin strip floors at min", geometry.Size{Width: 1000, Height: 10}, geometry.Size{Width: 150, Height: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			url := "https://img.test/" + tt.name + ".png"
			s, _ := newTestScene(t, staticResolver{sizes: map[string]geometry.Size{url: tt.natural}})
			withBackground(t, s)

			d, err := s.AddDecoration(entry(tt.name, url, ""), AddOptions{})
			if err != nil {
				t.Fatalf("AddDecoration failed: %v", err)
			}
			got, _ := s.Decoration(d.ID)
			if !approx(got.Width, tt.want.Width) || !approx(got.Height, tt.want.Height) {
				t.Errorf("expected %vx%v, got %vx%v", tt.want.Width, tt.want.Height, got.Width, got.Height)
			}
		})
	}
}

func TestImageLoad_FailureMarksPlaceholder(t *testing.T) {
	t.Parallel()
	s, rec := newTestScene(t, staticResolver{})
	withBackground(t, s)

	d, err := s.AddDecoration(entry("broken", "https://img.test/missing.png", ""), AddOptions{})
	if err != nil {
		t.Fatalf("AddDecoration failed: %v", err)
	}
	got, _ := s.Decoration(d.ID)
	if !got.ImageFailed {
		t.Error("expected ImageFailed after failed load")
	}
	if got.Width != 150 || got.Height != 150 {
		t.Errorf("expected bounds kept at 150x150, got %vx%v", got.Width, got.Height)
	}
	if !containsType(rec.Types(), EventDecorationUpdated) {
		t.Error("expected decoration_updated for the failed load")
	}
}

func TestImageLoad_StaleResultDropped(t *testing.T) {
	t.Parallel()
	res := newManualResolver()
	s, _ := newTestScene(t, res)
	withBackground(t, s)

	day := "https://img.test/tree-day.png"
	night := "https://img.test/tree-night.png"
	d, err := s.AddDecoration(entry("tree", day, night), AddOptions{})
	if err != nil {
		t.Fatalf("AddDecoration failed: %v", err)
	}
	if err := s.SetDayMode(false); err != nil {
		t.Fatalf("SetDayMode failed: %v", err)
	}

	res.complete(day, geometry.Size{Width: 300, Height: 100}, true)
	got, _ := s.Decoration(d.ID)
	if got.Width != 150 || got.Height != 150 {
		t.Errorf("expected stale day result to be ignored, got %vx%v", got.Width, got.Height)
	}

	res.complete(night, geometry.Size{Width: 100, Height: 300}, true)
	got, _ = s.Decoration(d.ID)
	if !approx(got.Width, 50) || got.Height != 150 {
		t.Errorf("expected night sizing 50x150, got %vx%v", got.Width, got.Height)
	}
}

func TestImageLoad_RemovedDecorationIgnored(t *testing.T) {
	t.Parallel()
	res := newManualResolver()
	s, rec := newTestScene(t, res)
	withBackground(t, s)

	url := "https://img.test/gone.png"
	d, _ := s.AddDecoration(entry("gone", url, ""), AddOptions{})
	if err := s.RemoveDecoration(d.ID); err != nil {
		t.Fatalf("RemoveDecoration failed: %v", err)
	}
	before := len(rec.Events())
	res.complete(url, geometry.Size{Width: 10, Height: 10}, true)
	if after := len(rec.Events()); after != before {
		t.Errorf("expected no events for removed decoration, got %d new", after-before)
	}
}

func TestTransformEnd_BakesScale(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)
	withBackground(t, s)

	d, _ := s.AddDecoration(entry("lamp", "https://img.test/lamp.png", ""), AddOptions{})

	got, err := s.TransformEnd(d.ID, Transform{ScaleX: 2, ScaleY: 0.5, Rotation: 30})
	if err != nil {
		t.Fatalf("TransformEnd failed: %v", err)
	}
	if got.Width != 300 || got.Height != 75 || got.Rotation != 30 {
		t.Errorf("expected 300x75 at 30deg, got %vx%v at %vdeg", got.Width, got.Height, got.Rotation)
	}

	// A second gesture is relative to the baked size.
	got, _ = s.TransformEnd(d.ID, Transform{ScaleX: 0.5, ScaleY: 2, Rotation: 45})
	if got.Width != 150 || got.Height != 150 {
		t.Errorf("expected 150x150 after relative transform, got %vx%v", got.Width, got.Height)
	}
}

func TestTransformEnd_FloorsAtMinSize(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)
	withBackground(t, s)

	d, _ := s.AddDecoration(entry("pin", "https://img.test/pin.png", ""), AddOptions{})
	got, err := s.TransformEnd(d.ID, Transform{ScaleX: 0.01, ScaleY: 0.01})
	if err != nil {
		t.Fatalf("TransformEnd failed: %v", err)
	}
	if got.Width != 20 || got.Height != 20 {
		t.Errorf("expected floor 20x20, got %vx%v", got.Width, got.Height)
	}
}

func TestAspectCorrection_OncePerPair(t *testing.T) {
	t.Parallel()
	url := "https://img.test/bench.png"
	s, _ := newTestScene(t, staticResolver{sizes: map[string]geometry.Size{url: {Width: 200, Height: 100}}})
	withBackground(t, s)

	d, _ := s.AddDecoration(entry("bench", url, ""), AddOptions{})
	got, _ := s.Decoration(d.ID)
	if got.Width != 150 || got.Height != 75 {
		t.Fatalf("expected 150x75 after load, got %vx%v", got.Width, got.Height)
	}

	// Stretch horizontally; correction restores 2:1 keeping the width.
	got, err := s.TransformEnd(d.ID, Transform{ScaleX: 2, ScaleY: 1})
	if err != nil {
		t.Fatalf("TransformEnd failed: %v", err)
	}
	if got.Width != 300 || got.Height != 150 {
		t.Errorf("expected corrected 300x150, got %vx%v", got.Width, got.Height)
	}

	changed, err := s.CorrectAspect(d.ID)
	if err != nil {
		t.Fatalf("CorrectAspect failed: %v", err)
	}
	if changed {
		t.Error("expected second correction to be a no-op")
	}
	again, _ := s.Decoration(d.ID)
	if again.Width != got.Width || again.Height != got.Height {
		t.Errorf("expected size unchanged, got %vx%v", again.Width, again.Height)
	}
}

func TestAspectCorrection_WithinToleranceUntouched(t *testing.T) {
	t.Parallel()
	url := "https://img.test/box.png"
	s, _ := newTestScene(t, staticResolver{sizes: map[string]geometry.Size{url: {Width: 100, Height: 100}}})
	withBackground(t, s)

	d, _ := s.AddDecoration(entry("box", url, ""), AddOptions{})
	got, _ := s.TransformEnd(d.ID, Transform{ScaleX: 1.005, ScaleY: 1})
	if !approx(got.Width, 150.75) || got.Height != 150 {
		t.Errorf("expected 150.75x150 kept within tolerance, got %vx%v", got.Width, got.Height)
	}
}

func TestZOrder(t *testing.T) {
	t.Parallel()
	s, rec := newTestScene(t, nil)
	withBackground(t, s)

	a, _ := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{})
	b, _ := s.AddDecoration(entry("b", "https://img.test/b.png", ""), AddOptions{})
	c, _ := s.AddDecoration(entry("c", "https://img.test/c.png", ""), AddOptions{})

	ids := func(list []Decoration) []string {
		out := make([]string, len(list))
		for i := range list {
			out[i] = list[i].ID
		}
		return out
	}
	equal := func(got, want []string) bool {
		if len(got) != len(want) {
			return false
		}
		for i := range got {
			if got[i] != want[i] {
				return false
			}
		}
		return true
	}

	order, changed, err := s.BringToFront(a.ID)
	if err != nil || !changed {
		t.Fatalf("expected BringToFront to move a, changed=%v err=%v", changed, err)
	}
	if want := []string{b.ID, c.ID, a.ID}; !equal(ids(order), want) {
		t.Errorf("expected %v, got %v", want, ids(order))
	}

	before := len(rec.Events())
	_, changed, _ = s.BringToFront(a.ID)
	if changed {
		t.Error("expected BringToFront of top decoration to be a no-op")
	}
	if len(rec.Events()) != before {
		t.Error("expected no event for no-op reorder")
	}

	order, changed, _ = s.SendToBack(a.ID)
	if !changed {
		t.Error("expected SendToBack to move a")
	}
	if want := []string{a.ID, b.ID, c.ID}; !equal(ids(order), want) {
		t.Errorf("expected %v, got %v", want, ids(order))
	}

	if _, _, err := s.SendToBack("missing"); !errors.Is(err, ErrDecorationNotFound) {
		t.Errorf("expected ErrDecorationNotFound, got %v", err)
	}
}

func TestRemoveDecoration_ClearsSelection(t *testing.T) {
	t.Parallel()
	s, rec := newTestScene(t, nil)
	withBackground(t, s)

	d, _ := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{})
	if err := s.Select(d.ID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if err := s.RemoveDecoration(d.ID); err != nil {
		t.Fatalf("RemoveDecoration failed: %v", err)
	}
	if sel := s.Selected(); sel != "" {
		t.Errorf("expected empty selection, got %q", sel)
	}
	types := rec.Types()
	if types[len(types)-1] != EventDecorationRemoved {
		t.Errorf("expected decoration_removed last, got %v", types[len(types)-1])
	}
	if err := s.RemoveDecoration(d.ID); !errors.Is(err, ErrDecorationNotFound) {
		t.Errorf("expected ErrDecorationNotFound on second remove, got %v", err)
	}
}

func TestSelection_ClickEmptySuppressedInZoneEdit(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)
	withBackground(t, s)

	d, _ := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{})
	_ = s.Select(d.ID)
	_ = s.SetZoneEditMode(true)

	cleared, err := s.ClickEmpty()
	if err != nil {
		t.Fatalf("ClickEmpty failed: %v", err)
	}
	if cleared || s.Selected() != d.ID {
		t.Error("expected selection kept while editing zones")
	}

	_ = s.SetZoneEditMode(false)
	cleared, _ = s.ClickEmpty()
	if !cleared || s.Selected() != "" {
		t.Error("expected selection cleared outside zone editing")
	}
}

func TestDrag_SnapPreviewAndCommit(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)
	withBackground(t, s)
	_ = s.SetZones([]geometry.Zone{{ID: "porch", X: 100, Y: 100, Width: 100, Height: 100, Label: "Porch"}})

	d, _ := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{})

	preview, err := s.DragMove(d.ID, 160, 140)
	if err != nil {
		t.Fatalf("DragMove failed: %v", err)
	}
	if !preview.Snapped || preview.X != 150 || preview.Y != 150 {
		t.Errorf("expected snap preview to (150,150), got %+v", preview)
	}
	unchanged, _ := s.Decoration(d.ID)
	if unchanged.X != 600 || unchanged.Y != 300 {
		t.Errorf("expected drag move not to commit, got (%v,%v)", unchanged.X, unchanged.Y)
	}

	got, snap, err := s.DragEnd(d.ID, 160, 140)
	if err != nil {
		t.Fatalf("DragEnd failed: %v", err)
	}
	if !snap.Snapped || got.X != 150 || got.Y != 150 {
		t.Errorf("expected commit at (150,150), got (%v,%v)", got.X, got.Y)
	}

	got, snap, _ = s.DragEnd(d.ID, 900, 500)
	if snap.Snapped || got.X != 900 || got.Y != 500 {
		t.Errorf("expected unsnapped commit at (900,500), got (%v,%v)", got.X, got.Y)
	}
}

func TestGesture_TouchTapVersusDrag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    PointerKind
		moveX   float64
		moveY   float64
		outcome GestureOutcome
	}{
		{"touch within threshold is a tap", PointerTouch, 4, -5, OutcomeTap},
		{"touch beyond threshold on x drags", PointerTouch, 6, 0, OutcomeDrag},
		{"touch beyond threshold on y drags", PointerTouch, 0, -5.5, OutcomeDrag},
		{"mouse still is a tap", PointerMouse, 0, 0, OutcomeTap},
		{"mouse any movement drags", PointerMouse, 1, 0, OutcomeDrag},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, _ := newTestScene(t, nil)
			withBackground(t, s)
			d, _ := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{})

			if err := s.PointerDown(d.ID, tt.kind, 600, 300); err != nil {
				t.Fatalf("PointerDown failed: %v", err)
			}
			if _, _, err := s.PointerMove(600+tt.moveX, 300+tt.moveY); err != nil {
				t.Fatalf("PointerMove failed: %v", err)
			}
			res, err := s.PointerUp(600+tt.moveX, 300+tt.moveY)
			if err != nil {
				t.Fatalf("PointerUp failed: %v", err)
			}
			if res.Outcome != tt.outcome {
				t.Errorf("expected %s, got %s", tt.outcome, res.Outcome)
			}
			got, _ := s.Decoration(d.ID)
			switch tt.outcome {
			case OutcomeTap:
				if got.X != 600 || got.Y != 300 {
					t.Errorf("expected tap to keep position, got (%v,%v)", got.X, got.Y)
				}
				if s.Selected() != d.ID {
					t.Error("expected tap to select")
				}
			case OutcomeDrag:
				if got.X != 600+tt.moveX || got.Y != 300+tt.moveY {
					t.Errorf("expected drag commit, got (%v,%v)", got.X, got.Y)
				}
			}
		})
	}
}

func TestGesture_GrabOffsetPreserved(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)
	withBackground(t, s)
	d, _ := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{})

	_ = s.PointerDown(d.ID, PointerMouse, 620, 310)
	res, err := s.PointerUp(720, 410)
	if err != nil {
		t.Fatalf("PointerUp failed: %v", err)
	}
	if res.Decoration.X != 700 || res.Decoration.Y != 400 {
		t.Errorf("expected center (700,400), got (%v,%v)", res.Decoration.X, res.Decoration.Y)
	}
	if _, err := s.PointerUp(0, 0); !errors.Is(err, ErrNoGesture) {
		t.Errorf("expected ErrNoGesture, got %v", err)
	}
}

func TestBackground_FitAndReplace(t *testing.T) {
	t.Parallel()
	res := staticResolver{sizes: map[string]geometry.Size{
		"https://img.test/wide.png": {Width: 2400, Height: 600},
		"https://img.test/tall.png": {Width: 600, Height: 1200},
	}}
	s, rec := newTestScene(t, res)

	bg, err := s.SetBackground(BackgroundInput{ID: "wide", DayURL: "https://img.test/wide.png"}, BackgroundOptions{})
	if err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}
	if bg.X != 600 || bg.Y != 300 {
		t.Errorf("expected background centered, got (%v,%v)", bg.X, bg.Y)
	}
	got, _ := s.Background()
	if !approx(got.Width, 1152) || !approx(got.Height, 288) {
		t.Errorf("expected 1152x288, got %vx%v", got.Width, got.Height)
	}

	d, _ := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{})

	rec.Reset()
	if _, err := s.SetBackground(BackgroundInput{ID: "tall", DayURL: "https://img.test/tall.png"}, BackgroundOptions{}); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}
	got, _ = s.Background()
	if !approx(got.Width, 288) || !approx(got.Height, 576) {
		t.Errorf("expected 288x576, got %vx%v", got.Width, got.Height)
	}
	types := rec.Types()
	if len(types) == 0 || types[0] != EventBackgroundRemoved {
		t.Errorf("expected background_image_removed first, got %v", types)
	}
	if _, ok := s.Decoration(d.ID); !ok {
		t.Error("expected decorations to survive a background replace")
	}
}

func TestBackground_CartoucheLifecycle(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)

	info := &cartouche.Info{ProjectName: "Maison", StreetOrZone: "Rue A", Option: "option-2", HasCartouche: true}
	if _, err := s.SetBackground(BackgroundInput{ID: "one", DayURL: "https://img.test/1.png", Cartouche: info}, BackgroundOptions{}); err != nil {
		t.Fatalf("SetBackground failed: %v", err)
	}
	first := s.Cartouche()
	if first == nil || first.AnchorID != "one" {
		t.Fatalf("expected overlay anchored to one, got %+v", first)
	}

	_, _ = s.SetBackground(BackgroundInput{ID: "two", DayURL: "https://img.test/2.png"}, BackgroundOptions{})
	if s.Cartouche() != nil {
		t.Error("expected overlay destroyed on plain replace")
	}

	_, _ = s.SetBackground(BackgroundInput{ID: "three", DayURL: "https://img.test/3.png", Cartouche: info}, BackgroundOptions{})
	_, _ = s.SetBackground(BackgroundInput{ID: "four", DayURL: "https://img.test/4.png"}, BackgroundOptions{PreserveCartouche: true})
	carried := s.Cartouche()
	if carried == nil || carried.AnchorID != "four" {
		t.Errorf("expected overlay carried over to four, got %+v", carried)
	}

	if err := s.RemoveBackground(); err != nil {
		t.Fatalf("RemoveBackground failed: %v", err)
	}
	if s.Cartouche() != nil {
		t.Error("expected overlay removed with its background")
	}
	if _, err := s.SetCartouche(*info); !errors.Is(err, ErrBackgroundRequired) {
		t.Errorf("expected ErrBackgroundRequired, got %v", err)
	}
}

func TestSetDayMode_NightFallback(t *testing.T) {
	t.Parallel()
	s, rec := newTestScene(t, nil)
	withBackground(t, s)

	withNight, _ := s.AddDecoration(entry("lit", "https://img.test/lit-day.png", "https://img.test/lit-night.png"), AddOptions{})
	dayOnly, _ := s.AddDecoration(entry("plain", "https://img.test/plain.png", ""), AddOptions{})

	rec.Reset()
	if err := s.SetDayMode(false); err != nil {
		t.Fatalf("SetDayMode failed: %v", err)
	}
	a, _ := s.Decoration(withNight.ID)
	b, _ := s.Decoration(dayOnly.ID)
	if a.Src != "https://img.test/lit-night.png" {
		t.Errorf("expected night src, got %q", a.Src)
	}
	if b.Src != "https://img.test/plain.png" {
		t.Errorf("expected day src fallback, got %q", b.Src)
	}
	if types := rec.Types(); len(types) != 1 || types[0] != EventModeChanged {
		t.Errorf("expected single mode_changed, got %v", types)
	}

	rec.Reset()
	_ = s.SetDayMode(false)
	if n := len(rec.Events()); n != 0 {
		t.Errorf("expected no events for unchanged mode, got %d", n)
	}
}

func TestLoadDecorations_SkipsInvalid(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)
	withBackground(t, s)

	records := []json.RawMessage{
		json.RawMessage(`{"id":"d1","type":"image","name":"ok","src":"https://img.test/ok.png","x":10,"y":20,"width":40,"height":40,"rotation":15}`),
		json.RawMessage(`{"id":"","name":"no id","src":"https://img.test/x.png","width":40,"height":40}`),
		json.RawMessage(`{"id":"d3","type":"text","name":"wrong kind","src":"https://img.test/x.png","width":40,"height":40}`),
		json.RawMessage(`{not json`),
		json.RawMessage(`{"id":"d5","name":"zero","dayUrl":"https://img.test/z.png","width":0,"height":10}`),
		json.RawMessage(`{"id":"d1","name":"dup","src":"https://img.test/ok.png","width":40,"height":40}`),
	}

	loaded, skipped, err := s.LoadDecorations(records)
	if err != nil {
		t.Fatalf("LoadDecorations failed: %v", err)
	}
	if loaded != 1 || skipped != 5 {
		t.Errorf("expected 1 loaded and 5 skipped, got %d and %d", loaded, skipped)
	}
	d, ok := s.Decoration("d1")
	if !ok || d.Rotation != 15 || d.DayURL != "https://img.test/ok.png" {
		t.Errorf("expected d1 restored with its rotation, got %+v", d)
	}
}

func TestClosedSceneRejectsMutations(t *testing.T) {
	t.Parallel()
	s, _ := newTestScene(t, nil)
	withBackground(t, s)
	s.Close()

	if _, err := s.AddDecoration(entry("a", "https://img.test/a.png", ""), AddOptions{}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
