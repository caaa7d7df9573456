// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/decorum/internal/geometry"
)

// indexOf returns the list index of id, or -1 (lock held).
func (s *State) indexOf(id string) int {
	for i := range s.decorations {
		if s.decorations[i].ID == id {
			return i
		}
	}
	return -1
}

// replaceAt swaps in a new list with d at index i (lock held).
func (s *State) replaceAt(i int, d Decoration) {
	next := make([]Decoration, len(s.decorations))
	copy(next, s.decorations)
	next[i] = d
	s.decorations = next
}

// Decorations returns the decorations in z-order, bottom first.
func (s *State) Decorations() []Decoration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Decoration{}, s.decorations...)
}

// Decoration returns a copy of one decoration.
func (s *State) Decoration(id string) (Decoration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.decorations[i], true
	}
	return Decoration{}, false
}

// positions returns the centers of all decorations (lock held).
func (s *State) positions() []geometry.Point {
	pts := make([]geometry.Point, len(s.decorations))
	for i := range s.decorations {
		pts[i] = s.decorations[i].Center()
	}
	return pts
}

// AddDecoration places a catalog decoration on top of the scene. Without a
// background the add is aborted: background_image_required is raised and
// ErrBackgroundRequired returned, leaving the list unchanged.
func (s *State) AddDecoration(entry CatalogEntry, opts AddOptions) (Decoration, error) {
	var out Decoration
	err := s.apply(func(fx *effects) error {
		if s.background == nil {
			fx.emit(Event{Type: EventBackgroundRequired, Action: "add_decoration"})
			return ErrBackgroundRequired
		}

		day := entry.ImageURLDay
		if day == "" {
			day = entry.ThumbnailURL
		}
		if day == "" && entry.ImageURLNight == "" {
			return fmt.Errorf("%w: %q has no image url", ErrInvalidDecoration, entry.Name)
		}

		at := geometry.SceneCenter()
		if opts.At != nil {
			at = *opts.At
		}
		pos := geometry.OffsetIfColliding(s.positions(), at.X, at.Y, s.cfg.OffsetStep, s.cfg.OffsetMaxTries)
		initial := geometry.FitWithBaseSize(0, 0, s.cfg.BaseSize, s.cfg.MinSize)

		d := Decoration{
			ID:           uuid.NewString(),
			DecorationID: entry.ID,
			Type:         KindImage,
			Name:         entry.Name,
			DayURL:       day,
			NightURL:     entry.ImageURLNight,
			X:            pos.X,
			Y:            pos.Y,
			Width:        initial.Width,
			Height:       initial.Height,
			Price:        entry.Price,
			Color:        opts.Color,
			ImageID:      s.background.ID,
		}
		d.Src = ActiveSource(d.DayURL, d.NightURL, s.dayMode)
		d.pendingURL = d.Src

		next := make([]Decoration, 0, len(s.decorations)+1)
		next = append(next, s.decorations...)
		s.decorations = append(next, d)

		out = d
		added := d
		fx.emit(Event{Type: EventDecorationAdded, DecorationID: d.ID, Decoration: &added})
		fx.loads = append(fx.loads, imageLoad{target: targetDecoration, id: d.ID, url: d.Src})
		return nil
	})
	return out, err
}

// RemoveDecoration deletes a decoration and clears it from the selection.
func (s *State) RemoveDecoration(id string) error {
	return s.apply(func(fx *effects) error {
		i := s.indexOf(id)
		if i < 0 {
			return ErrDecorationNotFound
		}
		next := make([]Decoration, 0, len(s.decorations)-1)
		next = append(next, s.decorations[:i]...)
		s.decorations = append(next, s.decorations[i+1:]...)

		if s.selectedID == id {
			s.setSelection(fx, "")
		}
		if s.gesture != nil && s.gesture.decorationID == id {
			s.gesture = nil
		}
		fx.emit(Event{Type: EventDecorationRemoved, DecorationID: id})
		return nil
	})
}

// UpdateDecoration applies a patch and raises decoration_updated.
func (s *State) UpdateDecoration(id string, p Patch) (Decoration, error) {
	var out Decoration
	err := s.apply(func(fx *effects) error {
		i := s.indexOf(id)
		if i < 0 {
			return ErrDecorationNotFound
		}
		d := s.decorations[i]

		for _, v := range []*float64{p.X, p.Y, p.Width, p.Height, p.Rotation, p.Price} {
			if v != nil && !finite(*v) {
				return fmt.Errorf("%w: non-finite value", ErrInvalidDecoration)
			}
		}

		if p.Name != nil {
			d.Name = *p.Name
		}
		if p.DayURL != nil {
			d.DayURL = *p.DayURL
		}
		if p.NightURL != nil {
			d.NightURL = *p.NightURL
		}
		if p.X != nil {
			d.X = *p.X
		}
		if p.Y != nil {
			d.Y = *p.Y
		}
		if p.Width != nil {
			d.Width = math.Max(*p.Width, s.cfg.MinSize)
		}
		if p.Height != nil {
			d.Height = math.Max(*p.Height, s.cfg.MinSize)
		}
		if p.Rotation != nil {
			d.Rotation = *p.Rotation
		}
		if p.Price != nil {
			price := *p.Price
			d.Price = &price
		}
		if p.Color != nil {
			d.Color = *p.Color
		}

		if src := ActiveSource(d.DayURL, d.NightURL, s.dayMode); src != d.Src {
			d.Src = src
			d.pendingURL = src
			d.ImageFailed = false
			fx.loads = append(fx.loads, imageLoad{target: targetDecoration, id: d.ID, url: src})
		} else if p.Width != nil || p.Height != nil {
			s.correctAspect(&d)
		}

		s.replaceAt(i, d)
		out = d
		fx.emit(Event{Type: EventDecorationUpdated, DecorationID: id, Decoration: &out})
		return nil
	})
	return out, err
}

// DragMove returns the snapped position for a drag in progress. Nothing is
// committed.
func (s *State) DragMove(id string, x, y float64) (geometry.SnapResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return geometry.SnapResult{}, ErrClosed
	}
	if s.indexOf(id) < 0 {
		return geometry.SnapResult{}, ErrDecorationNotFound
	}
	return geometry.SnapWithin(x, y, s.zones, s.cfg.SnapThreshold), nil
}

// DragEnd snaps the final position and commits it.
func (s *State) DragEnd(id string, x, y float64) (Decoration, geometry.SnapResult, error) {
	var (
		out  Decoration
		snap geometry.SnapResult
	)
	err := s.apply(func(fx *effects) error {
		var err error
		out, snap, err = s.commitDrag(fx, id, x, y)
		return err
	})
	return out, snap, err
}

// commitDrag is the shared drag-end path (lock held).
func (s *State) commitDrag(fx *effects, id string, x, y float64) (Decoration, geometry.SnapResult, error) {
	i := s.indexOf(id)
	if i < 0 {
		return Decoration{}, geometry.SnapResult{}, ErrDecorationNotFound
	}
	if !finite(x) || !finite(y) {
		return Decoration{}, geometry.SnapResult{}, fmt.Errorf("%w: non-finite position", ErrInvalidDecoration)
	}
	snap := geometry.SnapWithin(x, y, s.zones, s.cfg.SnapThreshold)

	d := s.decorations[i]
	d.X, d.Y = snap.X, snap.Y
	s.replaceAt(i, d)

	out := d
	fx.emit(Event{Type: EventDecorationUpdated, DecorationID: id, Decoration: &out})
	return d, snap, nil
}

// TransformEnd bakes a resize/rotate gesture into the decoration. The scale
// factors are multiplied into width and height, each floored at the
// configured minimum size, so the next gesture starts from a 1:1 scale.
// Rotation is stored in degrees as reported.
func (s *State) TransformEnd(id string, t Transform) (Decoration, error) {
	var out Decoration
	err := s.apply(func(fx *effects) error {
		i := s.indexOf(id)
		if i < 0 {
			return ErrDecorationNotFound
		}
		if !finite(t.Rotation) {
			return fmt.Errorf("%w: non-finite rotation", ErrInvalidDecoration)
		}
		d := s.decorations[i]

		d.Width = math.Max(s.cfg.MinSize, d.Width*normalizeScale(t.ScaleX))
		d.Height = math.Max(s.cfg.MinSize, d.Height*normalizeScale(t.ScaleY))
		d.Rotation = t.Rotation
		if t.X != nil && finite(*t.X) {
			d.X = *t.X
		}
		if t.Y != nil && finite(*t.Y) {
			d.Y = *t.Y
		}
		s.correctAspect(&d)

		s.replaceAt(i, d)
		out = d
		fx.emit(Event{Type: EventDecorationUpdated, DecorationID: id, Decoration: &out})
		return nil
	})
	return out, err
}

// normalizeScale maps a reported scale factor to a usable multiplier.
// Mirrored (negative) scales keep their magnitude; zero or non-finite
// factors are treated as no change.
func normalizeScale(v float64) float64 {
	if !finite(v) || v == 0 {
		return 1
	}
	return math.Abs(v)
}

// BringToFront moves a decoration to the end of the list. It is a no-op when
// the decoration is already on top; changed reports whether the order moved.
func (s *State) BringToFront(id string) (order []Decoration, changed bool, err error) {
	return s.reorder(id, true)
}

// SendToBack moves a decoration to the start of the list. It is a no-op when
// the decoration is already at the bottom.
func (s *State) SendToBack(id string) (order []Decoration, changed bool, err error) {
	return s.reorder(id, false)
}

func (s *State) reorder(id string, front bool) ([]Decoration, bool, error) {
	var (
		out     []Decoration
		changed bool
	)
	err := s.apply(func(fx *effects) error {
		i := s.indexOf(id)
		if i < 0 {
			return ErrDecorationNotFound
		}
		if (front && i == len(s.decorations)-1) || (!front && i == 0) {
			out = s.decorations
			return nil
		}

		d := s.decorations[i]
		rest := make([]Decoration, 0, len(s.decorations))
		rest = append(rest, s.decorations[:i]...)
		rest = append(rest, s.decorations[i+1:]...)

		next := make([]Decoration, 0, len(s.decorations))
		if front {
			next = append(append(next, rest...), d)
		} else {
			next = append(append(next, d), rest...)
		}
		s.decorations = next
		out = next
		changed = true

		ids := make([]string, len(next))
		for j := range next {
			ids[j] = next[j].ID
		}
		fx.emit(Event{Type: EventOrderChanged, DecorationID: id, Order: ids})
		return nil
	})
	return append([]Decoration{}, out...), changed, err
}

// LoadDecorations restores decoration records received from a collaborator,
// appending them on top of the current list. Records that fail to decode or
// validate are logged and skipped; one bad record never aborts the rest.
func (s *State) LoadDecorations(records []json.RawMessage) (loaded, skipped int, err error) {
	err = s.apply(func(fx *effects) error {
		if s.background == nil {
			fx.emit(Event{Type: EventBackgroundRequired, Action: "load_decorations"})
			return ErrBackgroundRequired
		}

		next := make([]Decoration, 0, len(s.decorations)+len(records))
		next = append(next, s.decorations...)
		seen := make(map[string]bool, len(next))
		for i := range next {
			seen[next[i].ID] = true
		}

		for idx, raw := range records {
			var d Decoration
			if err := json.Unmarshal(raw, &d); err != nil {
				s.logger.Warn().Err(err).Int("index", idx).Msg("Skipping malformed decoration record")
				skipped++
				continue
			}
			if reason := s.normalizeRecord(&d); reason != "" {
				s.logger.Warn().Str("decoration_id", d.ID).Int("index", idx).Str("reason", reason).Msg("Skipping invalid decoration record")
				skipped++
				continue
			}
			if seen[d.ID] {
				s.logger.Warn().Str("decoration_id", d.ID).Msg("Skipping duplicate decoration record")
				skipped++
				continue
			}
			seen[d.ID] = true

			d.Src = ActiveSource(d.DayURL, d.NightURL, s.dayMode)
			d.pendingURL = d.Src
			d.sized = true
			next = append(next, d)
			loaded++

			added := d
			fx.emit(Event{Type: EventDecorationAdded, DecorationID: d.ID, Decoration: &added})
			fx.loads = append(fx.loads, imageLoad{target: targetDecoration, id: d.ID, url: d.Src})
		}
		s.decorations = next
		return nil
	})
	return loaded, skipped, err
}

// normalizeRecord validates a restored record in place and returns a
// reason when it must be skipped.
func (s *State) normalizeRecord(d *Decoration) string {
	if strings.TrimSpace(d.ID) == "" {
		return "missing id"
	}
	if d.Type == "" {
		d.Type = KindImage
	}
	if d.Type != KindImage {
		return "unsupported type " + d.Type
	}
	if d.DayURL == "" && d.NightURL == "" {
		if d.Src == "" {
			return "missing image url"
		}
		d.DayURL = d.Src
	}
	for _, v := range []float64{d.X, d.Y, d.Width, d.Height, d.Rotation} {
		if !finite(v) {
			return "non-finite geometry"
		}
	}
	if d.Width <= 0 || d.Height <= 0 {
		return "non-positive size"
	}
	d.Width = math.Max(d.Width, s.cfg.MinSize)
	d.Height = math.Max(d.Height, s.cfg.MinSize)
	d.ImageFailed = false
	return ""
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
