// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package scene

import (
	"errors"
	"math"

	"github.com/tomtom215/decorum/internal/geometry"
)

// PointerKind distinguishes mouse from touch input.
type PointerKind string

// Pointer kinds.
const (
	PointerMouse PointerKind = "mouse"
	PointerTouch PointerKind = "touch"
)

// ErrNoGesture is returned when a pointer move or release arrives without a
// matching pointer down.
var ErrNoGesture = errors.New("no gesture in progress")

// GestureOutcome tells how a released gesture was interpreted.
type GestureOutcome string

// Gesture outcomes.
const (
	OutcomeTap  GestureOutcome = "tap"
	OutcomeDrag GestureOutcome = "drag"
)

// GestureResult is returned when a pointer is released.
type GestureResult struct {
	Outcome    GestureOutcome       `json:"outcome"`
	Decoration Decoration           `json:"decoration"`
	Snap       *geometry.SnapResult `json:"snap,omitempty"`
}

// gesture tracks one pointer from down to up.
type gesture struct {
	decorationID string
	kind         PointerKind
	start        geometry.Point
	grab         geometry.Point // offset from pointer to decoration center
	dragging     bool
}

// PointerDown starts a gesture on a decoration at logical (x, y). A mouse
// press selects immediately. A touch press waits for release or movement
// to tell a tap from a drag.
func (s *State) PointerDown(id string, kind PointerKind, x, y float64) error {
	return s.apply(func(fx *effects) error {
		i := s.indexOf(id)
		if i < 0 {
			return ErrDecorationNotFound
		}
		if kind != PointerTouch {
			kind = PointerMouse
		}
		d := s.decorations[i]
		s.gesture = &gesture{
			decorationID: id,
			kind:         kind,
			start:        geometry.Point{X: x, Y: y},
			grab:         geometry.Point{X: d.X - x, Y: d.Y - y},
		}
		if kind == PointerMouse {
			s.setSelection(fx, id)
		}
		return nil
	})
}

// PointerMove advances the gesture. Once the pointer counts as dragging it
// returns the snap preview for the decoration's prospective center; nothing
// is committed. dragging is false while a touch is still within the tap
// threshold.
func (s *State) PointerMove(x, y float64) (preview geometry.SnapResult, dragging bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return geometry.SnapResult{}, false, ErrClosed
	}
	g := s.gesture
	if g == nil {
		return geometry.SnapResult{}, false, ErrNoGesture
	}
	if !g.dragging && s.exceedsTap(g, x, y) {
		g.dragging = true
	}
	if !g.dragging {
		return geometry.SnapResult{}, false, nil
	}
	return geometry.SnapWithin(x+g.grab.X, y+g.grab.Y, s.zones, s.cfg.SnapThreshold), true, nil
}

// PointerUp finishes the gesture. A touch that never left the tap threshold
// selects the decoration. Any drag commits the snapped position.
func (s *State) PointerUp(x, y float64) (GestureResult, error) {
	var res GestureResult
	err := s.apply(func(fx *effects) error {
		g := s.gesture
		if g == nil {
			return ErrNoGesture
		}
		s.gesture = nil

		if !g.dragging && s.exceedsTap(g, x, y) {
			g.dragging = true
		}
		if !g.dragging {
			i := s.indexOf(g.decorationID)
			if i < 0 {
				return ErrDecorationNotFound
			}
			s.setSelection(fx, g.decorationID)
			res = GestureResult{Outcome: OutcomeTap, Decoration: s.decorations[i]}
			return nil
		}

		d, snap, err := s.commitDrag(fx, g.decorationID, x+g.grab.X, y+g.grab.Y)
		if err != nil {
			return err
		}
		res = GestureResult{Outcome: OutcomeDrag, Decoration: d, Snap: &snap}
		return nil
	})
	return res, err
}

// CancelGesture drops any gesture in progress without committing.
func (s *State) CancelGesture() {
	s.mu.Lock()
	s.gesture = nil
	s.mu.Unlock()
}

// exceedsTap reports whether (x, y) left the tap window. Mouse input drags
// on any movement; touch input needs more than the tap threshold on either
// axis.
func (s *State) exceedsTap(g *gesture, x, y float64) bool {
	dx := math.Abs(x - g.start.X)
	dy := math.Abs(y - g.start.Y)
	if g.kind == PointerMouse {
		return dx > 0 || dy > 0
	}
	return dx > s.cfg.TapThreshold || dy > s.cfg.TapThreshold
}
