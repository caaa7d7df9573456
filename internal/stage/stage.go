// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package stage

import (
	"math"
	"sync"

	"github.com/tomtom215/decorum/internal/geometry"
)

// State is the stage lifecycle state.
type State int

const (
	// Uninitialized means no usable container size has been observed yet.
	Uninitialized State = iota
	// Fitted means the scale reflects the latest non-empty container size.
	Fitted
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Fitted:
		return "fitted"
	default:
		return "unknown"
	}
}

// ResizeSource delivers container size changes. Subscribe returns a
// function that cancels the subscription.
type ResizeSource interface {
	Subscribe(fn func(width, height float64)) (unsubscribe func())
}

// Stage owns the logical-to-physical scale of one scene.
type Stage struct {
	mu          sync.RWMutex
	state       State
	scale       float64
	container   geometry.Size
	unsubscribe func()
	onChange    []func(scale float64)
}

// New creates an uninitialized stage with an identity scale.
func New() *Stage {
	return &Stage{scale: 1}
}

// Attach subscribes the stage to a resize source. Any previous
// subscription is cancelled first.
func (s *Stage) Attach(src ResizeSource) {
	s.Close()
	unsub := src.Subscribe(func(w, h float64) {
		s.Resize(w, h)
	})
	s.mu.Lock()
	s.unsubscribe = unsub
	s.mu.Unlock()
}

// Close cancels the resize subscription. The stage keeps its last scale.
func (s *Stage) Close() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// OnChange registers a callback invoked after every applied resize.
func (s *Stage) OnChange(fn func(scale float64)) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Resize recomputes the scale for a container of the given physical size.
// Returns false when the size was skipped because it has no area.
func (s *Stage) Resize(width, height float64) bool {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return false
	}

	scale := math.Min(width/geometry.SceneWidth, height/geometry.SceneHeight)

	s.mu.Lock()
	s.scale = scale
	s.container = geometry.Size{Width: width, Height: height}
	s.state = Fitted
	listeners := append([]func(float64){}, s.onChange...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(scale)
	}
	return true
}

// State returns the lifecycle state.
func (s *Stage) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Scale returns the current logical-to-physical scale.
func (s *Stage) Scale() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scale
}

// Container returns the last accepted container size.
func (s *Stage) Container() geometry.Size {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.container
}

// Size returns the physical stage dimensions.
func (s *Stage) Size() geometry.Size {
	scale := s.Scale()
	return geometry.Size{Width: geometry.SceneWidth * scale, Height: geometry.SceneHeight * scale}
}

// ToLogical converts a physical pointer position to logical scene units.
func (s *Stage) ToLogical(px, py float64) geometry.Point {
	scale := s.Scale()
	return geometry.Point{X: px / scale, Y: py / scale}
}

// ToPhysical converts a logical scene position to physical pixels.
func (s *Stage) ToPhysical(p geometry.Point) geometry.Point {
	scale := s.Scale()
	return geometry.Point{X: p.X * scale, Y: p.Y * scale}
}

// Snapshot is a serializable view of the stage.
type Snapshot struct {
	State     string  `json:"state"`
	Scale     float64 `json:"scale"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Container struct {
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	} `json:"container"`
}

// Snapshot returns a consistent view of the stage.
func (s *Stage) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var snap Snapshot
	snap.State = s.state.String()
	snap.Scale = s.scale
	snap.Width = geometry.SceneWidth * s.scale
	snap.Height = geometry.SceneHeight * s.scale
	snap.Container.Width = s.container.Width
	snap.Container.Height = s.container.Height
	return snap
}
