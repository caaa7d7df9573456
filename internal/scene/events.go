// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package scene

import "sync"

// EventType names an event raised by a scene.
type EventType string

// Scene events.
const (
	EventDecorationAdded    EventType = "decoration_added"
	EventDecorationRemoved  EventType = "decoration_removed"
	EventDecorationUpdated  EventType = "decoration_updated"
	EventBackgroundRemoved  EventType = "background_image_removed"
	EventBackgroundRequired EventType = "background_image_required"
	EventBackgroundSet      EventType = "background_image_set"
	EventSelectionChanged   EventType = "selection_changed"
	EventOrderChanged       EventType = "decoration_order_changed"
	EventCartoucheChanged   EventType = "cartouche_changed"
	EventModeChanged        EventType = "mode_changed"
)

// Event is a change notification raised by a scene.
type Event struct {
	// Seq increases by one per event of a scene, in mutation order.
	Seq          uint64      `json:"seq"`
	Type         EventType   `json:"type"`
	SceneID      string      `json:"sceneId"`
	DecorationID string      `json:"decorationId,omitempty"`
	BackgroundID string      `json:"backgroundId,omitempty"`
	Decoration   *Decoration `json:"decoration,omitempty"`
	Background   *Background `json:"background,omitempty"`
	Order        []string    `json:"order,omitempty"`
	SelectedID   string      `json:"selectedId,omitempty"`
	DayMode      *bool       `json:"dayMode,omitempty"`
	Action       string      `json:"action,omitempty"`
}

// EventSink receives scene events in the order they were raised.
type EventSink interface {
	Emit(Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(Event)

// Emit implements EventSink.
func (f SinkFunc) Emit(e Event) { f(e) }

// Recorder is an EventSink that keeps every event. Useful in tests and for
// replaying a session's history.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit implements EventSink.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type discardSink struct{}

func (discardSink) Emit(Event) {}
