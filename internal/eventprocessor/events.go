// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// TopicSessionEvents is the single topic carrying every session event.
const TopicSessionEvents = "designer.session.events"

// Event sources.
const (
	SourceScene      = "scene"
	SourceConversion = "conversion"
	SourceOrderSync  = "order_sync"
	SourceSession    = "session"
)

// SessionEvent is the envelope published on the bus and pushed to clients.
type SessionEvent struct {
	EventID string `json:"eventId"`
	// Seq increases with publish order across the bus. Clients order a
	// session's events by it; gaps are other sessions' events.
	Seq       uint64          `json:"seq"`
	SessionID string          `json:"sessionId"`
	Source    string          `json:"source"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewSessionEvent wraps data in an envelope with a fresh id and timestamp.
func NewSessionEvent(sessionID, source, eventType string, data interface{}) (*SessionEvent, error) {
	ev := &SessionEvent{
		EventID:   uuid.NewString(),
		SessionID: sessionID,
		Source:    source,
		Type:      eventType,
		Timestamp: time.Now().UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s data: %w", eventType, err)
		}
		ev.Data = raw
	}
	return ev, nil
}

// Validate checks required envelope fields.
func (e *SessionEvent) Validate() error {
	switch {
	case e.EventID == "":
		return fmt.Errorf("%w: event_id required", ErrInvalidEvent)
	case e.SessionID == "":
		return fmt.Errorf("%w: session_id required", ErrInvalidEvent)
	case e.Type == "":
		return fmt.Errorf("%w: type required", ErrInvalidEvent)
	}
	return nil
}
