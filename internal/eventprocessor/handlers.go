// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package eventprocessor

import (
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// SessionBroadcaster delivers raw frames to the clients of one session.
type SessionBroadcaster interface {
	BroadcastToSession(sessionID string, data []byte)
}

// WebSocketHandler forwards every session event to the session's clients.
type WebSocketHandler struct {
	hub    SessionBroadcaster
	logger watermill.LoggerAdapter

	messagesReceived  atomic.Int64
	messagesBroadcast atomic.Int64
}

// NewWebSocketHandler creates a new handler for WebSocket broadcasting.
func NewWebSocketHandler(hub SessionBroadcaster, logger watermill.LoggerAdapter) (*WebSocketHandler, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	if logger == nil {
		logger = NewWatermillLogger()
	}
	return &WebSocketHandler{hub: hub, logger: logger}, nil
}

// Handle broadcasts the raw payload. Messages without a session id are
// dropped since they cannot be routed.
func (h *WebSocketHandler) Handle(msg *message.Message) error {
	h.messagesReceived.Add(1)

	sessionID := msg.Metadata.Get("session_id")
	if sessionID == "" {
		h.logger.Debug("Dropping event without session", watermill.LogFields{"message_uuid": msg.UUID})
		return nil
	}

	h.hub.BroadcastToSession(sessionID, msg.Payload)
	h.messagesBroadcast.Add(1)
	return nil
}

// Stats returns current handler statistics.
func (h *WebSocketHandler) Stats() HandlerStats {
	return HandlerStats{
		MessagesReceived: h.messagesReceived.Load(),
		MessagesHandled:  h.messagesBroadcast.Load(),
	}
}

// HandlerStats holds runtime statistics.
type HandlerStats struct {
	MessagesReceived int64
	MessagesHandled  int64
}

// DecorationSyncer pushes a session's current decoration list to order sync.
type DecorationSyncer interface {
	SyncDecorations(sessionID string) error
}

// decorationChangeTypes are the scene events that can change the synced
// (id, name, image id) structure.
var decorationChangeTypes = map[string]bool{
	"decoration_added":         true,
	"decoration_removed":       true,
	"decoration_updated":       true,
	"decoration_order_changed": true,
	"background_image_set":     true,
	"background_image_removed": true,
}

// OrderSyncHandler schedules order sync for decoration changes.
type OrderSyncHandler struct {
	syncer DecorationSyncer
	logger watermill.LoggerAdapter

	messagesReceived atomic.Int64
	messagesHandled  atomic.Int64
}

// NewOrderSyncHandler creates the order-sync trigger.
func NewOrderSyncHandler(syncer DecorationSyncer, logger watermill.LoggerAdapter) (*OrderSyncHandler, error) {
	if syncer == nil {
		return nil, fmt.Errorf("syncer required")
	}
	if logger == nil {
		logger = NewWatermillLogger()
	}
	return &OrderSyncHandler{syncer: syncer, logger: logger}, nil
}

// Handle filters scene decoration events. Returning an error lets the
// retry middleware try again.
func (h *OrderSyncHandler) Handle(msg *message.Message) error {
	h.messagesReceived.Add(1)

	if !decorationChangeTypes[msg.Metadata.Get("type")] {
		return nil
	}
	sessionID := msg.Metadata.Get("session_id")
	if sessionID == "" {
		return nil
	}
	if err := h.syncer.SyncDecorations(sessionID); err != nil {
		return fmt.Errorf("sync decorations for %s: %w", sessionID, err)
	}
	h.messagesHandled.Add(1)
	return nil
}

// Stats returns current handler statistics.
func (h *OrderSyncHandler) Stats() HandlerStats {
	return HandlerStats{
		MessagesReceived: h.messagesReceived.Load(),
		MessagesHandled:  h.messagesHandled.Load(),
	}
}
