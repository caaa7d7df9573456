// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/decorum/internal/logging"
	"github.com/tomtom215/decorum/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Control message types exchanged with clients. Session events are pushed
// as their own envelopes and carry their event type instead.
const (
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
	MessageTypeSessionEnded = "session_ended"
)

// Message is a control frame.
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// frame is a payload addressed to one session's clients.
type frame struct {
	sessionID string
	data      []byte
}

// Hub maintains the set of active clients grouped by session and routes
// frames to the clients of the addressed session only.
type Hub struct {
	sessions   map[string]map[*Client]bool
	broadcast  chan frame
	Register   chan *Client
	Unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan frame, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		sessions:   make(map[string]map[*Client]bool),
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err().
//
// Selection is priority based: shutdown first, then client lifecycle
// events, then frames, so a client registered before a frame always
// receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case f := <-h.broadcast:
			h.sendToSession(f)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	clients := h.sessions[client.sessionID]
	if clients == nil {
		clients = make(map[*Client]bool)
		h.sessions[client.sessionID] = clients
	}
	clients[client] = true
	h.mu.Unlock()
	metrics.WSConnections.Inc()
	logging.Info().Str("session_id", client.sessionID).Int("session_clients", len(clients)).Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	removed := h.removeLocked(client)
	h.mu.Unlock()
	if removed {
		logging.Info().Str("session_id", client.sessionID).Msg("websocket client disconnected")
	}
}

// removeLocked closes the client's queue and forgets it. Must hold mu.
func (h *Hub) removeLocked(client *Client) bool {
	clients, ok := h.sessions[client.sessionID]
	if !ok || !clients[client] {
		return false
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}
	close(client.send)
	metrics.WSConnections.Dec()
	return true
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()
	h.stopOnce.Do(func() { close(h.done) })

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// sortedClients returns a session's clients in id order. Must hold mu.
func sortedClients(set map[*Client]bool) []*Client {
	clients := make([]*Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// sendToSession queues a frame for every client of its session in id order.
// Clients whose queue is full are disconnected.
func (h *Hub) sendToSession(f frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range sortedClients(h.sessions[f.sessionID]) {
		select {
		case client.send <- f.data:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		metrics.WSMessagesDropped.Inc()
		h.removeLocked(client)
	}
}

// closeAllClients closes every client in session then id order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		for _, client := range sortedClients(h.sessions[id]) {
			h.removeLocked(client)
		}
	}
}

// RegisterClient hands a new client to the hub. It returns false once the
// hub has stopped; the caller then owns the connection.
func (h *Hub) RegisterClient(c *Client) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// unregisterClient hands a client back to the hub unless it has stopped.
func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}

// BroadcastToSession queues a raw frame for the clients of one session.
// It implements eventprocessor.SessionBroadcaster.
func (h *Hub) BroadcastToSession(sessionID string, data []byte) {
	select {
	case h.broadcast <- frame{sessionID: sessionID, data: data}:
	default:
		metrics.WSMessagesDropped.Inc()
		logging.Warn().Str("session_id", sessionID).Msg("broadcast channel full, dropping session frame")
	}
}

// BroadcastJSON marshals a control message and sends it to a session.
func (h *Hub) BroadcastJSON(sessionID, messageType string, data interface{}) {
	payload, err := MarshalMessage(Message{Type: messageType, SessionID: sessionID, Data: data})
	if err != nil {
		logging.Warn().Err(err).Str("message_type", messageType).Msg("failed to marshal websocket message")
		return
	}
	h.BroadcastToSession(sessionID, payload)
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.sessions {
		n += len(clients)
	}
	return n
}

// SessionClientCount returns the number of clients watching a session.
func (h *Hub) SessionClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
