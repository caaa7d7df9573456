// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// setupClientServer upgrades each request and attaches it to hub as a
// client of sessionID.
func setupClientServer(t *testing.T, hub *Hub, sessionID string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, sessionID)
		hub.Register <- client
		client.Start()
	}))
	t.Cleanup(srv.Close)
	return srv
}

// dialWebSocket establishes a WebSocket connection to the test server
func dialWebSocket(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	a := NewClient(hub, nil, "s1")
	b := NewClient(hub, nil, "s1")

	if a.SessionID() != "s1" {
		t.Errorf("expected session s1, got %s", a.SessionID())
	}
	if b.ID() <= a.ID() {
		t.Errorf("expected increasing ids, got %d then %d", a.ID(), b.ID())
	}
	if cap(a.send) != 256 {
		t.Errorf("expected send buffer 256, got %d", cap(a.send))
	}
}

func TestClientConstants(t *testing.T) {
	t.Parallel()

	if pingPeriod >= pongWait {
		t.Errorf("expected pingPeriod %v below pongWait %v", pingPeriod, pongWait)
	}
	if writeWait != 10*time.Second {
		t.Errorf("expected writeWait 10s, got %v", writeWait)
	}
}

func TestClient_ReceivesSessionFrames(t *testing.T) {
	t.Parallel()

	hub := setupHub(t)
	srv := setupClientServer(t, hub, "s1")
	conn := dialWebSocket(t, srv)
	waitFor(t, func() bool { return hub.SessionClientCount("s1") == 1 }, "client registration")

	hub.BroadcastToSession("s1", []byte(`{"type":"selection_changed"}`))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"type":"selection_changed"}` {
		t.Errorf("expected selection_changed frame, got %s", data)
	}
}

func TestClient_PingGetsPong(t *testing.T) {
	t.Parallel()

	hub := setupHub(t)
	srv := setupClientServer(t, hub, "s1")
	conn := dialWebSocket(t, srv)

	if err := conn.WriteJSON(Message{Type: MessageTypePing}); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != MessageTypePong {
		t.Errorf("expected pong, got %s", msg.Type)
	}
}

func TestClient_DisconnectUnregisters(t *testing.T) {
	t.Parallel()

	hub := setupHub(t)
	srv := setupClientServer(t, hub, "s1")
	conn := dialWebSocket(t, srv)
	waitFor(t, func() bool { return hub.SessionClientCount("s1") == 1 }, "client registration")

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()

	waitFor(t, func() bool { return hub.SessionClientCount("s1") == 0 }, "client removal")
}

func TestClient_HubShutdownClosesConnection(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	srv := setupClientServer(t, hub, "s1")
	conn := dialWebSocket(t, srv)
	waitFor(t, func() bool { return hub.SessionClientCount("s1") == 1 }, "client registration")

	cancel()
	<-done

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("expected connection to close after hub shutdown")
	}
}
