// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package eventprocessor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/goccy/go-json"

	"github.com/tomtom215/decorum/internal/logging"
)

type recordingHub struct {
	mu     sync.Mutex
	frames map[string][][]byte
	got    chan string
}

func newRecordingHub() *recordingHub {
	return &recordingHub{frames: make(map[string][][]byte), got: make(chan string, 64)}
}

func (h *recordingHub) BroadcastToSession(sessionID string, data []byte) {
	h.mu.Lock()
	h.frames[sessionID] = append(h.frames[sessionID], data)
	h.mu.Unlock()
	h.got <- sessionID
}

type countingSyncer struct {
	mu       sync.Mutex
	calls    []string
	failures int
	done     chan string
}

func (s *countingSyncer) SyncDecorations(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("transient")
	}
	s.calls = append(s.calls, sessionID)
	s.done <- sessionID
	return nil
}

func testRouterConfig() RouterConfig {
	cfg := DefaultRouterConfig()
	cfg.RetryInitialInterval = time.Millisecond
	cfg.RetryMaxInterval = 5 * time.Millisecond
	cfg.CloseTimeout = time.Second
	return cfg
}

func startComponents(t *testing.T, hub SessionBroadcaster, syncer DecorationSyncer) *Components {
	t.Helper()
	c, err := NewComponents(ComponentsConfig{
		Bus:    BusConfig{OutputChannelBuffer: 16},
		Router: testRouterConfig(),
		Hub:    hub,
		Syncer: syncer,
	}, nil)
	if err != nil {
		t.Fatalf("NewComponents failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Router.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = c.Close()
	})

	select {
	case <-c.Router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
	return c
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return ""
	}
}

func TestPipeline_FansOutToSessionAndSync(t *testing.T) {
	t.Parallel()

	hub := newRecordingHub()
	syncer := &countingSyncer{done: make(chan string, 8)}
	c := startComponents(t, hub, syncer)

	c.Bus.Emit("s1", SourceScene, "decoration_added", map[string]string{"id": "d1"})

	if got := waitFor(t, hub.got); got != "s1" {
		t.Errorf("expected frame for s1, got %s", got)
	}
	if got := waitFor(t, syncer.done); got != "s1" {
		t.Errorf("expected sync for s1, got %s", got)
	}

	hub.mu.Lock()
	frame := hub.frames["s1"][0]
	hub.mu.Unlock()
	var ev SessionEvent
	if err := json.Unmarshal(frame, &ev); err != nil {
		t.Fatalf("frame is not a session event: %v", err)
	}
	if ev.Type != "decoration_added" || ev.Source != SourceScene {
		t.Errorf("expected decoration_added from scene, got %s from %s", ev.Type, ev.Source)
	}
	if !strings.Contains(string(ev.Data), `"d1"`) {
		t.Errorf("expected data to carry d1, got %s", ev.Data)
	}
}

func TestPipeline_NonDecorationEventsSkipSync(t *testing.T) {
	t.Parallel()

	hub := newRecordingHub()
	syncer := &countingSyncer{done: make(chan string, 8)}
	c := startComponents(t, hub, syncer)

	c.Bus.Emit("s1", SourceConversion, "conversion_progress", nil)
	waitFor(t, hub.got)
	c.Bus.Emit("s1", SourceScene, "decoration_removed", nil)
	waitFor(t, hub.got)
	waitFor(t, syncer.done)

	syncer.mu.Lock()
	defer syncer.mu.Unlock()
	if len(syncer.calls) != 1 {
		t.Errorf("expected 1 sync call, got %d", len(syncer.calls))
	}
}

func TestPipeline_RetriesTransientSyncFailure(t *testing.T) {
	t.Parallel()

	hub := newRecordingHub()
	syncer := &countingSyncer{failures: 2, done: make(chan string, 8)}
	c := startComponents(t, hub, syncer)

	c.Bus.Emit("s2", SourceScene, "decoration_updated", nil)
	if got := waitFor(t, syncer.done); got != "s2" {
		t.Errorf("expected retried sync for s2, got %s", got)
	}
}

func TestBus_PublishValidatesAndRejectsAfterClose(t *testing.T) {
	t.Parallel()

	bus := NewBus(BusConfig{}, nil)
	err := bus.Publish(context.Background(), &SessionEvent{EventID: "e", Type: "x"})
	if !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}

	if err := bus.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	ev, _ := NewSessionEvent("s", SourceScene, "x", nil)
	if err := bus.Publish(context.Background(), ev); !errors.Is(err, ErrBusClosed) {
		t.Errorf("expected ErrBusClosed, got %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("expected second Close to be a no-op, got %v", err)
	}
}

func TestNewComponents_RequiresHub(t *testing.T) {
	t.Parallel()
	_, err := NewComponents(ComponentsConfig{Router: testRouterConfig()}, nil)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSerializer_RoundTripKeepsEnvelope(t *testing.T) {
	t.Parallel()

	ev, err := NewSessionEvent("s", SourceSession, "session_closed", map[string]int{"n": 1})
	if err != nil {
		t.Fatalf("NewSessionEvent failed: %v", err)
	}
	s := NewSerializer()
	data, err := s.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	back, err := s.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.EventID != ev.EventID || back.SessionID != "s" || string(back.Data) != `{"n":1}` {
		t.Errorf("expected envelope preserved, got %+v", back)
	}
	if _, err := s.Unmarshal([]byte("{")); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestDeduplicator(t *testing.T) {
	t.Parallel()
	d := NewInMemoryDeduplicator(time.Minute)
	ctx := context.Background()
	if dup, _ := d.IsDuplicate(ctx, "k"); dup {
		t.Error("expected first sighting to be new")
	}
	if dup, _ := d.IsDuplicate(ctx, "k"); !dup {
		t.Error("expected second sighting to be a duplicate")
	}
}

func TestWatermillLogger_WritesFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewWatermillLoggerWith(logging.NewTestLogger(&buf))
	l.With(watermill.LogFields{"handler": "ws"}).Error("boom", errors.New("bad"), watermill.LogFields{"n": 2})

	out := buf.String()
	for _, want := range []string{`"handler":"ws"`, `"n":2`, `"error":"bad"`, `"message":"boom"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

// sequenceHub records the bus sequence of every frame it receives.
type sequenceHub struct {
	mu   sync.Mutex
	seqs []uint64
	bad  int
}

func (h *sequenceHub) BroadcastToSession(_ string, data []byte) {
	var ev SessionEvent
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := json.Unmarshal(data, &ev); err != nil {
		h.bad++
		return
	}
	h.seqs = append(h.seqs, ev.Seq)
}

func (h *sequenceHub) received() []uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]uint64(nil), h.seqs...)
}

func TestPipeline_DeliversInPublishOrder(t *testing.T) {
	t.Parallel()

	hub := &sequenceHub{}
	c, err := NewComponents(ComponentsConfig{
		Bus:    BusConfig{OutputChannelBuffer: 256},
		Router: testRouterConfig(),
		Hub:    hub,
	}, nil)
	if err != nil {
		t.Fatalf("NewComponents failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = c.Router.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = c.Close()
	})
	select {
	case <-c.Router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	const n = 2000
	for i := 0; i < n; i++ {
		c.Bus.Emit("s-order", SourceScene, "decoration_updated", map[string]int{"i": i})
	}

	// Publish returns only after the handler acked, so everything is in.
	got := hub.received()
	if len(got) != n {
		t.Fatalf("expected %d frames, got %d", n, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("expected increasing seq, got %d after %d at %d", got[i], got[i-1], i)
		}
	}
	if hub.bad != 0 {
		t.Errorf("expected every frame to decode, got %d failures", hub.bad)
	}
}

func TestBus_SequenceFollowsPublishOrder(t *testing.T) {
	t.Parallel()

	bus := NewBus(BusConfig{}, nil)
	t.Cleanup(func() { _ = bus.Close() })

	var last uint64
	for i := 0; i < 5; i++ {
		ev, err := NewSessionEvent("s", SourceSession, "session_created", nil)
		if err != nil {
			t.Fatalf("NewSessionEvent failed: %v", err)
		}
		if err := bus.Publish(context.Background(), ev); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		if ev.Seq != last+1 {
			t.Errorf("expected seq %d, got %d", last+1, ev.Seq)
		}
		last = ev.Seq
	}
}
