// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/decorum/internal/clock"
	"github.com/tomtom215/decorum/internal/daynight"
	"github.com/tomtom215/decorum/internal/eventprocessor"
	"github.com/tomtom215/decorum/internal/logging"
	"github.com/tomtom215/decorum/internal/metrics"
	"github.com/tomtom215/decorum/internal/ordersync"
	"github.com/tomtom215/decorum/internal/scene"
	"github.com/tomtom215/decorum/internal/stage"
)

// Session lifecycle events published with source "session".
const (
	EventSessionCreated = "session_created"
	EventSessionClosed  = "session_closed"
)

// EventPublisher delivers session events. *eventprocessor.Bus satisfies it.
type EventPublisher interface {
	Emit(sessionID, source, eventType string, data interface{})
}

// RegistryConfig tunes the session registry.
type RegistryConfig struct {
	// MaxSessions caps open sessions. Zero means unlimited.
	MaxSessions int
	// IdleTimeout closes sessions unused for this long. Zero disables reaping.
	IdleTimeout time.Duration
	// ReapInterval is how often idle sessions are looked for.
	// Default: IdleTimeout / 4, at least one second.
	ReapInterval time.Duration
	// FlushTimeout bounds the final order delivery when a session closes.
	// Default: 5s
	FlushTimeout time.Duration

	Scene             scene.Config
	Conversion        daynight.Config
	OrderSyncDebounce time.Duration
}

// RegistryDeps are the collaborators shared by every session.
type RegistryDeps struct {
	Resolver scene.ImageResolver
	// Sender delivers order lists. Nil disables order sync.
	Sender    ordersync.Sender
	Scheduler clock.Scheduler
	Publisher EventPublisher
}

type publisherRef struct{ EventPublisher }

// Registry owns every open session. It implements
// eventprocessor.DecorationSyncer and runs as the session reaper under
// the supervisor.
type Registry struct {
	cfg       RegistryConfig
	resolver  scene.ImageResolver
	sender    ordersync.Sender
	sched     clock.Scheduler
	publisher atomic.Pointer[publisherRef]
	logger    zerolog.Logger

	mu       sync.RWMutex
	closed   bool
	sessions map[string]*Session
}

var _ eventprocessor.DecorationSyncer = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry(cfg RegistryConfig, deps RegistryDeps) *Registry {
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 5 * time.Second
	}
	if cfg.ReapInterval <= 0 && cfg.IdleTimeout > 0 {
		cfg.ReapInterval = cfg.IdleTimeout / 4
		if cfg.ReapInterval < time.Second {
			cfg.ReapInterval = time.Second
		}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = clock.Real{}
	}
	r := &Registry{
		cfg:      cfg,
		resolver: deps.Resolver,
		sender:   deps.Sender,
		sched:    deps.Scheduler,
		logger:   logging.WithComponent("sessions"),
		sessions: make(map[string]*Session),
	}
	if deps.Publisher != nil {
		r.SetPublisher(deps.Publisher)
	}
	return r
}

// SetPublisher sets where session events go. The event bus is built after
// the registry because the bus's order-sync handler needs the registry.
func (r *Registry) SetPublisher(p EventPublisher) {
	r.publisher.Store(&publisherRef{p})
}

func (r *Registry) publish(sessionID, source, eventType string, data interface{}) {
	if ref := r.publisher.Load(); ref != nil && ref.EventPublisher != nil {
		ref.Emit(sessionID, source, eventType, data)
	}
}

// Create opens a session. A positive container size fits the stage at once.
func (r *Registry) Create(containerWidth, containerHeight float64) (*Session, error) {
	id := uuid.NewString()
	now := r.sched.Now()

	sess := &Session{ID: id, CreatedAt: now}
	sess.Scene = scene.New(id, r.cfg.Scene, r.resolver, scene.SinkFunc(func(e scene.Event) {
		r.publish(id, eventprocessor.SourceScene, string(e.Type), e)
	}))
	sess.Conversion = daynight.New(r.cfg.Conversion, r.sched, func(e daynight.Event) {
		r.publish(id, eventprocessor.SourceConversion, e.Type, e)
	})
	sess.Conversion.Bind(sess.Scene)
	sess.Container = stage.NewContainer()
	sess.Stage = stage.New()
	sess.Stage.Attach(sess.Container)
	if r.sender != nil {
		sess.Orders = ordersync.NewSyncer(id, r.sender, r.cfg.OrderSyncDebounce, r.sched)
	}
	sess.touch(now)

	r.mu.Lock()
	switch {
	case r.closed:
		r.mu.Unlock()
		sess.close(r.cfg.FlushTimeout)
		return nil, ErrRegistryClosed
	case r.cfg.MaxSessions > 0 && len(r.sessions) >= r.cfg.MaxSessions:
		r.mu.Unlock()
		sess.close(r.cfg.FlushTimeout)
		return nil, fmt.Errorf("%w: %d open", ErrSessionLimit, r.cfg.MaxSessions)
	}
	r.sessions[id] = sess
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.SessionsActive.Set(float64(count))
	if containerWidth > 0 && containerHeight > 0 {
		sess.Container.SetSize(containerWidth, containerHeight)
	}
	r.logger.Info().Str("session_id", id).Int("open_sessions", count).Msg("Session created")
	r.publish(id, eventprocessor.SourceSession, EventSessionCreated, sess.Info())
	return sess, nil
}

// Get returns an open session and marks it used.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.touch(r.sched.Now())
	return sess, nil
}

// Close removes and shuts down a session.
func (r *Registry) Close(id, reason string) error {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	count := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	metrics.SessionsActive.Set(float64(count))
	sess.close(r.cfg.FlushTimeout)
	r.logger.Info().Str("session_id", id).Str("reason", reason).Msg("Session closed")
	r.publish(id, eventprocessor.SourceSession, EventSessionClosed, map[string]string{"reason": reason})
	return nil
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Accepting reports whether new sessions can be created.
func (r *Registry) Accepting() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.closed
}

// List returns session summaries ordered by creation time.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
	out := make([]SessionInfo, len(sessions))
	for i, s := range sessions {
		out[i] = s.Info()
	}
	return out
}

// SyncDecorations hands the session's current decoration list to its order
// syncer. Sessions without order sync, or already closed, are ignored.
func (r *Registry) SyncDecorations(sessionID string) error {
	r.mu.RLock()
	sess, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok || sess.Orders == nil {
		return nil
	}
	sess.Orders.Update(sess.orderItems())
	return nil
}

// ReapIdle closes sessions unused since before now - IdleTimeout and
// returns how many were closed.
func (r *Registry) ReapIdle(now time.Time) int {
	if r.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-r.cfg.IdleTimeout)

	r.mu.RLock()
	var idle []string
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, id)
		}
	}
	r.mu.RUnlock()

	closed := 0
	for _, id := range idle {
		if err := r.Close(id, "idle"); err == nil {
			closed++
		}
	}
	return closed
}

// CloseAll shuts every session down and rejects new ones.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.closed = true
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		_ = r.Close(id, "shutdown")
	}
}

// Serve implements suture.Service: it reaps idle sessions until ctx is
// canceled. Sessions survive a restart of the reaper.
func (r *Registry) Serve(ctx context.Context) error {
	if r.cfg.IdleTimeout <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(r.cfg.ReapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := r.ReapIdle(r.sched.Now()); n > 0 {
				r.logger.Info().Int("closed", n).Int("open_sessions", r.Len()).Msg("Reaped idle sessions")
			}
		}
	}
}

// String implements fmt.Stringer for suture's logs.
func (r *Registry) String() string {
	return "session-reaper"
}
