// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tomtom215/decorum/internal/daynight"
	"github.com/tomtom215/decorum/internal/ordersync"
	"github.com/tomtom215/decorum/internal/scene"
	"github.com/tomtom215/decorum/internal/stage"
)

// Session is one open designer: a scene, the stage scaling it to the
// client's container, the day/night controller bound to the scene, and the
// optional order syncer.
type Session struct {
	ID        string
	CreatedAt time.Time

	Scene      *scene.State
	Stage      *stage.Stage
	Container  *stage.Container
	Conversion *daynight.Controller
	Orders     *ordersync.Syncer

	lastSeen atomic.Int64
}

// SessionInfo is the serializable summary of a session.
type SessionInfo struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	LastSeen  time.Time      `json:"lastSeen"`
	Stage     stage.Snapshot `json:"stage"`
	OrderSync bool           `json:"orderSync"`
}

// SessionView is the full state returned by GET /sessions/{id}.
type SessionView struct {
	SessionInfo
	Scene      scene.Snapshot        `json:"scene"`
	Conversion ConversionView        `json:"conversion"`
	Images     []daynight.ImageState `json:"images"`
}

// ConversionView summarizes the day/night controller.
type ConversionView struct {
	DayMode   bool   `json:"dayMode"`
	Active    string `json:"activeImageId,omitempty"`
	Animating string `json:"animatingImageId,omitempty"`
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

// Info returns the session summary.
func (s *Session) Info() SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		LastSeen:  s.LastSeen(),
		Stage:     s.Stage.Snapshot(),
		OrderSync: s.Orders != nil,
	}
}

// View returns a consistent enough picture of the session for clients.
// Each component is snapshotted under its own lock.
func (s *Session) View() SessionView {
	return SessionView{
		SessionInfo: s.Info(),
		Scene:       s.Scene.Snapshot(),
		Conversion:  s.conversionView(),
		Images:      s.Conversion.Images(),
	}
}

func (s *Session) conversionView() ConversionView {
	return ConversionView{
		DayMode:   s.Conversion.DayMode(),
		Active:    s.Conversion.Active(),
		Animating: s.Conversion.Animating(),
	}
}

// orderItems maps the scene's decorations onto order lines.
func (s *Session) orderItems() []ordersync.Item {
	decos := s.Scene.Decorations()
	items := make([]ordersync.Item, 0, len(decos))
	for i := range decos {
		d := &decos[i]
		items = append(items, ordersync.Item{
			ID:           d.ID,
			DecorationID: d.DecorationID,
			Name:         d.Name,
			ImageID:      d.ImageID,
			Price:        d.Price,
		})
	}
	return items
}

// close stops timers and image loads. A pending order list gets one last
// bounded delivery attempt.
func (s *Session) close(flushTimeout time.Duration) {
	s.Conversion.Close()
	if s.Orders != nil {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		_, _ = s.Orders.Flush(ctx)
		cancel()
		s.Orders.Close()
	}
	s.Stage.Close()
	s.Scene.Close()
}
