// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package services

import (
	"context"
	"fmt"

	"github.com/thejerf/suture/v4"
)

// EventRouter is satisfied by *eventprocessor.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the session event router.
//
// A watermill router cannot be run again once it has stopped, so an
// unexpected exit is reported with suture.ErrDoNotRestart instead of
// looping on a dead router.
type EventRouterService struct {
	router EventRouter
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router}
}

// Serve implements suture.Service.
func (e *EventRouterService) Serve(ctx context.Context) error {
	err := e.router.Run(ctx)
	if ctx.Err() != nil {
		_ = e.router.Close() // already stopping; Close is idempotent
		return ctx.Err()
	}
	if err == nil {
		return fmt.Errorf("event router stopped: %w", suture.ErrDoNotRestart)
	}
	return fmt.Errorf("event router failed: %v: %w", err, suture.ErrDoNotRestart)
}

// String implements fmt.Stringer for suture's logs.
func (e *EventRouterService) String() string {
	return "event-router"
}
