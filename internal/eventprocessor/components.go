// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package eventprocessor

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
)

// Handler names registered on the router.
const (
	HandlerWebSocket = "websocket-fanout"
	HandlerOrderSync = "order-sync-trigger"
)

// Components holds the wired event pipeline.
type Components struct {
	Bus              *Bus
	Router           *Router
	WebSocketHandler *WebSocketHandler
	OrderSyncHandler *OrderSyncHandler
}

// ComponentsConfig configures NewComponents.
type ComponentsConfig struct {
	Bus    BusConfig
	Router RouterConfig

	// Hub receives session frames. Required.
	Hub SessionBroadcaster
	// Syncer is optional; without it no order-sync handler is registered.
	Syncer DecorationSyncer
}

// NewComponents creates the bus and router and registers the handlers.
func NewComponents(cfg ComponentsConfig, logger watermill.LoggerAdapter) (*Components, error) {
	if logger == nil {
		logger = NewWatermillLogger()
	}

	router, err := NewRouter(&cfg.Router, logger)
	if err != nil {
		return nil, err
	}

	wsHandler, err := NewWebSocketHandler(cfg.Hub, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	bus := NewBus(cfg.Bus, logger)
	c := &Components{Bus: bus, Router: router, WebSocketHandler: wsHandler}
	router.AddConsumerHandler(HandlerWebSocket, TopicSessionEvents, bus.Subscriber(), wsHandler.Handle)

	if cfg.Syncer != nil {
		syncHandler, err := NewOrderSyncHandler(cfg.Syncer, logger)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		c.OrderSyncHandler = syncHandler
		router.AddConsumerHandler(HandlerOrderSync, TopicSessionEvents, bus.Subscriber(), syncHandler.Handle)
	}

	return c, nil
}

// Close closes the router, then the bus.
func (c *Components) Close() error {
	rerr := c.Router.Close()
	berr := c.Bus.Close()
	if rerr != nil {
		return rerr
	}
	return berr
}
