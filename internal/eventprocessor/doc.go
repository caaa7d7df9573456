// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package eventprocessor carries designer session events over an in-process
Watermill bus.

Scenes, day/night controllers and order syncers publish SessionEvent values
on a single topic. A Watermill Router fans each message out to consumer
handlers: the WebSocket handler forwards it to the clients of the owning
session, and the order-sync handler reacts to decoration changes by
scheduling a debounced flush.

# Architecture

	scene.State ─┐
	daynight     ├─> Bus.Publish ─> gochannel ─> Router ─┬─> WebSocketHandler ─> websocket.Hub
	ordersync   ─┘                                       └─> OrderSyncHandler ─> ordersync.Syncer

# Router Middleware

Router-level middleware runs in order: Recoverer (panics become errors),
Retry (exponential backoff), optional Throttle, optional Deduplicator keyed
by event id.

# Logging

WatermillLogger adapts the global zerolog logger to watermill.LoggerAdapter.
*/
package eventprocessor
