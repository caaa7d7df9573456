// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

// Package ordersync forwards the decoration list to the order-sync
// collaborator.
//
// Changes are coalesced: a Syncer flushes at most once per debounce
// interval, never runs two flushes at once, and skips a flush whose
// structural hash (decoration id, name and owning image id) matches the last
// one delivered. Deliveries go through a circuit breaker so an unavailable
// collaborator is not hammered.
package ordersync
