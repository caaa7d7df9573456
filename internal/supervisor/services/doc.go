// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package services adapts designer components to suture.Service.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel.
  - WebSocketHubService: delegates to the hub's RunWithContext.
  - EventRouterService: runs the watermill session event router and stops
    the supervisor from restarting it after an unexpected exit.

The export store and the session registry implement suture.Service
themselves and are added to the tree directly.
*/
package services
