// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum


/*
Package main is the entry point for the Decorum server.

Decorum hosts decoration designer sessions: a fixed 1200x600 logical scene
holding one background photo, freely placed decoration images and an
optional cartouche. Clients drive sessions over the REST API and receive
scene events over a per-session WebSocket.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("decorum")
	├── DataSupervisor ("data-layer")
	│   ├── Export store (BadgerDB value log GC)
	│   └── Session registry (idle reaper)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocket Hub (per-session fan-out)
	│   └── Event router (Watermill: WebSocket forwarding, order sync)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Image resolver: remote dimension probing with an LRU cache
 4. Renderer and export store
 5. Order sender (optional, behind a circuit breaker)
 6. Session registry, WebSocket hub and event pipeline
 7. HTTP server

# Configuration

Settings come from built-in defaults, an optional config.yaml (or the file
named by CONFIG_PATH) and environment variables, highest priority last.
Frequently used variables:

	HTTP_PORT                 listen port (default 8642)
	LOG_LEVEL, LOG_FORMAT     zerolog level and json|console output
	CORS_ORIGINS              comma separated allowed origins
	MAX_SESSIONS              open session cap, 0 for unlimited
	SESSION_IDLE_TIMEOUT      idle session reaping, 0 to disable
	CONVERSION_SAFETY_NET     day/night batch deadline
	ORDER_SYNC_ENABLED        deliver decoration lists to ORDER_SYNC_URL
	STORE_PATH                BadgerDB directory for rendered exports
	STORE_IN_MEMORY           keep exports in memory

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server gracefully, then sessions, the event router and the export store
are closed.
*/
package main
