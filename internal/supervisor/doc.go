// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package supervisor runs the long-lived parts of the designer service under
a suture v4 supervision tree.

	decorum (root)
	├── data-layer
	│   ├── export-store      (badger value-log GC)
	│   └── session-reaper    (closes idle designer sessions)
	├── messaging-layer
	│   ├── websocket-hub
	│   └── event-router      (watermill router over the session bus)
	└── api-layer
	    └── http-server

Each layer restarts its own services with exponential backoff; a crash in
one layer leaves the others running. Supervisor events are logged through
sutureslog onto the zerolog backend via logging.NewSlogLogger.

Service wrappers that adapt components to suture.Service live in the
services subpackage.
*/
package supervisor
