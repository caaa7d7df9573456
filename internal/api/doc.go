// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package api exposes designer sessions over HTTP.

A session bundles one scene, the stage that scales it to the client's
container, the day/night controller bound to the scene and an optional
order syncer. The Registry owns sessions, caps their number and reaps idle
ones under the supervisor.

Routes live under /api/v1 and answer with the APIResponse envelope:

	POST   /sessions                                   open a session
	GET    /sessions/{sessionID}                       full state
	PUT    /sessions/{sessionID}/background            place the background
	POST   /sessions/{sessionID}/decorations           add a decoration
	POST   /sessions/{sessionID}/pointer               raw pointer events
	POST   /sessions/{sessionID}/conversion-status     status feed entry
	PUT    /sessions/{sessionID}/active-image          switch background
	POST   /sessions/{sessionID}/exports               render a PNG
	GET    /sessions/{sessionID}/ws                    event stream

Domain errors map onto HTTP statuses in errors.go; request bodies are
validated with go-playground/validator through the validation package.
Routing uses chi with go-chi/cors and go-chi/httprate.
*/
package api
