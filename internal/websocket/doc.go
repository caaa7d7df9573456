// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package websocket pushes designer session events to browser clients.

Each Client watches exactly one session. The Hub groups clients by session
and delivers a frame only to the clients of the session it is addressed to.
Frames are raw JSON envelopes produced by the event pipeline, so the hub
never re-encodes them.

A slow client whose queue fills up is disconnected instead of blocking the
hub. Clients may send {"type":"ping"} and receive {"type":"pong"}.

The hub runs under the supervisor via RunWithContext; cancellation closes
every client.
*/
package websocket
