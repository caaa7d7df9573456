// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

// Package daynight tracks background conversion and the global day/night
// mode.
//
// Each uploaded source image moves through pending, converting and a
// terminal state (complete, failed or unavailable) and never moves
// backwards. Reports from the conversion collaborator are the primary
// completion signal. A batch timeline animates the images one after another
// and, once its safety-net deadline passes, marks whatever is still
// incomplete as complete. All timers run on a clock.Scheduler so tests can
// step through a timeline with clock.Manual.
package daynight
