// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package scene owns the state of one designer canvas.

A State holds the active background image, the ordered decoration list
(later index is drawn on top), the selection, the snap zones, the zone-edit
flag, the day/night mode flag and the cartouche overlay. Every mutation goes
through a named operation on State; no field is written from outside. Each
operation runs under one lock, collects the events it raises and the image
loads it needs, and dispatches both after the lock is released, so event
sinks may read the State and image resolvers may call back into it.

Events carry a per-scene sequence number assigned under the lock, and the
sink receives them in that order even when operations run concurrently. A
sink must not synchronously mutate the scene that raised the event.

# Coordinates

All positions and sizes are logical scene units (1200x600). Decorations and
backgrounds are center-anchored; backgrounds always sit at the scene center.

# Images

Natural image sizes arrive asynchronously from an ImageResolver. A result is
applied only when the requesting entity still exists and still points at the
requested URL. Decorations are first sized with geometry.FitWithBaseSize and
afterwards kept within 1% of their natural aspect ratio. Each correction is
guarded by a hash of the (natural size, current size) pair it was computed
for, so a correction is never applied twice for the same pair. A failed load
marks the entity ImageFailed and renderers draw a placeholder at its bounds.

# Events

The State raises decoration_added, decoration_removed, decoration_updated,
background_image_removed and background_image_required, plus
background_image_set, selection_changed, decoration_order_changed,
cartouche_changed and mode_changed.
*/
package scene
