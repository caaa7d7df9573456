// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

// Package imagesize resolves the natural pixel dimensions of remote images.
//
// A Resolver fetches only as many bytes as the image decoder needs to read
// the header (image.DecodeConfig), memoizes successful results by URL in an
// LRU cache, and collapses concurrent requests for the same URL into one
// fetch with singleflight. JPEG, PNG, GIF, WebP, BMP and TIFF are supported,
// as are inline data: URLs.
//
// Failures never propagate as errors to the scene: Resolve returns ok=false,
// logs the sanitized URL, and callers keep the size they already had.
package imagesize
