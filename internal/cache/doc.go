// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package cache provides the in-memory caches used by the designer service.

# Overview

The package provides:
  - LRU: a thread-safe, capacity-bounded least-recently-used cache with
    optional TTL and O(1) Get/Add/Remove
  - GenerateKey: compact structural keys (sha256 over JSON) for coalescing
    values that are equal field-by-field

# Image Sizes

The image dimension resolver memoizes natural sizes by URL in an LRU with a
zero TTL. A zero TTL never expires entries, so a resolved URL stays cached for
the lifetime of the process unless it is evicted by capacity:

	sizes := cache.NewLRU[geometry.Size](4096, 0)
	sizes.Add(url, size)
	if s, ok := sizes.Get(url); ok {
	    // no network fetch
	}

# Structural Keys

Order sync compares successive decoration lists by structural key instead of
deep equality:

	key := cache.GenerateKey("order", lines)

# Thread Safety

All LRU operations take an internal mutex and are safe for concurrent use.
*/
package cache
