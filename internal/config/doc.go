// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

/*
Package config provides centralized configuration management for Decorum.

Configuration is loaded in layers with Koanf v2: struct defaults, then an
optional YAML file, then environment variables. Load validates the result and
returns an immutable *Config.

# Configuration File

The file is found via CONFIG_PATH or the first existing entry of
DefaultConfigPaths:

	server:
	  port: 8642
	  environment: production
	conversion:
	  step_duration: 4s
	  safety_net: 13s
	order_sync:
	  enabled: true
	  url: https://orders.internal/api/decorations

# Environment Variables

Only mapped variables are read; everything else in the environment is
ignored. Frequently used:

  - HTTP_PORT / DECORUM_PORT, HTTP_HOST, ENVIRONMENT
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER
  - CONVERSION_INITIAL_DELAY, CONVERSION_STEP_DURATION, CONVERSION_SAFETY_NET
  - ORDER_SYNC_ENABLED, ORDER_SYNC_URL, ORDER_SYNC_DEBOUNCE
  - STORE_PATH, STORE_IN_MEMORY, STORE_TTL
  - EXPORT_DEFAULT_PIXEL_RATIO, EXPORT_MAX_PIXEL_RATIO

The full table lives in envMappings.
*/
package config
