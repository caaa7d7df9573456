// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/decorum/config.yaml",
	"/etc/decorum/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8642,
			Host:               "0.0.0.0",
			Timeout:            30 * time.Second,
			ShutdownTimeout:    15 * time.Second,
			Environment:        "development",
			MaxSessions:        1000,
			SessionIdleTimeout: 2 * time.Hour,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     300,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Scene: SceneConfig{
			SnapThreshold:    50,
			BackgroundMargin: 0.96,
			BaseSize:         150,
			MinSize:          20,
			AspectTolerance:  0.01,
			TapThreshold:     5,
			OffsetStep:       10,
			OffsetMaxTries:   20,
		},
		Images: ImagesConfig{
			FetchTimeout:  10 * time.Second,
			MaxBytes:      8 << 20, // 8MB
			CacheCapacity: 0, // keep every resolved size
			UserAgent:     "decorum-imagesize/1.0",
		},
		// Mirrors the historical 13 second conversion window
		Conversion: ConversionConfig{
			InitialDelay: 500 * time.Millisecond,
			StepDuration: 4 * time.Second,
			SafetyNet:    13 * time.Second,
			TickInterval: 100 * time.Millisecond,
		},
		OrderSync: OrderSyncConfig{
			Enabled:                 false, // Order collaborator is optional
			URL:                     "",
			Debounce:                2 * time.Second,
			Timeout:                 10 * time.Second,
			BreakerMaxRequests:      1,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Events: EventsConfig{
			BufferSize:           256,
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         10 * time.Second,
		},
		Store: StoreConfig{
			Path:       "/data/exports",
			InMemory:   false,
			TTL:        24 * time.Hour,
			GCInterval: 10 * time.Minute,
		},
		Export: ExportConfig{
			DefaultPixelRatio: 2,
			MaxPixelRatio:     4,
			FetchConcurrency:  4,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":            "server.port",
	"decorum_port":         "server.port",
	"http_host":            "server.host",
	"http_timeout":         "server.timeout",
	"shutdown_timeout":     "server.shutdown_timeout",
	"environment":          "server.environment",
	"max_sessions":         "server.max_sessions",
	"session_idle_timeout": "server.session_idle_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Scene
	"scene_snap_threshold":    "scene.snap_threshold",
	"scene_background_margin": "scene.background_margin",
	"scene_base_size":         "scene.base_size",
	"scene_min_size":          "scene.min_size",
	"scene_aspect_tolerance":  "scene.aspect_tolerance",
	"scene_tap_threshold":     "scene.tap_threshold",
	"scene_offset_step":       "scene.offset_step",
	"scene_offset_max_tries":  "scene.offset_max_tries",

	// Images
	"image_fetch_timeout":  "images.fetch_timeout",
	"image_max_bytes":      "images.max_bytes",
	"image_cache_capacity": "images.cache_capacity",
	"image_user_agent":     "images.user_agent",

	// Conversion timeline
	"conversion_initial_delay": "conversion.initial_delay",
	"conversion_step_duration": "conversion.step_duration",
	"conversion_safety_net":    "conversion.safety_net",
	"conversion_tick_interval": "conversion.tick_interval",

	// Order sync
	"order_sync_enabled":                   "order_sync.enabled",
	"order_sync_url":                       "order_sync.url",
	"order_sync_debounce":                  "order_sync.debounce",
	"order_sync_timeout":                   "order_sync.timeout",
	"order_sync_breaker_max_requests":      "order_sync.breaker_max_requests",
	"order_sync_breaker_interval":          "order_sync.breaker_interval",
	"order_sync_breaker_timeout":           "order_sync.breaker_timeout",
	"order_sync_breaker_failure_threshold": "order_sync.breaker_failure_threshold",

	// Event bus
	"events_buffer_size":            "events.buffer_size",
	"events_retry_count":            "events.retry_count",
	"events_retry_initial_interval": "events.retry_initial_interval",
	"events_close_timeout":          "events.close_timeout",

	// Export store
	"store_path":        "store.path",
	"store_in_memory":   "store.in_memory",
	"store_ttl":         "store.ttl",
	"store_gc_interval": "store.gc_interval",

	// Export rendering
	"export_default_pixel_ratio": "export.default_pixel_ratio",
	"export_max_pixel_ratio":     "export.max_pixel_ratio",
	"export_fetch_concurrency":   "export.fetch_concurrency",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - ORDER_SYNC_URL -> order_sync.url
//   - CONVERSION_SAFETY_NET -> conversion.safety_net
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped keys are skipped so random environment variables
	// cannot pollute config
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when swapping configuration.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
