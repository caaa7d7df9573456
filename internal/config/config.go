// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package config

import "time"

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Scene      SceneConfig      `koanf:"scene"`
	Images     ImagesConfig     `koanf:"images"`
	Conversion ConversionConfig `koanf:"conversion"`
	OrderSync  OrderSyncConfig  `koanf:"order_sync"`
	Events     EventsConfig     `koanf:"events"`
	Store      StoreConfig      `koanf:"store"`
	Export     ExportConfig     `koanf:"export"`
}

// ServerConfig holds HTTP server and session registry settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"

	// MaxSessions caps concurrently open designer sessions. Zero is unlimited.
	MaxSessions int `koanf:"max_sessions"`
	// SessionIdleTimeout closes sessions untouched for this long. Zero disables reaping.
	SessionIdleTimeout time.Duration `koanf:"session_idle_timeout"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// SceneConfig holds canvas tuning in logical units. The logical scene
// itself is fixed at 1200x600.
type SceneConfig struct {
	SnapThreshold    float64 `koanf:"snap_threshold"`
	BackgroundMargin float64 `koanf:"background_margin"`
	BaseSize         float64 `koanf:"base_size"`
	MinSize          float64 `koanf:"min_size"`
	AspectTolerance  float64 `koanf:"aspect_tolerance"`
	TapThreshold     float64 `koanf:"tap_threshold"`
	OffsetStep       float64 `koanf:"offset_step"`
	OffsetMaxTries   int     `koanf:"offset_max_tries"`
}

// ImagesConfig controls the image dimension resolver. A zero CacheCapacity
// keeps every resolved size for the life of the process.
type ImagesConfig struct {
	FetchTimeout  time.Duration `koanf:"fetch_timeout"`
	MaxBytes      int64         `koanf:"max_bytes"`
	CacheCapacity int           `koanf:"cache_capacity"`
	UserAgent     string        `koanf:"user_agent"`
}

// ConversionConfig holds the day/night batch timeline durations.
type ConversionConfig struct {
	InitialDelay time.Duration `koanf:"initial_delay"`
	StepDuration time.Duration `koanf:"step_duration"`
	SafetyNet    time.Duration `koanf:"safety_net"`
	TickInterval time.Duration `koanf:"tick_interval"`
}

// OrderSyncConfig controls delivery of decoration lists to the order collaborator.
type OrderSyncConfig struct {
	Enabled  bool          `koanf:"enabled"`
	URL      string        `koanf:"url"`
	Debounce time.Duration `koanf:"debounce"`
	Timeout  time.Duration `koanf:"timeout"`

	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// EventsConfig controls the in-process scene event bus.
type EventsConfig struct {
	BufferSize           int64         `koanf:"buffer_size"`
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// StoreConfig controls the BadgerDB export store.
type StoreConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	TTL        time.Duration `koanf:"ttl"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// ExportConfig controls PNG snapshot rendering.
type ExportConfig struct {
	DefaultPixelRatio float64 `koanf:"default_pixel_ratio"`
	MaxPixelRatio     float64 `koanf:"max_pixel_ratio"`
	FetchConcurrency  int     `koanf:"fetch_concurrency"`
}

// Load reads configuration using the layered Koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
