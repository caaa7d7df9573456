// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum

package config

import (
	"fmt"
	"math"
	"time"
)

// Validate checks that configuration values are present and within bounds.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
		c.validateScene,
		c.validateImages,
		c.validateConversion,
		c.validateOrderSync,
		c.validateEvents,
		c.validateStore,
		c.validateExport,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

// IsProduction returns true when running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment returns true when running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

var validEnvironments = map[string]bool{
	"":            true,
	"development": true,
	"staging":     true,
	"production":  true,
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if !validEnvironments[c.Server.Environment] {
		return fmt.Errorf("ENVIRONMENT must be one of: development, staging, production")
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("MAX_SESSIONS must not be negative")
	}
	if c.Server.SessionIdleTimeout < 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must not be negative")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS checks if CORS is configured with wildcard origins.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

func (c *Config) validateScene() error {
	s := c.Scene
	if !positive(s.BackgroundMargin) || s.BackgroundMargin > 1 {
		return fmt.Errorf("SCENE_BACKGROUND_MARGIN must be in (0, 1]")
	}
	if !positive(s.BaseSize) || !positive(s.MinSize) || s.MinSize > s.BaseSize {
		return fmt.Errorf("SCENE_MIN_SIZE must be positive and not exceed SCENE_BASE_SIZE")
	}
	if !positive(s.SnapThreshold) || !positive(s.TapThreshold) || !positive(s.OffsetStep) {
		return fmt.Errorf("scene snap, tap and offset distances must be positive")
	}
	if !positive(s.AspectTolerance) || s.AspectTolerance >= 1 {
		return fmt.Errorf("SCENE_ASPECT_TOLERANCE must be in (0, 1)")
	}
	if s.OffsetMaxTries < 0 {
		return fmt.Errorf("SCENE_OFFSET_MAX_TRIES must not be negative")
	}
	return nil
}

func (c *Config) validateImages() error {
	if c.Images.FetchTimeout <= 0 {
		return fmt.Errorf("IMAGE_FETCH_TIMEOUT must be positive")
	}
	if c.Images.MaxBytes <= 0 {
		return fmt.Errorf("IMAGE_MAX_BYTES must be positive")
	}
	if c.Images.CacheCapacity < 0 {
		return fmt.Errorf("IMAGE_CACHE_CAPACITY must not be negative")
	}
	return nil
}

func (c *Config) validateConversion() error {
	cv := c.Conversion
	if cv.InitialDelay < 0 || cv.StepDuration <= 0 || cv.TickInterval <= 0 {
		return fmt.Errorf("conversion initial delay must not be negative; step and tick must be positive")
	}
	if cv.SafetyNet <= 0 {
		return fmt.Errorf("CONVERSION_SAFETY_NET must be positive")
	}
	return nil
}

func (c *Config) validateOrderSync() error {
	if c.OrderSync.Debounce <= 0 {
		return fmt.Errorf("ORDER_SYNC_DEBOUNCE must be positive")
	}
	if !c.OrderSync.Enabled {
		return nil
	}
	if c.OrderSync.URL == "" {
		return fmt.Errorf("ORDER_SYNC_URL is required when ORDER_SYNC_ENABLED=true")
	}
	if err := validateHTTPURL(c.OrderSync.URL, "ORDER_SYNC_URL"); err != nil {
		return err
	}
	if c.OrderSync.Timeout <= 0 {
		return fmt.Errorf("ORDER_SYNC_TIMEOUT must be positive")
	}
	if c.OrderSync.BreakerFailureThreshold == 0 {
		return fmt.Errorf("ORDER_SYNC_BREAKER_FAILURE_THRESHOLD must be at least 1")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Events.BufferSize < 0 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must not be negative")
	}
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must not be negative")
	}
	return nil
}

func (c *Config) validateStore() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("STORE_TTL must not be negative")
	}
	return nil
}

func (c *Config) validateExport() error {
	e := c.Export
	if !positive(e.DefaultPixelRatio) || !positive(e.MaxPixelRatio) || e.DefaultPixelRatio > e.MaxPixelRatio {
		return fmt.Errorf("EXPORT_DEFAULT_PIXEL_RATIO must be positive and not exceed EXPORT_MAX_PIXEL_RATIO")
	}
	if e.FetchConcurrency < 1 {
		return fmt.Errorf("EXPORT_FETCH_CONCURRENCY must be at least 1")
	}
	return nil
}
