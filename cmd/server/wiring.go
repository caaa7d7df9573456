// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum


package main

import (
	"github.com/tomtom215/decorum/internal/api"
	"github.com/tomtom215/decorum/internal/config"
	"github.com/tomtom215/decorum/internal/daynight"
	"github.com/tomtom215/decorum/internal/eventprocessor"
	"github.com/tomtom215/decorum/internal/imagesize"
	"github.com/tomtom215/decorum/internal/logging"
	"github.com/tomtom215/decorum/internal/ordersync"
	"github.com/tomtom215/decorum/internal/render"
	"github.com/tomtom215/decorum/internal/scene"
	"github.com/tomtom215/decorum/internal/store"
)

// The helpers below translate loaded configuration into component configs.

func loggingConfig(cfg *config.Config) logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = cfg.Logging.Level
	if cfg.Logging.Format != "" {
		lc.Format = cfg.Logging.Format
	}
	lc.Caller = cfg.Logging.Caller
	return lc
}

func middlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mw.RateLimitRequests = cfg.Security.RateLimitReqs
	mw.RateLimitWindow = cfg.Security.RateLimitWindow
	mw.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mw
}

func sceneConfig(cfg *config.Config) scene.Config {
	s := cfg.Scene
	return scene.Config{
		SnapThreshold:    s.SnapThreshold,
		BackgroundMargin: s.BackgroundMargin,
		BaseSize:         s.BaseSize,
		MinSize:          s.MinSize,
		AspectTolerance:  s.AspectTolerance,
		OffsetStep:       s.OffsetStep,
		OffsetMaxTries:   s.OffsetMaxTries,
		TapThreshold:     s.TapThreshold,
	}
}

func conversionConfig(cfg *config.Config) daynight.Config {
	return daynight.Config{
		InitialDelay: cfg.Conversion.InitialDelay,
		StepDuration: cfg.Conversion.StepDuration,
		SafetyNet:    cfg.Conversion.SafetyNet,
		TickInterval: cfg.Conversion.TickInterval,
	}
}

func registryConfig(cfg *config.Config) api.RegistryConfig {
	return api.RegistryConfig{
		MaxSessions:       cfg.Server.MaxSessions,
		IdleTimeout:       cfg.Server.SessionIdleTimeout,
		Scene:             sceneConfig(cfg),
		Conversion:        conversionConfig(cfg),
		OrderSyncDebounce: cfg.OrderSync.Debounce,
	}
}

func imagesConfig(cfg *config.Config) imagesize.Config {
	return imagesize.Config{
		FetchTimeout:  cfg.Images.FetchTimeout,
		MaxBytes:      cfg.Images.MaxBytes,
		CacheCapacity: cfg.Images.CacheCapacity,
		UserAgent:     cfg.Images.UserAgent,
	}
}

func renderConfig(cfg *config.Config) render.Config {
	return render.Config{
		DefaultPixelRatio: cfg.Export.DefaultPixelRatio,
		MaxPixelRatio:     cfg.Export.MaxPixelRatio,
		FetchConcurrency:  cfg.Export.FetchConcurrency,
	}
}

func storeConfig(cfg *config.Config) store.Config {
	return store.Config{
		Path:       cfg.Store.Path,
		InMemory:   cfg.Store.InMemory,
		TTL:        cfg.Store.TTL,
		GCInterval: cfg.Store.GCInterval,
	}
}

func routerConfig(cfg *config.Config) eventprocessor.RouterConfig {
	rc := eventprocessor.DefaultRouterConfig()
	rc.RetryMaxRetries = cfg.Events.RetryCount
	if cfg.Events.RetryInitialInterval > 0 {
		rc.RetryInitialInterval = cfg.Events.RetryInitialInterval
	}
	if cfg.Events.CloseTimeout > 0 {
		rc.CloseTimeout = cfg.Events.CloseTimeout
	}
	return rc
}

// newOrderSender returns nil when order sync is disabled.
func newOrderSender(cfg *config.Config) *ordersync.HTTPSender {
	if !cfg.OrderSync.Enabled {
		return nil
	}
	bc := ordersync.DefaultBreakerConfig()
	if cfg.OrderSync.BreakerMaxRequests > 0 {
		bc.MaxRequests = cfg.OrderSync.BreakerMaxRequests
	}
	if cfg.OrderSync.BreakerInterval > 0 {
		bc.Interval = cfg.OrderSync.BreakerInterval
	}
	if cfg.OrderSync.BreakerTimeout > 0 {
		bc.Timeout = cfg.OrderSync.BreakerTimeout
	}
	if cfg.OrderSync.BreakerFailureThreshold > 0 {
		bc.FailureThreshold = cfg.OrderSync.BreakerFailureThreshold
	}
	return ordersync.NewHTTPSender(cfg.OrderSync.URL, nil, cfg.OrderSync.Timeout, bc)
}
