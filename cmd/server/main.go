// Decorum - Decoration Designer and Scene Composition Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/decorum


package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/decorum/internal/api"
	"github.com/tomtom215/decorum/internal/config"
	"github.com/tomtom215/decorum/internal/eventprocessor"
	"github.com/tomtom215/decorum/internal/imagesize"
	"github.com/tomtom215/decorum/internal/logging"
	"github.com/tomtom215/decorum/internal/render"
	"github.com/tomtom215/decorum/internal/store"
	"github.com/tomtom215/decorum/internal/supervisor"
	"github.com/tomtom215/decorum/internal/supervisor/services"
	ws "github.com/tomtom215/decorum/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(loggingConfig(cfg))
	logging.Info().Str("environment", cfg.Server.Environment).Msg("Starting Decorum with supervisor tree")

	if cfg.HasWildcardCORS() && cfg.IsProduction() {
		logging.Warn().Msg("CORS allows every origin in production; set CORS_ORIGINS")
	}

	resolver := imagesize.NewResolver(imagesConfig(cfg), nil)

	renderer, err := render.New(renderConfig(cfg), resolver)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create renderer")
	}

	exports, err := store.Open(storeConfig(cfg))
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Store.Path).Msg("Failed to open export store")
	}

	deps := api.RegistryDeps{Resolver: resolver}
	var breaker api.BreakerStater
	if sender := newOrderSender(cfg); sender != nil {
		deps.Sender = sender
		breaker = sender
		logging.Info().Str("url", cfg.OrderSync.URL).Msg("Order sync enabled")
	}
	registry := api.NewRegistry(registryConfig(cfg), deps)

	wsHub := ws.NewHub()

	// The bus is built after the registry: its order-sync handler calls back
	// into the registry.
	components, err := eventprocessor.NewComponents(eventprocessor.ComponentsConfig{
		Bus:    eventprocessor.BusConfig{OutputChannelBuffer: cfg.Events.BufferSize},
		Router: routerConfig(cfg),
		Hub:    wsHub,
		Syncer: registry,
	}, eventprocessor.NewWatermillLogger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event components")
	}
	registry.SetPublisher(components.Bus)

	mwConfig := middlewareConfig(cfg)
	handler := api.NewHandler(api.HandlerDeps{
		Sessions:    registry,
		Renderer:    renderer,
		Exports:     exports,
		Hub:         wsHub,
		AllowOrigin: api.NewChiMiddleware(mwConfig).AllowsOrigin,
		Breaker:     breaker,
	})
	router := api.NewRouter(handler, mwConfig)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// Bridge zerolog to slog for sutureslog
	treeConfig := supervisor.DefaultTreeConfig()
	if cfg.Server.ShutdownTimeout > 0 {
		treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout + 5*time.Second
	}
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeConfig)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer
	tree.AddDataService(exports)
	tree.AddDataService(registry)

	// Messaging layer
	tree.AddMessagingService(services.NewWebSocketHubService(wsHub))
	tree.AddMessagingService(services.NewEventRouterService(components.Router))

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, addr, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		stop()
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	// The router has stopped, so nothing would consume further events.
	// Sessions flush pending order syncs, so they close before the bus.
	registry.SetPublisher(nil)
	registry.CloseAll()
	if err := components.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close event components")
	}
	if err := exports.Close(); err != nil {
		logging.Warn().Err(err).Msg("Failed to close export store")
	}

	logging.Info().Msg("Application stopped gracefully")
}
