// StreamVault - Signed Media Delivery and View Analytics Backend
// Copyright 2026 The StreamVault Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/streamvault/streamvault

// Package main is the entry point for the StreamVault server.
//
// StreamVault is a self-hosted media delivery backend. Admins upload media
// assets and mint short-lived HMAC-signed streaming links; viewers stream
// through those links behind a per-client sliding-window rate limiter, and
// every successful stream is recorded in an append-only view log that feeds
// cached per-asset analytics.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, config file, environment (Koanf v2)
//  2. Store: embedded Badger database for the catalog, view log, and accounts
//  3. Analytics cache: Redis behind a circuit breaker; disabled when absent
//  4. Rate limiter: in-process sliding window with a background sweeper
//  5. HTTP server: REST API plus the public signed-link streaming endpoint
//
// Shutdown on SIGINT/SIGTERM is graceful: the listener stops accepting new
// connections, in-flight requests get a drain window, then the store closes.
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

	"github.com/streamvault/streamvault/internal/analytics"
	"github.com/streamvault/streamvault/internal/api"
	"github.com/streamvault/streamvault/internal/auth"
	"github.com/streamvault/streamvault/internal/config"
	"github.com/streamvault/streamvault/internal/logging"
	"github.com/streamvault/streamvault/internal/ratelimit"
	"github.com/streamvault/streamvault/internal/signing"
	"github.com/streamvault/streamvault/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, so this uses the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("storage_dir", cfg.Storage.Dir).
		Bool("rate_limit_disabled", cfg.RateLimit.Disabled).
		Msg("Starting StreamVault")

	if err := os.MkdirAll(cfg.Storage.Dir, 0o750); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create media storage directory")
	}

	st, err := store.Open(cfg.Database.Path, cfg.Database.InMemory)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()
	logging.Info().Msg("Store opened")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A missing or unreachable Redis disables caching; it never blocks
	// startup.
	cache := analytics.NewCache(cfg.Cache.RedisURL, cfg.Cache.TTL, cfg.Cache.Timeout)
	if cache.Enabled() {
		logging.Info().Msg("Analytics cache enabled")
	} else {
		logging.Warn().Msg("Analytics cache disabled, snapshots recomputed per request")
	}

	limiter := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	limiter.StartSweeper(ctx, cfg.RateLimit.SweepInterval)

	handler := api.NewHandler(
		cfg,
		st,
		signing.New(cfg.Signing.Secret),
		limiter,
		analytics.NewService(cache, st),
		auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverErr <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed, forcing close")
		server.Close()
	}

	logging.Info().Msg("Shutdown complete")
}
