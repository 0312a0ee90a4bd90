// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the offerdesk console.
// It loads configuration, connects to Valkey, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"offerdesk/internal/cache"
	"offerdesk/internal/config"
	"offerdesk/internal/handlers"
	"offerdesk/internal/middleware"
	"offerdesk/internal/offerapi"
	"offerdesk/internal/render"
	"offerdesk/internal/router"
	"offerdesk/internal/session"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from the environment and .env.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if cfg.IsProd() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to Valkey (sessions, category cache, rate limits).
	ctx := context.Background()
	valkeyClient, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// In non-development environments, mark cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	api := offerapi.New(offerapi.Config{
		BaseURL:  cfg.APIURL,
		Timeout:  cfg.APITimeout,
		Attempts: cfg.APIRetries,
	})
	if cfg.CategoryCacheTTL > 0 {
		api.WithCategoryCache(cache.NewCategoryCache(valkeyClient, cfg.CategoryCacheTTL))
	}
	slog.Info("offers api client ready",
		"base_url", api.BaseURL(),
		"timeout", cfg.APITimeout,
		"attempts", cfg.APIRetries,
		"category_cache_ttl", cfg.CategoryCacheTTL,
	)

	offers := handlers.NewOffers(renderer, sessionStore, api, handlers.Options{
		MaxUploadBytes:   cfg.MaxUploadBytes,
		KeepDraftOnError: cfg.KeepDraftOnError,
	})

	var writeLimiter *middleware.RateLimiter
	if cfg.WriteRateLimit > 0 {
		writeLimiter = middleware.NewRateLimiter(valkeyClient, "write", cfg.WriteRateLimit, time.Minute)
	}

	r := router.New(sessionStore, writeLimiter, offers, secureCookies)

	// WriteTimeout must cover an upstream call at its full timeout.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.APITimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
