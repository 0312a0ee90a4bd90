// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Offers API
	APIURL     string
	APITimeout time.Duration
	APIRetries uint

	// Valkey (Redis-compatible cache and session store)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Behaviour
	CategoryCacheTTL time.Duration
	MaxUploadBytes   int64
	KeepDraftOnError bool
	WriteRateLimit   int // write requests per client per minute
}

// Load reads configuration from the environment, after loading a .env
// file from the working directory when one exists. Variables already set
// in the environment win over .env entries. Returns an error if a value is
// malformed or unsafe for production.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	} else if err == nil {
		slog.Debug("loaded .env")
	}

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		APIURL: envOrDefault("OFFERS_API_URL", "http://localhost:80"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
	}

	var err error
	if cfg.APITimeout, err = durationEnv("OFFERS_API_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	retries, err := intEnv("OFFERS_API_RETRIES", 3)
	if err != nil {
		return nil, err
	}
	if retries < 1 {
		return nil, fmt.Errorf("OFFERS_API_RETRIES must be at least 1, got %d", retries)
	}
	cfg.APIRetries = uint(retries)

	if cfg.CategoryCacheTTL, err = durationEnv("CATEGORY_CACHE_TTL", time.Minute); err != nil {
		return nil, err
	}
	maxMB, err := intEnv("MAX_UPLOAD_MB", 10)
	if err != nil {
		return nil, err
	}
	if maxMB < 1 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be at least 1, got %d", maxMB)
	}
	cfg.MaxUploadBytes = int64(maxMB) << 20

	if cfg.KeepDraftOnError, err = boolEnv("OFFERDESK_KEEP_DRAFT_ON_ERROR", false); err != nil {
		return nil, err
	}
	if cfg.WriteRateLimit, err = intEnv("WRITE_RATE_LIMIT", 30); err != nil {
		return nil, err
	}

	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("OFFERS_API_URL must be an absolute URL, got %q", cfg.APIURL)
	}

	if cfg.Env == "production" {
		if isLocalhost(u.Hostname()) {
			return nil, fmt.Errorf("OFFERS_API_URL must be set in production")
		}
	}

	return cfg, nil
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProd returns true if the application is running in production mode.
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

func isLocalhost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, v)
	}
	return d, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean, got %q", key, v)
	}
	return b, nil
}
