// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateKeyPrefix namespaces rate-limit counters in Valkey.
const rateKeyPrefix = "ratelimit:"

// RateLimiter limits requests per client IP with a fixed window counted in
// Valkey, so every server instance shares the same budget. Valkey errors
// let the request through.
type RateLimiter struct {
	client *redis.Client
	name   string
	limit  int64         // max requests per window
	window time.Duration // window length
	now    func() time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
// name separates the counters of limiters guarding different routes.
func NewRateLimiter(client *redis.Client, name string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		name:   name,
		limit:  int64(limit),
		window: window,
		now:    time.Now,
	}
}

// allow counts a request for key and reports whether it is within the limit.
func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	bucket := rl.now().UnixNano() / int64(rl.window)
	k := rateKeyPrefix + rl.name + ":" + key + ":" + strconv.FormatInt(bucket, 10)

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.Expire(ctx, k, rl.window)
		return nil
	})
	if err != nil {
		slog.Warn("rate limiter unavailable", "error", err)
		return true
	}
	return incr.Val() <= rl.limit
}

// Middleware returns an HTTP middleware that rate-limits by client IP.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.Context(), clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client's IP address, checking X-Forwarded-For
// and X-Real-IP headers for proxied requests.
func clientIP(r *http.Request) string {
	// Take the first (leftmost) address, the original client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.IndexByte(xff, ','); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
