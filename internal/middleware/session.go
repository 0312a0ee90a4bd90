// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"offerdesk/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the browser session ID.
	SessionKey contextKey = "session"
)

// LoadSession makes sure every request belongs to a browser session,
// issuing the cookie on first visit, and stores the session ID in the
// request context. Downstream handlers read it via SessionFromCtx().
func LoadSession(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := store.Ensure(w, r)
			if err != nil {
				slog.Error("session ensure failed", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), SessionKey, id)))
		})
	}
}

// SessionFromCtx returns the session ID stored by LoadSession, or "".
func SessionFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(SessionKey).(string)
	return id
}
