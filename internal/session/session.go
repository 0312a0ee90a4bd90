// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session provides Valkey-backed per-browser state. A browser is
// identified by a random cookie; everything the screens keep between
// requests (form drafts, the offer being edited, pending notices, request
// generations, submit locks) lives under keys derived from that id and
// expires with the session TTL.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "od_session"

	// DefaultTTL is how long session state lives in Valkey after its last write.
	DefaultTTL = 24 * time.Hour

	// keyPrefix namespaces session keys in Valkey to avoid collisions.
	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// Store manages session state in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store backed by the given Valkey client.
// secure marks the cookie Secure, for deployments behind TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

// Ensure returns the session ID carried by the request cookie, issuing a
// new ID and cookie when the request has none or a malformed one.
func (s *Store) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	if id := ID(r); id != "" {
		return id, nil
	}

	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
	return id, nil
}

// ID returns the well-formed session ID from the request cookie, or "".
func ID(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil || !validID(cookie.Value) {
		return ""
	}
	return cookie.Value
}

// Load decodes the value stored under name into v. It reports false when
// nothing is stored.
func (s *Store) Load(ctx context.Context, id, name string, v any) (bool, error) {
	payload, err := s.client.Get(ctx, key(id, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("session get %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return false, fmt.Errorf("session unmarshal %s: %w", name, err)
	}
	return true, nil
}

// Save stores v under name and resets its TTL.
func (s *Store) Save(ctx context.Context, id, name string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session marshal %s: %w", name, err)
	}
	if err := s.client.Set(ctx, key(id, name), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("session store %s: %w", name, err)
	}
	return nil
}

// Delete removes the value stored under name.
func (s *Store) Delete(ctx context.Context, id, name string) error {
	if err := s.client.Del(ctx, key(id, name)).Err(); err != nil {
		return fmt.Errorf("session delete %s: %w", name, err)
	}
	return nil
}

func key(id, name string) string {
	return keyPrefix + id + ":" + name
}

func validID(s string) bool {
	if len(s) != idLength*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
