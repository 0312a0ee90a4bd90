// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"offerdesk/internal/notify"
)

// flashKey holds the notices queued for the next rendered page.
const flashKey = "flashes"

// Flashes is a per-session notice queue. It implements notify.Sink, so
// controller notices survive a redirect and are shown on the next page.
type Flashes struct {
	store *Store
	id    string
}

// Flashes returns the notice queue of a session.
func (s *Store) Flashes(id string) *Flashes {
	return &Flashes{store: s, id: id}
}

// Notify queues a notice. Failures are logged; the notice is dropped.
func (f *Flashes) Notify(ctx context.Context, n notify.Notice) {
	b, err := json.Marshal(n)
	if err != nil {
		slog.Error("flash marshal failed", "error", err)
		return
	}
	k := key(f.id, flashKey)
	_, err = f.store.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, k, b)
		p.Expire(ctx, k, f.store.ttl)
		return nil
	})
	if err != nil {
		slog.Error("flash store failed", "level", n.Level, "message", n.Message, "error", err)
	}
}

// Pop returns and clears the queued notices, oldest first.
func (f *Flashes) Pop(ctx context.Context) ([]notify.Notice, error) {
	k := key(f.id, flashKey)
	var lr *redis.StringSliceCmd
	_, err := f.store.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		lr = p.LRange(ctx, k, 0, -1)
		p.Del(ctx, k)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("flash pop: %w", err)
	}

	raw := lr.Val()
	out := make([]notify.Notice, 0, len(raw))
	for _, r := range raw {
		var n notify.Notice
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			slog.Warn("dropping malformed flash", "error", err)
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
