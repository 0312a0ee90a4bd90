// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sequencer issues request generations for one screen of a session, so a
// slow response can be recognised as superseded by a newer request even
// when the two were served by different processes.
type Sequencer struct {
	store *Store
	key   string
}

// Sequencer returns the generation counter called name.
func (s *Store) Sequencer(id, name string) *Sequencer {
	return &Sequencer{store: s, key: key(id, "seq:"+name)}
}

// Next issues a new generation.
func (q *Sequencer) Next(ctx context.Context) (uint64, error) {
	var incr *redis.IntCmd
	_, err := q.store.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, q.key)
		p.Expire(ctx, q.key, q.store.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("sequence next: %w", err)
	}
	return uint64(incr.Val()), nil
}

// Latest returns the newest issued generation, 0 when none was issued.
func (q *Sequencer) Latest(ctx context.Context) (uint64, error) {
	n, err := q.store.client.Get(ctx, q.key).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("sequence latest: %w", err)
	}
	return n, nil
}

// DefaultLockTTL bounds how long a crashed submission can hold a guard.
const DefaultLockTTL = 2 * time.Minute

// Guard admits one submission at a time for one form of a session.
type Guard struct {
	store *Store
	key   string
	ttl   time.Duration
}

// Guard returns the submit lock called name. A ttl of zero uses
// DefaultLockTTL.
func (s *Store) Guard(id, name string, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Guard{store: s, key: key(id, "lock:"+name), ttl: ttl}
}

// Acquire claims the lock. It reports false when it is already held.
func (g *Guard) Acquire(ctx context.Context) (bool, error) {
	ok, err := g.store.client.SetNX(ctx, g.key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("guard acquire: %w", err)
	}
	return ok, nil
}

// Release frees the lock.
func (g *Guard) Release(ctx context.Context) error {
	if err := g.store.client.Del(ctx, g.key).Err(); err != nil {
		return fmt.Errorf("guard release: %w", err)
	}
	return nil
}
