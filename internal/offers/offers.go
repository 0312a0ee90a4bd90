// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package offers holds the controllers behind the offer screens: the create
// form, the filterable list and the editor. Controllers are independent of
// HTTP; handlers load per-browser state, call a controller operation and
// render the result.
package offers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"offerdesk/internal/models"
	"offerdesk/internal/offerapi"
)

var (
	// ErrSubmitInFlight is returned when a submission is attempted while a
	// previous one from the same form has not finished.
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	// ErrStale is returned by ListView.LoadOffers when a newer request was
	// issued before this one completed. The result must be discarded.
	ErrStale = errors.New("superseded by a newer request")

	// ErrMissingEditContext is returned when the editor is opened without
	// the offer and categories it needs.
	ErrMissingEditContext = errors.New("edit context requires an offer and its categories")

	// ErrOfferNotFound is returned when an offer id cannot be resolved.
	ErrOfferNotFound = errors.New("offer not found")
)

// CategorySource fetches the category reference list.
type CategorySource interface {
	Categories(ctx context.Context) ([]models.Category, error)
}

// Creator is the part of the offers API the create form uses.
type Creator interface {
	CategorySource
	CreateOffer(ctx context.Context, in offerapi.CreateRequest) (*offerapi.CreateResult, error)
}

// Lister is the part of the offers API the list view uses.
type Lister interface {
	CategorySource
	OffersByCategory(ctx context.Context, categoryID string) ([]models.Offer, error)
}

// Updater is the part of the offers API the editor uses.
type Updater interface {
	UpdateOffer(ctx context.Context, id string, body offerapi.UpdateRequest) error
}

// Sequencer issues monotonically increasing request generations so a
// response can be checked against the newest request.
type Sequencer interface {
	Next(ctx context.Context) (uint64, error)
	Latest(ctx context.Context) (uint64, error)
}

// Guard admits one submission at a time.
type Guard interface {
	// Acquire returns false when a submission is already running.
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// MemorySequencer is an in-process Sequencer.
type MemorySequencer struct {
	n atomic.Uint64
}

// Next issues a new generation.
func (s *MemorySequencer) Next(context.Context) (uint64, error) {
	return s.n.Add(1), nil
}

// Latest returns the newest issued generation.
func (s *MemorySequencer) Latest(context.Context) (uint64, error) {
	return s.n.Load(), nil
}

// MemoryGuard is an in-process Guard.
type MemoryGuard struct {
	mu   sync.Mutex
	busy bool
}

// Acquire claims the guard if it is free.
func (g *MemoryGuard) Acquire(context.Context) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return false, nil
	}
	g.busy = true
	return true, nil
}

// Release frees the guard.
func (g *MemoryGuard) Release(context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.busy = false
	return nil
}

// acquire claims g, treating a nil guard as always free.
func acquire(ctx context.Context, g Guard) (release func(), err error) {
	if g == nil {
		return func() {}, nil
	}
	ok, err := g.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSubmitInFlight
	}
	return func() {
		// The request context may already be cancelled; the guard must
		// still be released.
		_ = g.Release(context.WithoutCancel(ctx))
	}, nil
}
