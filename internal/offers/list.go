// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package offers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"offerdesk/internal/catalog"
	"offerdesk/internal/models"
	"offerdesk/internal/notify"
	"offerdesk/internal/offerapi"
)

// OfferView is one offer prepared for display.
type OfferView struct {
	Offer        models.Offer
	Expires      string    // YYYY-MM-DD in UTC, "" when the offer has no expiry
	ExpiresAt    time.Time // zero when the offer has no expiry
	Tags         string
	CategoryName string
}

// NewOfferView prepares an offer for display.
func NewOfferView(o models.Offer, idx *catalog.Index) OfferView {
	v := OfferView{
		Offer:        o,
		Tags:         strings.Join(o.Tags, ", "),
		CategoryName: idx.Name(o.Category),
	}
	if o.ExpireDate != nil {
		v.Expires = o.ExpireDate.Date()
		v.ExpiresAt = o.ExpireDate.Time()
	}
	return v
}

// Expired reports whether the offer's expiry lies before now.
func (v OfferView) Expired(now time.Time) bool {
	return !v.ExpiresAt.IsZero() && v.ExpiresAt.Before(now)
}

// ListResult is everything the list screen renders.
type ListResult struct {
	Filter     string
	Categories *catalog.Index
	Offers     []OfferView
}

// ListView drives the offer list with its category filter.
type ListView struct {
	api  Lister
	sink notify.Sink
	seq  Sequencer
}

// NewListView creates a list view. A nil sequencer gets an in-process one.
func NewListView(api Lister, sink notify.Sink, seq Sequencer) *ListView {
	if seq == nil {
		seq = &MemorySequencer{}
	}
	return &ListView{api: api, sink: sink, seq: seq}
}

// LoadCategories fetches the filter options. On failure the user is
// notified and an empty index is returned.
func (v *ListView) LoadCategories(ctx context.Context) *catalog.Index {
	cats, err := v.api.Categories(ctx)
	if err != nil {
		slog.Error("fetch categories failed", "error", err)
		notify.Error(ctx, v.sink, "Error fetching categories: "+offerapi.Message(err))
		return catalog.New(nil)
	}
	return catalog.New(cats)
}

// LoadOffers fetches the offers for a filter; "" means all categories.
// Each call takes a new generation, and a result that completes after a
// newer call was issued is discarded with ErrStale. A fetch failure
// notifies the user and yields an empty list.
func (v *ListView) LoadOffers(ctx context.Context, filter string) ([]models.Offer, error) {
	gen, err := v.seq.Next(ctx)
	if err != nil {
		return nil, err
	}

	list, fetchErr := v.api.OffersByCategory(ctx, filter)

	latest, err := v.seq.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if latest != gen {
		slog.Debug("discarding stale offer list", "filter", filter, "generation", gen, "latest", latest)
		return nil, ErrStale
	}

	if fetchErr != nil {
		if errors.Is(fetchErr, context.Canceled) {
			return nil, fetchErr
		}
		slog.Error("fetch offers failed", "filter", filter, "error", fetchErr)
		notify.Error(ctx, v.sink, "Error fetching offers: "+offerapi.Message(fetchErr))
		return []models.Offer{}, nil
	}
	if list == nil {
		list = []models.Offer{}
	}
	return list, nil
}

// Load fetches categories and offers concurrently and prepares the screen.
func (v *ListView) Load(ctx context.Context, filter string) (*ListResult, error) {
	var (
		wg     sync.WaitGroup
		idx    *catalog.Index
		offers []models.Offer
		err    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		idx = v.LoadCategories(ctx)
	}()
	go func() {
		defer wg.Done()
		offers, err = v.LoadOffers(ctx, filter)
	}()
	wg.Wait()
	if err != nil {
		return nil, err
	}

	res := &ListResult{Filter: filter, Categories: idx, Offers: make([]OfferView, 0, len(offers))}
	for _, o := range offers {
		res.Offers = append(res.Offers, NewOfferView(o, idx))
	}
	return res, nil
}

// SelectForEdit packages an offer and the categories into the context the
// editor opens with. The offer is copied so later edits cannot reach back
// into the list.
func SelectForEdit(o models.Offer, categories []models.Category) EditContext {
	c := o.Clone()
	cats := make([]models.Category, len(categories))
	copy(cats, categories)
	return EditContext{Offer: &c, Categories: cats}
}

// Lookup resolves an offer by id from the unfiltered list, for opening the
// editor without a prior selection.
func (v *ListView) Lookup(ctx context.Context, id string) (EditContext, error) {
	cats, err := v.api.Categories(ctx)
	if err != nil {
		return EditContext{}, err
	}
	list, err := v.api.OffersByCategory(ctx, "")
	if err != nil {
		return EditContext{}, err
	}
	for _, o := range list {
		if o.ID == id {
			return SelectForEdit(o, cats), nil
		}
	}
	return EditContext{}, ErrOfferNotFound
}
