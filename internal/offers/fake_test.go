// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package offers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"sync"
	"testing"

	"offerdesk/internal/models"
	"offerdesk/internal/offerapi"
)

// fakeAPI records calls and returns canned results.
type fakeAPI struct {
	mu sync.Mutex

	categories    []models.Category
	categoriesErr error
	offers        map[string][]models.Offer
	offersErr     error
	createResult  *offerapi.CreateResult
	createErr     error
	updateErr     error

	// gate, when set, blocks OffersByCategory for the named filter until
	// the channel is closed.
	gate map[string]chan struct{}

	creates []offerapi.CreateRequest
	updates []updateCall
	lists   []string
}

type updateCall struct {
	ID   string
	Body offerapi.UpdateRequest
}

func (f *fakeAPI) Categories(context.Context) ([]models.Category, error) {
	return f.categories, f.categoriesErr
}

func (f *fakeAPI) OffersByCategory(ctx context.Context, categoryID string) ([]models.Offer, error) {
	f.mu.Lock()
	f.lists = append(f.lists, categoryID)
	ch := f.gate[categoryID]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
	if f.offersErr != nil {
		return nil, f.offersErr
	}
	if categoryID == "" {
		var all []models.Offer
		for _, list := range f.offers {
			all = append(all, list...)
		}
		return all, nil
	}
	return f.offers[categoryID], nil
}

func (f *fakeAPI) CreateOffer(_ context.Context, in offerapi.CreateRequest) (*offerapi.CreateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, in)
	return f.createResult, f.createErr
}

func (f *fakeAPI) UpdateOffer(_ context.Context, id string, body offerapi.UpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{ID: id, Body: body})
	return f.updateErr
}

// testCategories is the Food/Travel fixture.
func testCategories() []models.Category {
	return []models.Category{
		{ID: "c1", Name: "Food", SubCategoryList: []models.Subcategory{
			{ID: "s1", Title: "Pizza"},
			{ID: "s2", Title: "Sushi"},
		}},
		{ID: "c2", Name: "Travel", SubCategoryList: []models.Subcategory{
			{ID: "s3", Title: "Flights"},
		}},
	}
}

// sharedSubcategoryIDs returns two categories whose subcategories use the
// same id.
func sharedSubcategoryIDs() []models.Category {
	return []models.Category{
		{ID: "c1", Name: "Food", SubCategoryList: []models.Subcategory{{ID: "1", Title: "Pizza"}}},
		{ID: "c2", Name: "Travel", SubCategoryList: []models.Subcategory{{ID: "1", Title: "Flights"}}},
	}
}

// pngBytes encodes a blank w x h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// bodyString decodes a string field of an update body; "" when it is absent or
// not a string.
func bodyString(u offerapi.UpdateRequest, key string) string {
	var s string
	_ = json.Unmarshal(u[key], &s)
	return s
}
