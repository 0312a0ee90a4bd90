// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package offers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"offerdesk/internal/catalog"
	"offerdesk/internal/models"
	"offerdesk/internal/notify"
	"offerdesk/internal/offerapi"
)

// EditContext is what the editor opens with: the chosen offer and the
// category list shown alongside it.
type EditContext struct {
	Offer      *models.Offer     `json:"offer"`
	Categories []models.Category `json:"categories"`
}

// EditState is the editor's lifecycle position.
type EditState string

const (
	EditIdle       EditState = "idle"
	EditEditing    EditState = "editing"
	EditSubmitting EditState = "submitting"
	EditSuccess    EditState = "success"
)

// Editor holds a local copy of an offer and applies field changes to it
// until the copy is submitted. The offer in the EditContext is never
// modified.
type Editor struct {
	offer   models.Offer
	tags    string
	sel     catalog.Selection
	index   *catalog.Index
	state   EditState
	lastErr string
}

// NewEditor opens an editor for ec. The context must carry an offer with an
// id and a category list.
func NewEditor(ec EditContext) (*Editor, error) {
	if ec.Offer == nil || ec.Offer.ID == "" || ec.Categories == nil {
		return nil, ErrMissingEditContext
	}
	o := ec.Offer.Clone()
	return &Editor{
		offer: o,
		tags:  models.JoinTags(o.Tags),
		sel:   catalog.Selection{CategoryID: o.Category, SubcategoryID: o.SubCategory.String()},
		index: catalog.New(ec.Categories),
		state: EditIdle,
	}, nil
}

// Offer returns the edited copy with the pending tag text and category
// selection applied.
func (e *Editor) Offer() models.Offer {
	o := e.offer.Clone()
	o.Tags = models.ParseTags(e.tags)
	o.Category = e.sel.CategoryID
	o.SubCategory = models.ID(e.sel.SubcategoryID)
	return o
}

func (e *Editor) ID() string                    { return e.offer.ID }
func (e *Editor) Tags() string                  { return e.tags }
func (e *Editor) State() EditState              { return e.state }
func (e *Editor) LastError() string             { return e.lastErr }
func (e *Editor) Selection() catalog.Selection  { return e.sel }
func (e *Editor) Categories() []models.Category { return e.index.Categories() }

// Subcategories returns the options for the selected category.
func (e *Editor) Subcategories() []models.Subcategory {
	return e.sel.Options(e.index)
}

// ExpireDateValue is the expiry as shown in the date input, YYYY-MM-DD in
// UTC, or "" when the offer has none.
func (e *Editor) ExpireDateValue() string {
	if e.offer.ExpireDate == nil {
		return ""
	}
	return e.offer.ExpireDate.Date()
}

// ChangeField applies a change to one named field. valid_until and
// expireDate both address the expiry date; writing back the displayed date
// leaves the stored timestamp untouched.
func (e *Editor) ChangeField(name, value string) error {
	switch name {
	case "title":
		e.offer.Title = value
	case "description":
		e.offer.Description = value
	case "tags":
		e.tags = value
	case "promotionUrl":
		e.offer.PromotionURL = value
	case "country":
		if !models.IsKnownCountry(value) {
			return fmt.Errorf("unknown country %q", value)
		}
		e.offer.Country = value
	case "valid_until", "expireDate":
		value = strings.TrimSpace(value)
		if value == e.ExpireDateValue() {
			break
		}
		if value == "" {
			return fmt.Errorf("expiry date is required")
		}
		ts, err := models.TimestampFromDate(value)
		if err != nil {
			return fmt.Errorf("expiry date: %w", err)
		}
		e.offer.ExpireDate = &ts
	case "category":
		e.ChangeCategory(value)
	case "subCategory":
		return e.ChangeSubcategory(value)
	default:
		return fmt.Errorf("unknown field %q", name)
	}
	e.state = EditEditing
	return nil
}

// ChangeCategory switches the category and returns the new subcategory
// options. The subcategory is cleared and must be picked again.
func (e *Editor) ChangeCategory(id string) []models.Subcategory {
	e.state = EditEditing
	return e.sel.Select(e.index, id)
}

// ChangeSubcategory picks a subcategory of the current category.
func (e *Editor) ChangeSubcategory(id string) error {
	if err := e.sel.SelectSub(e.index, id); err != nil {
		return err
	}
	e.state = EditEditing
	return nil
}

// Submit sends the edited offer as one update scoped to its id. On success
// the editor ends in EditSuccess; on failure the user is notified and the
// editor returns to EditEditing with its changes intact.
func (e *Editor) Submit(ctx context.Context, api Updater, sink notify.Sink, guard Guard) error {
	if e.state == EditSubmitting {
		return ErrSubmitInFlight
	}
	release, err := acquire(ctx, guard)
	if err != nil {
		return err
	}
	defer release()

	e.state = EditSubmitting
	out := e.Offer()
	body, err := offerapi.NewUpdateRequest(out)
	if err == nil {
		err = api.UpdateOffer(ctx, out.ID, body)
	}
	if err != nil {
		slog.Error("update offer failed", "id", out.ID, "error", err)
		e.lastErr = offerapi.Message(err)
		e.state = EditEditing
		notify.Error(ctx, sink, "Error updating offer: "+e.lastErr)
		return err
	}

	slog.Info("offer updated", "id", out.ID)
	e.offer = out
	e.lastErr = ""
	e.state = EditSuccess
	notify.Success(ctx, sink, "Offer updated")
	return nil
}
