// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package offers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"offerdesk/internal/catalog"
	"offerdesk/internal/imaging"
	"offerdesk/internal/models"
	"offerdesk/internal/notify"
	"offerdesk/internal/offerapi"
	"offerdesk/internal/slug"
)

// ErrImageTooLarge is returned when a selected file exceeds the upload limit.
var ErrImageTooLarge = errors.New("image exceeds the upload limit")

// FormState is the per-browser state of the create form.
type FormState struct {
	Draft models.Draft         `json:"draft"`
	Image *models.PendingImage `json:"image,omitempty"`
}

// NewFormState returns an empty form with defaults applied.
func NewFormState() *FormState {
	return &FormState{Draft: models.NewDraft()}
}

// selection returns the draft's category pair.
func (st *FormState) selection() catalog.Selection {
	return catalog.Selection{CategoryID: st.Draft.Category, SubcategoryID: st.Draft.SubCategory}
}

// Subcategories returns the subcategory options for the current category.
func (st *FormState) Subcategories(idx *catalog.Index) []models.Subcategory {
	return st.selection().Options(idx)
}

// FormOptions tunes the create form.
type FormOptions struct {
	// KeepDraftOnError keeps the draft after a failed submission instead
	// of clearing the form.
	KeepDraftOnError bool
	MaxImageBytes    int64
	PreviewWidth     int
}

// FormController drives the create-offer form.
type FormController struct {
	api  Creator
	sink notify.Sink
	opts FormOptions
}

// NewFormController creates a form controller.
func NewFormController(api Creator, sink notify.Sink, opts FormOptions) *FormController {
	if opts.MaxImageBytes <= 0 {
		opts.MaxImageBytes = 10 << 20
	}
	if opts.PreviewWidth <= 0 {
		opts.PreviewWidth = imaging.PreviewMaxWidth
	}
	return &FormController{api: api, sink: sink, opts: opts}
}

// LoadCategories fetches the category list. On failure the user is
// notified and an empty index is returned along with the error.
func (c *FormController) LoadCategories(ctx context.Context) (*catalog.Index, error) {
	cats, err := c.api.Categories(ctx)
	if err != nil {
		slog.Error("fetch categories failed", "error", err)
		notify.Error(ctx, c.sink, "Error fetching categories: "+offerapi.Message(err))
		return catalog.New(nil), err
	}
	return catalog.New(cats), nil
}

// SelectCategory records the chosen category and returns the subcategories
// that may now be picked. Any chosen subcategory is cleared.
func (c *FormController) SelectCategory(st *FormState, idx *catalog.Index, categoryID string) []models.Subcategory {
	sel := st.selection()
	subs := sel.Select(idx, categoryID)
	st.Draft.Category, st.Draft.SubCategory = sel.CategoryID, sel.SubcategoryID
	return subs
}

// SelectSubcategory records the chosen subcategory.
func (c *FormController) SelectSubcategory(st *FormState, idx *catalog.Index, subcategoryID string) error {
	sel := st.selection()
	if err := sel.SelectSub(idx, subcategoryID); err != nil {
		return err
	}
	st.Draft.SubCategory = sel.SubcategoryID
	return nil
}

// SetImage reads a selected file, checks its type and size and stores it
// with a preview. A previous image is replaced.
func (c *FormController) SetImage(st *FormState, filename string, r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, c.opts.MaxImageBytes+1))
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > c.opts.MaxImageBytes {
		return fmt.Errorf("%w of %s", ErrImageTooLarge, humanize.IBytes(uint64(c.opts.MaxImageBytes)))
	}
	ct, err := imaging.DetectType(data)
	if err != nil {
		return err
	}
	preview, err := imaging.Preview(data, ct, c.opts.PreviewWidth)
	if err != nil {
		return fmt.Errorf("build preview: %w", err)
	}
	st.Image = &models.PendingImage{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: ct,
		Size:        int64(len(data)),
		PreviewURL:  preview,
		Data:        data,
	}
	return nil
}

// ClearImage drops the selected image.
func (c *FormController) ClearImage(st *FormState) {
	st.Image = nil
}

// Reset returns the form to its initial state.
func (c *FormController) Reset(st *FormState) {
	*st = *NewFormState()
}

// Validate checks the form without touching the network.
func (c *FormController) Validate(st *FormState, idx *catalog.Index) error {
	ve := &ValidationError{}
	structErrors(ve, st.Draft)
	d := st.Draft
	if d.Tags != "" && len(models.ParseTags(d.Tags)) == 0 {
		ve.add("tags", "Tags must contain at least one non-empty tag.")
	}
	if d.Country != "" && !models.IsKnownCountry(d.Country) {
		ve.add("country", "Country is not supported.")
	}
	if d.Category != "" && d.SubCategory != "" && idx.Len() > 0 && !st.selection().Valid(idx) {
		ve.add("subCategory", "Subcategory does not belong to the selected category.")
	}
	if st.Image == nil {
		ve.add("image", "Image is required.")
	}
	return ve.orNil()
}

// Submit validates the form and creates the offer. Only one submission may
// be in flight per guard. The outcome is reported through the sink; the
// form is cleared after success, and after failure unless KeepDraftOnError
// is set.
func (c *FormController) Submit(ctx context.Context, st *FormState, idx *catalog.Index, guard Guard) (*offerapi.CreateResult, error) {
	if err := c.Validate(st, idx); err != nil {
		return nil, err
	}

	release, err := acquire(ctx, guard)
	if err != nil {
		return nil, err
	}
	defer release()

	d := st.Draft
	req := offerapi.CreateRequest{
		Title:        d.Title,
		Description:  d.Description,
		ExpireDate:   d.ExpireDate,
		Tags:         models.ParseTags(d.Tags),
		Category:     d.Category,
		SubCategory:  d.SubCategory,
		Country:      d.Country,
		PromotionURL: d.PromotionURL,
		Filename:     slug.Filename(st.Image.Filename, st.Image.ContentType),
		ContentType:  st.Image.ContentType,
		File:         st.Image.Data,
	}

	res, err := c.api.CreateOffer(ctx, req)
	if err != nil {
		slog.Error("create offer failed", "title", d.Title, "error", err)
		var apiErr *offerapi.APIError
		if errors.As(err, &apiErr) || errors.Is(err, offerapi.ErrNoDocumentPath) {
			notify.Error(ctx, c.sink, "Operation failed: "+offerapi.Message(err))
		} else {
			notify.Error(ctx, c.sink, "Request failed: "+err.Error())
		}
		if !c.opts.KeepDraftOnError {
			c.Reset(st)
		}
		return nil, err
	}

	slog.Info("offer created", "id", res.ID, "title", d.Title)
	notify.Success(ctx, c.sink, "Success")
	c.Reset(st)
	return res, nil
}
