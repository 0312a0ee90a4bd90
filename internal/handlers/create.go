// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"offerdesk/internal/catalog"
	"offerdesk/internal/imaging"
	"offerdesk/internal/middleware"
	"offerdesk/internal/models"
	"offerdesk/internal/offerapi"
	"offerdesk/internal/offers"
	"offerdesk/internal/render"
	"offerdesk/internal/session"
)

// multipartOverhead is the room left for form fields next to the image.
const multipartOverhead = 64 << 10

// CreateForm renders the create-offer form with the session's draft.
func (h *Offers) CreateForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)
	ctrl := h.formController(sid)
	st := h.loadForm(ctx, sid)
	idx, _ := ctrl.LoadCategories(ctx)

	h.renderForm(w, r, http.StatusOK, st, idx, map[string]string{})
}

// CreateSubmit handles the multipart create form.
func (h *Offers) CreateSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)
	ctrl := h.formController(sid)
	st := h.loadForm(ctx, sid)
	errs := map[string]string{}

	if err := h.parseUpload(w, r); err != nil {
		errs["image"] = h.imageMessage(err)
		idx, _ := ctrl.LoadCategories(ctx)
		h.renderForm(w, r, http.StatusRequestEntityTooLarge, st, idx, errs)
		return
	}

	st.Draft = draftFromForm(r)
	if msg, ok := h.readImage(r, ctrl, st); !ok {
		errs["image"] = msg
	}
	for field, msg := range checkDraftLengths(st.Draft) {
		errs[field] = msg
	}

	idx, _ := ctrl.LoadCategories(ctx)
	if len(errs) > 0 {
		h.saveForm(ctx, sid, st)
		h.renderForm(w, r, http.StatusUnprocessableEntity, st, idx, errs)
		return
	}

	status := http.StatusOK
	res, err := ctrl.Submit(ctx, st, idx, h.sessions.Guard(sid, createGuard, session.DefaultLockTTL))
	switch {
	case err == nil:
		slog.Info("offer created", "id", res.ID, "path", res.Path)
	case errors.Is(err, offers.ErrSubmitInFlight):
		h.warn(ctx, sid, "This offer is already being submitted.")
		status = http.StatusConflict
	default:
		if ve, ok := offers.AsValidation(err); ok {
			errs = validationMessages(ve)
			status = http.StatusUnprocessableEntity
		}
	}

	h.saveForm(ctx, sid, st)
	h.renderForm(w, r, status, st, idx, errs)
}

// CreateImage stores the selected image and returns its preview.
func (h *Offers) CreateImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)
	ctrl := h.formController(sid)
	st := h.loadForm(ctx, sid)
	errs := map[string]string{}

	if err := h.parseUpload(w, r); err != nil {
		errs["image"] = h.imageMessage(err)
	} else if msg, ok := h.readImage(r, ctrl, st); !ok {
		errs["image"] = msg
	} else if st.Image == nil {
		errs["image"] = "Select an image file."
	}

	h.saveForm(ctx, sid, st)
	h.fragment(w, r, "image_preview", map[string]any{"Form": st, "Errors": errs})
}

// ClearImage drops the selected image.
func (h *Offers) ClearImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)
	st := h.loadForm(ctx, sid)
	h.formController(sid).ClearImage(st)

	h.saveForm(ctx, sid, st)
	h.fragment(w, r, "image_preview", map[string]any{"Form": st, "Errors": map[string]string{}})
}

// CreateReset clears the draft and the image.
func (h *Offers) CreateReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)
	ctrl := h.formController(sid)

	if err := h.sessions.Delete(ctx, sid, formKey); err != nil {
		slog.Error("delete form state failed", "error", err)
	}
	idx, _ := ctrl.LoadCategories(ctx)
	h.renderForm(w, r, http.StatusOK, offers.NewFormState(), idx, map[string]string{})
}

// Subcategories records the chosen category and returns the subcategory
// select for it.
func (h *Offers) Subcategories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)
	ctrl := h.formController(sid)
	st := h.loadForm(ctx, sid)
	idx, _ := ctrl.LoadCategories(ctx)

	subs := ctrl.SelectCategory(st, idx, strings.TrimSpace(r.URL.Query().Get("category")))
	h.saveForm(ctx, sid, st)

	h.fragment(w, r, "subcategory_select", map[string]any{
		"Subcategories": subs,
		"SelectedSub":   st.Draft.SubCategory,
	})
}

func (h *Offers) formController(sid string) *offers.FormController {
	return offers.NewFormController(h.api, h.sink(sid), offers.FormOptions{
		KeepDraftOnError: h.opts.KeepDraftOnError,
		MaxImageBytes:    h.opts.MaxUploadBytes,
	})
}

func (h *Offers) renderForm(w http.ResponseWriter, r *http.Request, status int, st *offers.FormState, idx *catalog.Index, errs map[string]string) {
	h.page(w, r, status, "offer_form", &render.PageData{
		Title:   "Create offer",
		Section: "create",
		Data: map[string]any{
			"Form":          st,
			"Categories":    idx.Categories(),
			"Subcategories": st.Subcategories(idx),
			"SelectedSub":   st.Draft.SubCategory,
			"Errors":        errs,
			"MaxUpload":     h.opts.MaxUploadBytes,
		},
	})
}

// loadForm returns the session's draft, or a fresh form.
func (h *Offers) loadForm(ctx context.Context, sid string) *offers.FormState {
	st := offers.NewFormState()
	if _, err := h.sessions.Load(ctx, sid, formKey, st); err != nil {
		slog.Error("load form state failed", "error", err)
		return offers.NewFormState()
	}
	return st
}

func (h *Offers) saveForm(ctx context.Context, sid string, st *offers.FormState) {
	if err := h.sessions.Save(ctx, sid, formKey, st); err != nil {
		slog.Error("save form state failed", "error", err)
	}
}

// parseUpload parses a multipart body capped at the upload limit. A
// urlencoded body is accepted as well.
func (h *Offers) parseUpload(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+multipartOverhead)
	err := r.ParseMultipartForm(h.opts.MaxUploadBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// readImage applies the uploaded file, if any, to the form. It reports
// false with a user-facing message when the file is rejected.
func (h *Offers) readImage(r *http.Request, ctrl *offers.FormController, st *offers.FormState) (string, bool) {
	file, header, err := r.FormFile(offerapi.FileField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", true
	}
	if err != nil {
		return h.imageMessage(err), false
	}
	defer file.Close()
	if header.Size == 0 && header.Filename == "" {
		return "", true
	}

	if err := ctrl.SetImage(st, header.Filename, file); err != nil {
		return h.imageMessage(err), false
	}
	return "", true
}

func (h *Offers) imageMessage(err error) string {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, offers.ErrImageTooLarge), errors.As(err, &tooBig):
		return "Image is too large. Maximum size is " + humanize.IBytes(uint64(h.opts.MaxUploadBytes)) + "."
	case errors.Is(err, imaging.ErrUnsupportedType):
		return "Image must be a JPEG, PNG, GIF or WebP file."
	default:
		slog.Error("read upload failed", "error", err)
		return "Image could not be read."
	}
}

// draftFromForm reads the create form fields.
func draftFromForm(r *http.Request) models.Draft {
	return models.Draft{
		Title:        strings.TrimSpace(r.FormValue("title")),
		Description:  r.FormValue("description"),
		ExpireDate:   strings.TrimSpace(r.FormValue("expireDate")),
		Tags:         r.FormValue("tags"),
		Category:     strings.TrimSpace(r.FormValue("category")),
		SubCategory:  strings.TrimSpace(r.FormValue("subCategory")),
		Country:      strings.TrimSpace(r.FormValue("country")),
		PromotionURL: strings.TrimSpace(r.FormValue("promotionUrl")),
	}
}
