// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"offerdesk/internal/catalog"
	"offerdesk/internal/middleware"
	"offerdesk/internal/notify"
	"offerdesk/internal/offerapi"
	"offerdesk/internal/offers"
	"offerdesk/internal/render"
	"offerdesk/internal/session"
)

// editFields is the order form fields are applied in. The category goes
// before the subcategory so the subcategory is checked against it.
var editFields = []string{
	"title", "description", "valid_until", "tags", "country", "promotionUrl", "category", "subCategory",
}

// EditForm renders the editor for one offer.
func (h *Offers) EditForm(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.openEditor(w, r)
	if !ok {
		return
	}
	h.renderEdit(w, r, http.StatusOK, ed, map[string]string{})
}

// EditCategory switches the editor's category and returns the new
// subcategory select.
func (h *Offers) EditCategory(w http.ResponseWriter, r *http.Request) {
	ed, ok := h.openEditor(w, r)
	if !ok {
		return
	}
	subs := ed.ChangeCategory(strings.TrimSpace(r.FormValue("category")))

	h.fragment(w, r, "subcategory_select", map[string]any{
		"Subcategories": subs,
		"SelectedSub":   ed.Selection().SubcategoryID,
	})
}

// EditSubmit applies the submitted fields and sends the update. On success
// the browser returns to the list.
func (h *Offers) EditSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	ed, ok := h.openEditor(w, r)
	if !ok {
		return
	}

	errs := applyEdits(ed, r.PostForm)
	if len(errs) > 0 {
		h.renderEdit(w, r, http.StatusUnprocessableEntity, ed, errs)
		return
	}

	err := ed.Submit(ctx, h.api, h.sink(sid), h.sessions.Guard(sid, editKey(ed.ID()), session.DefaultLockTTL))
	switch {
	case err == nil:
		updated := offers.SelectForEdit(ed.Offer(), ed.Categories())
		if err := h.sessions.Save(ctx, sid, editKey(ed.ID()), updated); err != nil {
			slog.Error("save edit context failed", "id", ed.ID(), "error", err)
		}
		redirect(w, r, "/view-offers")
	case errors.Is(err, offers.ErrSubmitInFlight):
		h.warn(ctx, sid, "This offer is already being saved.")
		h.renderEdit(w, r, http.StatusConflict, ed, errs)
	default:
		h.renderEdit(w, r, http.StatusOK, ed, errs)
	}
}

// openEditor builds an editor for the {id} route parameter from the
// session's edit context, looking the offer up when none was stored. It
// writes the response itself and reports false when no editor can open.
func (h *Offers) openEditor(w http.ResponseWriter, r *http.Request) (*offers.Editor, bool) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)
	id := chi.URLParam(r, "id")

	ec, err := h.editContext(ctx, sid, id)
	switch {
	case errors.Is(err, offers.ErrOfferNotFound):
		h.notFound(w, r, "No offer with this id exists.")
		return nil, false
	case err != nil:
		slog.Error("look up offer failed", "id", id, "error", err)
		notify.Error(ctx, h.sink(sid), "Error fetching offers: "+offerapi.Message(err))
		redirect(w, r, "/view-offers")
		return nil, false
	}

	ed, err := offers.NewEditor(ec)
	if err != nil {
		slog.Warn("discarding unusable edit context", "id", id, "error", err)
		if err := h.sessions.Delete(ctx, sid, editKey(id)); err != nil {
			slog.Error("delete edit context failed", "id", id, "error", err)
		}
		h.notFound(w, r, "No offer with this id exists.")
		return nil, false
	}
	return ed, true
}

// editContext returns the stored context for id, falling back to a lookup
// in the unfiltered list for deep links.
func (h *Offers) editContext(ctx context.Context, sid, id string) (offers.EditContext, error) {
	var ec offers.EditContext
	ok, err := h.sessions.Load(ctx, sid, editKey(id), &ec)
	if err != nil {
		slog.Error("load edit context failed", "id", id, "error", err)
	}
	if ok {
		return ec, nil
	}

	ec, err = offers.NewListView(h.api, h.sink(sid), nil).Lookup(ctx, id)
	if err != nil {
		return offers.EditContext{}, err
	}
	if err := h.sessions.Save(ctx, sid, editKey(id), ec); err != nil {
		slog.Error("save edit context failed", "id", id, "error", err)
	}
	return ec, nil
}

func (h *Offers) renderEdit(w http.ResponseWriter, r *http.Request, status int, ed *offers.Editor, errs map[string]string) {
	h.page(w, r, status, "offer_edit", &render.PageData{
		Title:   "Edit offer",
		Section: "view",
		Data: map[string]any{
			"Editor":        ed,
			"Errors":        errs,
			"Subcategories": ed.Subcategories(),
			"SelectedSub":   ed.Selection().SubcategoryID,
		},
	})
}

// applyEdits feeds the submitted fields to the editor and returns a
// message per rejected field.
func applyEdits(ed *offers.Editor, form url.Values) map[string]string {
	errs := map[string]string{}
	for _, name := range editFields {
		if _, ok := form[name]; !ok {
			continue
		}
		value := form.Get(name)
		if msg := checkLength(name, value); msg != "" {
			errs[name] = msg
			continue
		}
		if err := ed.ChangeField(name, value); err != nil {
			errs[name] = editMessage(name, err)
		}
	}
	if _, ok := errs["title"]; !ok && strings.TrimSpace(ed.Offer().Title) == "" {
		errs["title"] = "Title is required."
	}
	return errs
}

func editMessage(field string, err error) string {
	switch {
	case errors.Is(err, catalog.ErrForeignSubcategory):
		return "Subcategory does not belong to the selected category."
	case field == "valid_until":
		return "Valid until must be a date (YYYY-MM-DD)."
	case field == "country":
		return "Country is not supported."
	default:
		return err.Error()
	}
}
