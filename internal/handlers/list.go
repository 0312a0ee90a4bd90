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

	"offerdesk/internal/middleware"
	"offerdesk/internal/models"
	"offerdesk/internal/offers"
	"offerdesk/internal/render"
)

// listSnapshot is the last list a session was shown, kept so that an
// offer picked for editing is the one the user saw.
type listSnapshot struct {
	Offers     []models.Offer    `json:"offers"`
	Categories []models.Category `json:"categories"`
}

// ViewOffers renders the offer list, filtered by the "category" query
// parameter. An HTMX request targeting the list gets only the list.
//
// Only HTMX loads share the session's list sequence: they swap into a page
// that a newer load may already own. A full page navigation replaces the
// whole document and is always answered.
func (h *Offers) ViewOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)
	filter := strings.TrimSpace(r.URL.Query().Get("category"))

	var seq offers.Sequencer
	if render.IsHTMX(r) {
		seq = h.sessions.Sequencer(sid, listSequence)
	}
	lv := offers.NewListView(h.api, h.sink(sid), seq)
	res, err := lv.Load(ctx, filter)
	switch {
	case errors.Is(err, offers.ErrStale):
		// A newer filter request owns the screen.
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, context.Canceled):
		return
	case err != nil:
		slog.Error("load offer list failed", "filter", filter, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	snap := listSnapshot{Categories: res.Categories.Categories(), Offers: make([]models.Offer, 0, len(res.Offers))}
	for _, v := range res.Offers {
		snap.Offers = append(snap.Offers, v.Offer)
	}
	if err := h.sessions.Save(ctx, sid, listKey, snap); err != nil {
		slog.Error("save offer list failed", "error", err)
	}

	data := map[string]any{"Result": res}
	if render.IsHTMX(r) && r.Header.Get("HX-Target") == "offer-list" {
		h.fragment(w, r, "offer_list", data)
		return
	}
	h.page(w, r, http.StatusOK, "offer_list", &render.PageData{
		Title:   "Offers",
		Section: "view",
		Data:    data,
	})
}

// SelectForEdit hands the chosen offer and the loaded categories to the
// editor and redirects to it.
func (h *Offers) SelectForEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionFromCtx(ctx)
	id := chi.URLParam(r, "id")
	target := "/edit/" + url.PathEscape(id)

	var snap listSnapshot
	ok, err := h.sessions.Load(ctx, sid, listKey, &snap)
	if err != nil {
		slog.Error("load offer list failed", "error", err)
	}
	if ok {
		for _, o := range snap.Offers {
			if o.ID != id {
				continue
			}
			if err := h.sessions.Save(ctx, sid, editKey(id), offers.SelectForEdit(o, snap.Categories)); err != nil {
				slog.Error("save edit context failed", "id", id, "error", err)
			}
			break
		}
	}

	// Without a stored context the editor looks the offer up itself.
	redirect(w, r, target)
}

func editKey(id string) string {
	return editKeyPrefix + id
}
