// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the offers console.
// Handlers receive their dependencies through the handler struct and keep
// per-browser state (drafts, edit contexts, notices) in the session store.
package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"offerdesk/internal/middleware"
	"offerdesk/internal/notify"
	"offerdesk/internal/offers"
	"offerdesk/internal/render"
	"offerdesk/internal/session"
)

// Session value names.
const (
	formKey       = "form"
	listKey       = "list"
	editKeyPrefix = "edit:"

	createGuard  = "create"
	listSequence = "offers"
)

// API is the slice of the offers API the handlers use.
type API interface {
	offers.Creator
	offers.Lister
	offers.Updater
}

// Options tunes handler behaviour.
type Options struct {
	MaxUploadBytes   int64
	KeepDraftOnError bool
}

// Offers groups the console's HTTP handlers and their dependencies.
type Offers struct {
	renderer *render.Renderer
	sessions *session.Store
	api      API
	opts     Options
}

// NewOffers creates the handler group.
func NewOffers(renderer *render.Renderer, sessions *session.Store, api API, opts Options) *Offers {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Offers{renderer: renderer, sessions: sessions, api: api, opts: opts}
}

// Home renders the landing page with the category overview.
func (h *Offers) Home(w http.ResponseWriter, r *http.Request) {
	sid := middleware.SessionFromCtx(r.Context())
	idx := offers.NewListView(h.api, h.sink(sid), nil).LoadCategories(r.Context())

	h.page(w, r, http.StatusOK, "home", &render.PageData{
		Title: "Offers",
		Data:  map[string]any{"Categories": idx.Categories()},
	})
}

// NotFound renders the 404 page.
func (h *Offers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r, "")
}

func (h *Offers) notFound(w http.ResponseWriter, r *http.Request, msg string) {
	h.page(w, r, http.StatusNotFound, "not_found", &render.PageData{
		Title: "Not found",
		Data:  map[string]any{"Message": msg},
	})
}

// sink returns the notice queue of a session. Notices are logged too.
func (h *Offers) sink(sid string) notify.Sink {
	return notify.Tee(h.sessions.Flashes(sid), notify.Log{})
}

func (h *Offers) warn(ctx context.Context, sid, msg string) {
	h.sink(sid).Notify(ctx, notify.Notice{Level: notify.LevelWarning, Message: msg})
}

// popFlashes drains the queued notices so they render exactly once.
func (h *Offers) popFlashes(ctx context.Context, sid string) []notify.Notice {
	if sid == "" {
		return nil
	}
	notices, err := h.sessions.Flashes(sid).Pop(ctx)
	if err != nil {
		slog.Error("pop flashes failed", "error", err)
	}
	return notices
}

// page renders a page with the session's pending notices. HTMX does not
// swap 4xx responses, so HTMX requests always get 200.
func (h *Offers) page(w http.ResponseWriter, r *http.Request, status int, name string, data *render.PageData) {
	if render.IsHTMX(r) && status >= 400 && status < 500 {
		status = http.StatusOK
	}
	data.Flashes = h.popFlashes(r.Context(), middleware.SessionFromCtx(r.Context()))
	h.renderer.PageStatus(w, r, status, name, data)
}

// fragment renders a shared partial with the session's pending notices.
func (h *Offers) fragment(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	h.renderer.Fragment(w, r, name, &render.PageData{
		Data:    data,
		Flashes: h.popFlashes(r.Context(), middleware.SessionFromCtx(r.Context())),
	})
}

// redirect sends the browser to url, through HX-Redirect for HTMX requests.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if render.IsHTMX(r) {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}
