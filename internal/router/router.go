// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// offers console.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"offerdesk/internal/handlers"
	"offerdesk/internal/middleware"
	"offerdesk/internal/session"
	"offerdesk/web"
)

// New creates and returns the configured Chi router with all middleware
// and routes wired up. writeLimiter may be nil to disable rate limiting.
func New(sessionStore *session.Store, writeLimiter *middleware.RateLimiter, offers *handlers.Offers, secureCookies bool) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Logger)

	// Health check and static assets — no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler()))

	r.NotFound(offers.NotFound)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessionStore))
		r.Use(middleware.NewCSRF(secureCookies))

		// write wraps state-changing routes in the rate limiter.
		write := r
		if writeLimiter != nil {
			write = r.With(writeLimiter.Middleware)
		}

		r.Get("/", offers.Home)

		// Create offer
		r.Get("/create-offer", offers.CreateForm)
		r.Get("/create-offer/subcategories", offers.Subcategories)
		write.Post("/create-offer", offers.CreateSubmit)
		write.Post("/create-offer/image", offers.CreateImage)
		write.Delete("/create-offer/image", offers.ClearImage)
		write.Post("/create-offer/reset", offers.CreateReset)

		// Offer list
		r.Get("/view-offers", offers.ViewOffers)
		write.Post("/view-offers/{id}/edit", offers.SelectForEdit)

		// Edit offer
		r.Get("/edit/{id}", offers.EditForm)
		write.Post("/edit/{id}/category", offers.EditCategory)
		write.Put("/edit/{id}", offers.EditSubmit)
		write.Post("/edit/{id}", offers.EditSubmit)
	})

	return r
}

// staticHandler serves the embedded stylesheet and assets.
func staticHandler() http.Handler {
	sub, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("router: embedded static dir missing: " + err.Error())
	}
	return http.FileServerFS(sub)
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
