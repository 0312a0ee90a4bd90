// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the console.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"offerdesk/internal/markdown"
	"offerdesk/internal/middleware"
	"offerdesk/internal/models"
	"offerdesk/internal/notify"
)

//go:embed templates/*.html
var templateFS embed.FS

// layoutFiles are parsed into every page; they are not pages themselves.
var layoutFiles = []string{"templates/base.html", "templates/partials.html"}

// PageData holds all data passed to templates.
type PageData struct {
	Title     string          // Page title for <title> tag
	Section   string          // Active nav section ("create", "view")
	CSRFToken string          // CSRF token for forms and HTMX headers
	Data      map[string]any  // Page-specific data
	Flashes   []notify.Notice // One-time notices queued for this response
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	partials  *template.Template
	funcMap   template.FuncMap
}

// New creates a Renderer by parsing all templates from the embedded
// filesystem. Each page template is paired with the base layout and the
// shared partials.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			// isDev returns true when the app runs in development mode.
			"isDev": func() bool {
				return devMode
			},
			"markdown":  markdown.Render,
			"countries": func() []models.Country { return models.Countries },
			"now":       time.Now,
			// imageSrc lets a data: image preview through URL sanitizing;
			// any other data: URL is blanked.
			"imageSrc": func(s string) template.URL {
				if strings.HasPrefix(s, "data:") && !strings.HasPrefix(s, "data:image/") {
					return ""
				}
				return template.URL(s)
			},
			// humanTime renders a time relative to now ("in 3 days").
			"humanTime": func(t time.Time) string {
				if t.IsZero() {
					return ""
				}
				return humanize.Time(t)
			},
			"bytes": func(n int64) string {
				if n < 0 {
					n = 0
				}
				return humanize.IBytes(uint64(n))
			},
			// errFor returns the validation message for a form field.
			"errFor": func(errs map[string]string, field string) string {
				return errs[field]
			},
			// dict builds a map from alternating keys and values, for
			// passing several values into a partial.
			"dict": func(kv ...any) (map[string]any, error) {
				if len(kv)%2 != 0 {
					return nil, errors.New("dict: odd number of arguments")
				}
				m := make(map[string]any, len(kv)/2)
				for i := 0; i < len(kv); i += 2 {
					k, ok := kv[i].(string)
					if !ok {
						return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
					}
					m[k] = kv[i+1]
				}
				return m, nil
			},
		},
	}

	partials, err := template.New("partials.html").Funcs(r.funcMap).ParseFS(templateFS, "templates/partials.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}
	r.partials = partials

	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob templates: %w", err)
	}

	for _, page := range pages {
		name := strings.TrimPrefix(page, "templates/")
		if name == "base.html" || name == "partials.html" {
			continue
		}
		tmplName := strings.TrimSuffix(name, ".html")

		files := append(append([]string{}, layoutFiles...), page)
		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(templateFS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[tmplName] = tmpl
	}

	return r, nil
}

// Page renders a full page or, for HTMX requests, only its "content"
// block followed by an out-of-band flash update.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus is Page with an explicit status code.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())

	var buf bytes.Buffer
	var err error
	if IsHTMX(r) {
		err = tmpl.ExecuteTemplate(&buf, "content", data)
		if err == nil {
			err = tmpl.ExecuteTemplate(&buf, "flashes_oob", data.Flashes)
		}
	} else {
		err = tmpl.ExecuteTemplate(&buf, "base.html", data)
	}
	if err != nil {
		slog.Error("template execute failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Fragment renders one shared partial, followed by an out-of-band flash
// update when notices are queued.
func (rn *Renderer) Fragment(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())

	var buf bytes.Buffer
	err := rn.partials.ExecuteTemplate(&buf, name, data)
	if err == nil && len(data.Flashes) > 0 {
		err = rn.partials.ExecuteTemplate(&buf, "flashes_oob", data.Flashes)
	}
	if err != nil {
		slog.Error("fragment execute failed", "fragment", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// IsHTMX returns true if the request was made by HTMX (has HX-Request header).
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
