// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"bytes"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// okHandler answers 200 for anything that gets past the middleware.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// issueToken runs a GET through h and returns the CSRF cookie it set.
func issueToken(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/create-offer", nil))
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("CSRF cookie not set")
	return nil
}

// offerMultipart builds a create-offer body like the browser form sends,
// with an optional csrf_token field.
func offerMultipart(t *testing.T, token string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{"title": "Half price pizza", "category": "c1", "subCategory": "s1"}
	if token != "" {
		fields[CSRFFormField] = token
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	fw, err := mw.CreateFormFile("image", "deal.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestNewCSRFCookie(t *testing.T) {
	for _, secure := range []bool{true, false} {
		c := issueToken(t, NewCSRF(secure)(okHandler))
		if c.Secure != secure {
			t.Errorf("cookie Secure = %v, want %v", c.Secure, secure)
		}
		if c.SameSite != http.SameSiteStrictMode {
			t.Errorf("cookie SameSite = %v, want StrictMode", c.SameSite)
		}
		if c.HttpOnly {
			t.Error("cookie must be readable by the page for hx-headers")
		}
		if len(c.Value) != csrfTokenLength*2 {
			t.Errorf("token length = %d, want %d", len(c.Value), csrfTokenLength*2)
		}
	}
}

func TestCSRFMultipartCreateOffer(t *testing.T) {
	var title, filename string
	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.FormValue("title")
		if _, fh, err := r.FormFile("image"); err == nil {
			filename = fh.Filename
		}
		w.WriteHeader(http.StatusOK)
	}))
	cookie := issueToken(t, handler)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"matching form field", cookie.Value, http.StatusOK},
		{"missing form field", "", http.StatusForbidden},
		{"wrong form field", strings.Repeat("0", csrfTokenLength*2), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, filename = "", ""
			body, contentType := offerMultipart(t, tt.token)
			req := httptest.NewRequest(http.MethodPost, "/create-offer", body)
			req.Header.Set("Content-Type", contentType)
			req.AddCookie(cookie)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want != http.StatusOK {
				return
			}
			// The upload is still readable after the token check parsed the body.
			if title != "Half price pizza" || filename != "deal.png" {
				t.Errorf("handler saw title %q, file %q", title, filename)
			}
		})
	}
}

func TestCSRFHTMXEditPut(t *testing.T) {
	var title string
	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		title = r.FormValue("title")
		w.WriteHeader(http.StatusOK)
	}))
	cookie := issueToken(t, handler)

	tests := []struct {
		name   string
		header string
		field  string
		want   int
	}{
		{"header token", cookie.Value, "", http.StatusOK},
		{"no token", "", "", http.StatusForbidden},
		{"wrong header wins over right field", "bogus", cookie.Value, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"title": {"Pizza week"}}
			if tt.field != "" {
				form.Set(CSRFFormField, tt.field)
			}
			req := httptest.NewRequest(http.MethodPut, "/edit/o1", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.Header.Set("HX-Request", "true")
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			req.AddCookie(cookie)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusOK && title != "Pizza week" {
				t.Errorf("title = %q", title)
			}
		})
	}
}

// TestCSRFTokenRoundTripsThroughTemplate renders the token from the request
// context into a form, then submits that form as a browser would.
func TestCSRFTokenRoundTripsThroughTemplate(t *testing.T) {
	form := template.Must(template.New("form").Parse(
		`<form method="post" action="/create-offer/reset"><input type="hidden" name="csrf_token" value="{{.}}"></form>`))

	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			form.Execute(w, CSRFTokenFromCtx(r.Context()))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/create-offer", nil))
	var cookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("CSRF cookie not set")
	}

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	if err != nil {
		t.Fatalf("parse form: %v", err)
	}
	token, _ := doc.Find(`input[name="csrf_token"]`).Attr("value")
	if token != cookie.Value {
		t.Fatalf("rendered token %q, cookie %q", token, cookie.Value)
	}

	req := httptest.NewRequest(http.MethodPost, "/create-offer/reset",
		strings.NewReader(url.Values{CSRFFormField: {token}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("submit with rendered token: status %d, want 200", rr.Code)
	}
}

func TestCSRFTokenFromCtx(t *testing.T) {
	if got := CSRFTokenFromCtx(httptest.NewRequest(http.MethodGet, "/", nil).Context()); got != "" {
		t.Errorf("token outside middleware = %q, want empty", got)
	}

	var seen string
	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CSRFTokenFromCtx(r.Context())
	}))
	cookie := issueToken(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/view-offers", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if seen != cookie.Value {
		t.Errorf("context token %q, want existing cookie %q", seen, cookie.Value)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("an existing token should not be reissued")
	}
}

func TestCSRFRoutes(t *testing.T) {
	handler := NewCSRF(false)(okHandler)
	cookie := issueToken(t, handler)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/view-offers?category=c1", http.StatusOK},
		{http.MethodHead, "/create-offer", http.StatusOK},
		{http.MethodOptions, "/edit/o1", http.StatusOK},
		{http.MethodPost, "/create-offer/reset", http.StatusForbidden},
		{http.MethodPost, "/view-offers/o1/edit", http.StatusForbidden},
		{http.MethodPost, "/edit/o1/category", http.StatusForbidden},
		{http.MethodPut, "/edit/o1", http.StatusForbidden},
		{http.MethodDelete, "/create-offer/image", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.AddCookie(cookie)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
