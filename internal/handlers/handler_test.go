// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests: an in-memory Valkey, a fake offers API and a cookie
// carrying client.
package handlers

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"offerdesk/internal/middleware"
	"offerdesk/internal/models"
	"offerdesk/internal/offerapi"
	"offerdesk/internal/render"
	"offerdesk/internal/session"
)

// createCall is one create-offer request received by the fake API.
type createCall struct {
	Fields   url.Values
	Filename string
	File     []byte
}

// updateCall is one update-offer request received by the fake API.
type updateCall struct {
	ID   string
	Body map[string]json.RawMessage
}

// upstream is a fake offers API.
type upstream struct {
	mu         sync.Mutex
	categories []models.Category
	offers     []models.Offer
	failCats   bool
	failOffers bool
	failWrites bool
	creates    []createCall
	updates    []updateCall
	listCalls  int

	// Requests for the held category block until release is closed.
	hold    string
	arrived chan struct{}
	release chan struct{}

	srv *httptest.Server
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{categories: testCategories(), offers: testOffers()}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+offerapi.PathGetAllCategories, u.getCategories)
	mux.HandleFunc("GET "+offerapi.PathOffersByCategory, u.getOffers)
	mux.HandleFunc("POST "+offerapi.PathCreateOffer, u.createOffer)
	mux.HandleFunc("PUT "+offerapi.PathUpdateOffer, u.updateOffer)

	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func (u *upstream) getCategories(w http.ResponseWriter, _ *http.Request) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failCats {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "categories down"})
		return
	}
	writeJSON(w, http.StatusOK, u.categories)
}

func (u *upstream) getOffers(w http.ResponseWriter, r *http.Request) {
	cat := r.URL.Query().Get("category")

	u.mu.Lock()
	u.listCalls++
	hold := u.hold != "" && cat == u.hold
	u.mu.Unlock()
	if hold {
		u.arrived <- struct{}{}
		<-u.release
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failOffers {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "offers down"})
		return
	}
	out := []models.Offer{}
	for _, o := range u.offers {
		if cat == "" || o.Category == cat {
			out = append(out, o)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (u *upstream) createOffer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	call := createCall{Fields: url.Values(r.MultipartForm.Value)}
	if f, h, err := r.FormFile(offerapi.FileField); err == nil {
		call.Filename = h.Filename
		call.File, _ = io.ReadAll(f)
		f.Close()
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.creates = append(u.creates, call)
	if u.failWrites {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"_path": map[string]any{"segments": []string{"offers", "new1"}}})
}

func (u *upstream) updateOffer(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.updates = append(u.updates, updateCall{ID: r.URL.Query().Get("id"), Body: body})
	if u.failWrites {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (u *upstream) set(fn func(u *upstream)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fn(u)
}

func (u *upstream) createCalls() []createCall {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]createCall(nil), u.creates...)
}

func (u *upstream) updateCalls() []updateCall {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]updateCall(nil), u.updates...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

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

func testOffers() []models.Offer {
	return []models.Offer{
		{
			ID: "o1", Title: "Pizza deal", Description: "**Two** for one",
			ExpireDate: &models.Timestamp{Seconds: 1700000000},
			Tags:       []string{"food", "deal"}, Category: "c1", SubCategory: "s1",
			Country: "LK", PromotionURL: "https://example.com/p",
			Extra: map[string]json.RawMessage{"createdAt": json.RawMessage(`{"_seconds":1600000000}`)},
		},
		{
			ID: "o2", Title: "Flight sale", Description: "Cheap",
			ExpireDate: &models.Timestamp{Seconds: 1735689599},
			Tags:       []string{"travel"}, Category: "c2", SubCategory: "s3",
			Country: "LK", PromotionURL: "https://example.com/f",
		},
	}
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	up       *upstream
	mr       *miniredis.Miniredis
	sessions *session.Store
	srv      *httptest.Server
	client   *http.Client
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	up := newUpstream(t)
	api := offerapi.New(offerapi.Config{BaseURL: up.srv.URL, Timeout: 5 * time.Second, Attempts: 1})

	rn, err := render.New(false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	sessions := session.NewStore(rdb, false)
	h := NewOffers(rn, sessions, api, opts)

	r := chi.NewRouter()
	r.Use(middleware.LoadSession(sessions))
	r.NotFound(h.NotFound)
	r.Get("/", h.Home)
	r.Get("/create-offer", h.CreateForm)
	r.Post("/create-offer", h.CreateSubmit)
	r.Post("/create-offer/image", h.CreateImage)
	r.Delete("/create-offer/image", h.ClearImage)
	r.Post("/create-offer/reset", h.CreateReset)
	r.Get("/create-offer/subcategories", h.Subcategories)
	r.Get("/view-offers", h.ViewOffers)
	r.Post("/view-offers/{id}/edit", h.SelectForEdit)
	r.Get("/edit/{id}", h.EditForm)
	r.Post("/edit/{id}/category", h.EditCategory)
	r.Put("/edit/{id}", h.EditSubmit)
	r.Post("/edit/{id}", h.EditSubmit)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &testEnv{up: up, mr: mr, sessions: sessions, srv: srv, client: &http.Client{Jar: jar}}
}

// do sends req, marked as an HTMX request when htmx is set.
func (e *testEnv) do(t *testing.T, req *http.Request, htmx bool) *http.Response {
	t.Helper()
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) get(t *testing.T, path string, htmx bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return e.do(t, req, htmx)
}

func (e *testEnv) send(t *testing.T, method, path string, form url.Values, htmx bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req, htmx)
}

func (e *testEnv) sendMultipart(t *testing.T, path string, fields map[string]string, filename string, file []byte, htmx bool) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		part, err := mw.CreateFormFile(offerapi.FileField, filename)
		if err != nil {
			t.Fatalf("create file: %v", err)
		}
		part.Write(file)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(t, req, htmx)
}

// sessionID returns the session cookie the client holds.
func (e *testEnv) sessionID(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(e.srv.URL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func parseDoc(t *testing.T, resp *http.Response) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func flashText(doc *goquery.Document, level string) string {
	return strings.TrimSpace(doc.Find(".flash-" + level).Text())
}

// pngBytes returns a small valid PNG image.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func validOfferFields() map[string]string {
	return map[string]string{
		"title":        "Pizza deal",
		"description":  "Two for one",
		"expireDate":   "2023-11-14",
		"tags":         "food, deal",
		"category":     "c1",
		"subCategory":  "s1",
		"country":      "LK",
		"promotionUrl": "https://example.com/p",
	}
}
