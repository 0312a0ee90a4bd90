// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package offerapi is a client for the offers REST API: category lookup,
// offer listing, offer creation (multipart with image) and offer update.
package offerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"offerdesk/internal/models"
)

// Endpoint paths relative to the configured base URL.
const (
	PathGetAllCategories = "/api/category/get-all-categories"
	PathCreateOffer      = "/api/offer/create-offer"
	PathOffersByCategory = "/api/offer/get-offers-by-category"
	PathUpdateOffer      = "/api/offer/update-offer"
)

// maxResponseSize bounds how much of an upstream response is read.
const maxResponseSize = 10 << 20

// Config holds the connection settings for the offers API.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// Attempts is the total number of tries for idempotent GET requests.
	// Writes are always attempted exactly once.
	Attempts uint

	// RetryDelay is the initial backoff between GET attempts.
	RetryDelay time.Duration
}

// CategoryCache stores the category list between requests. Implementations
// must be safe for concurrent use.
type CategoryCache interface {
	Get(ctx context.Context) ([]models.Category, bool)
	Set(ctx context.Context, categories []models.Category)
}

// Client talks to the offers API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	http       *http.Client
	attempts   uint
	retryDelay time.Duration
	categories CategoryCache
}

// New creates a client for the API at cfg.BaseURL.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 250 * time.Millisecond
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		http:       &http.Client{Timeout: cfg.Timeout},
		attempts:   cfg.Attempts,
		retryDelay: cfg.RetryDelay,
	}
}

// WithCategoryCache makes Categories consult cache before the network.
func (c *Client) WithCategoryCache(cache CategoryCache) *Client {
	c.categories = cache
	return c
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Categories fetches every category with its subcategories.
func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	if c.categories != nil {
		if cached, ok := c.categories.Get(ctx); ok {
			return cached, nil
		}
	}

	var categories []models.Category
	if err := c.getJSON(ctx, "get categories", PathGetAllCategories, nil, &categories); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []models.Category{}
	}

	if c.categories != nil {
		c.categories.Set(ctx, categories)
	}
	return categories, nil
}

// OffersByCategory lists offers in a category. An empty categoryID lists
// every offer.
func (c *Client) OffersByCategory(ctx context.Context, categoryID string) ([]models.Offer, error) {
	q := url.Values{}
	q.Set("category", categoryID)

	var offers []models.Offer
	if err := c.getJSON(ctx, "get offers", PathOffersByCategory, q, &offers); err != nil {
		return nil, err
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	return offers, nil
}

// UpdateOffer replaces an offer. The body is sent as JSON; any 2xx status
// counts as success.
func (c *Client) UpdateOffer(ctx context.Context, id string, body UpdateRequest) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("update offer marshal: %w", err)
	}

	q := url.Values{}
	q.Set("id", id)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint(PathUpdateOffer, q), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("update offer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req, "update offer")
	return err
}

// getJSON performs a GET with retries and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, op, path string, q url.Values, out any) error {
	target := c.endpoint(path, q)

	var lastErr error
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
			if err != nil {
				lastErr = fmt.Errorf("%s request: %w", op, err)
				return retry.Unrecoverable(lastErr)
			}
			req.Header.Set("Accept", "application/json")

			body, err := c.do(req, op)
			if err != nil {
				lastErr = err
				if !retryable(err) || ctx.Err() != nil {
					return retry.Unrecoverable(err)
				}
				return err
			}

			if err := json.Unmarshal(body, out); err != nil {
				lastErr = fmt.Errorf("%s decode: %w", op, err)
				return retry.Unrecoverable(lastErr)
			}
			lastErr = nil
			return nil
		},
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(5*time.Second),
		retry.MaxJitter(c.retryDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			slog.Warn("offers api retry", "op", op, "attempt", n+1, "error", err)
		}),
	)
	if err == nil {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("%s: %w", op, err)
}

// do executes req and returns the body of a 2xx response. Non-2xx statuses
// become *APIError carrying the server's error message when present.
func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("offers api request failed",
			"op", op,
			"method", req.Method,
			"url", req.URL.Redacted(),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%s read body: %w", op, err)
	}

	slog.Debug("offers api request",
		"op", op,
		"method", req.Method,
		"url", req.URL.Redacted(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return body, newAPIError(op, resp.StatusCode, body)
	}
	return body, nil
}

// endpoint joins the base URL, path and optional query.
func (c *Client) endpoint(path string, q url.Values) string {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// retryable reports whether a failed GET is worth another attempt:
// transport failures and 5xx responses are, client errors are not.
func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}
