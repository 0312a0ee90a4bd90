// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package offerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// FileField is the multipart field name the image is attached under.
const FileField = "file"

// ErrNoDocumentPath is returned when the API answers 2xx to a create without
// naming the created document.
var ErrNoDocumentPath = errors.New("create offer: response has no document path")

// CreateRequest is the payload of a create-offer call.
type CreateRequest struct {
	Title        string
	Description  string
	ExpireDate   string // YYYY-MM-DD as entered
	Tags         []string
	Category     string
	SubCategory  string
	Country      string
	PromotionURL string

	Filename    string
	ContentType string
	File        []byte
}

// CreateResult describes the document the API created.
type CreateResult struct {
	// ID is the created offer's document id.
	ID string
	// Path is the full document path, e.g. "offers/abc123".
	Path string
}

// createResponse mirrors the document reference returned by the API.
type createResponse struct {
	Path struct {
		Segments []string `json:"segments"`
	} `json:"_path"`
	Error json.RawMessage `json:"error"`
}

// CreateOffer posts a new offer as multipart form data. Success requires a
// 2xx status and a document path in the response body.
func (c *Client) CreateOffer(ctx context.Context, in CreateRequest) (*CreateResult, error) {
	body, contentType, err := encodeCreate(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(PathCreateOffer, nil), body)
	if err != nil {
		return nil, fmt.Errorf("create offer request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	respBody, err := c.do(req, "create offer")
	if err != nil {
		return nil, err
	}

	var out createResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("create offer decode: %w", err)
	}
	segs := out.Path.Segments
	if len(segs) < 2 || segs[1] == "" {
		if msg := rawMessage(out.Error); msg != "" {
			return nil, &APIError{Op: "create offer", StatusCode: http.StatusOK, Message: msg}
		}
		return nil, ErrNoDocumentPath
	}
	return &CreateResult{ID: segs[1], Path: strings.Join(segs, "/")}, nil
}

// encodeCreate builds the multipart body. Tags are sent as a JSON array.
func encodeCreate(in CreateRequest) (*bytes.Buffer, string, error) {
	tags, err := json.Marshal(in.Tags)
	if err != nil {
		return nil, "", fmt.Errorf("create offer tags: %w", err)
	}

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	fields := []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"expireDate", in.ExpireDate},
		{"tags", string(tags)},
		{"category", in.Category},
		{"subCategory", in.SubCategory},
		{"country", in.Country},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("create offer field %s: %w", f.name, err)
		}
	}

	if err := writeFile(mw, in); err != nil {
		return nil, "", err
	}

	if err := mw.WriteField("promotionUrl", in.PromotionURL); err != nil {
		return nil, "", fmt.Errorf("create offer field promotionUrl: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("create offer close: %w", err)
	}
	return buf, mw.FormDataContentType(), nil
}

func writeFile(mw *multipart.Writer, in CreateRequest) error {
	contentType := in.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	filename := in.Filename
	if filename == "" {
		filename = "image"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileField, escapeQuotes(filename)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create offer file part: %w", err)
	}
	if _, err := part.Write(in.File); err != nil {
		return fmt.Errorf("create offer file write: %w", err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
