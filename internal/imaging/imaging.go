// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging validates offer images and builds the inline preview shown
// on the create form. Previews are data URLs; images wider than the preview
// width are downscaled and re-encoded as JPEG so the session stays small.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// PreviewMaxWidth is the widest preview rendered on the form.
	PreviewMaxWidth = 480

	// previewQuality is the JPEG quality for downscaled previews.
	previewQuality = 80

	// maxImagePixels caps decoded size to refuse decompression bombs.
	maxImagePixels = 50_000_000
)

// ErrUnsupportedType is returned for files that are not an accepted image.
var ErrUnsupportedType = errors.New("unsupported image type")

// allowedTypes are the image MIME types accepted for offers.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// scalableTypes can be decoded and downscaled. GIF keeps its animation by
// being previewed as-is.
var scalableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DetectType sniffs the content type of data and rejects non-images.
func DetectType(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if !allowedTypes[ct] {
		return ct, fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
	}
	return ct, nil
}

// Preview returns a data URL suitable for an <img src>. Scalable images wider
// than maxWidth are downscaled; others are embedded unchanged.
func Preview(data []byte, contentType string, maxWidth int) (string, error) {
	if !allowedTypes[contentType] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if maxWidth <= 0 {
		maxWidth = PreviewMaxWidth
	}

	if scalableTypes[contentType] {
		thumb, err := downscale(data, maxWidth)
		if err != nil {
			return "", err
		}
		if thumb != nil {
			return dataURL("image/jpeg", thumb), nil
		}
	}
	return dataURL(contentType, data), nil
}

// downscale resizes the image to maxWidth preserving aspect ratio. It returns
// nil when the image is already narrow enough.
func downscale(data []byte, maxWidth int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxImagePixels)
	}
	if cfg.Width <= maxWidth {
		return nil, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	newHeight := int(float64(bounds.Dy()) * ratio)
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: previewQuality}); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}

func dataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
