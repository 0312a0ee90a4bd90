// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns user-supplied names into safe, URL-friendly tokens.
// It is used for the file names of uploaded offer images.
package slug

import (
	"path"
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, space or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// separators are turned into hyphens before stripping.
	separators = regexp.MustCompile(`[\s_.]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// maxBaseLen bounds the name part of a generated file name.
const maxBaseLen = 80

// extensions maps accepted image types to their file extension.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Generate creates a URL-friendly slug from the given string.
// Example: "Summer Deal_2026" → "summer-deal-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = separators.ReplaceAllString(result, "-")
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// Filename builds the name an uploaded image is sent under: the slugged
// base name of the original plus the extension of its detected type.
// Example: ("My Pizza (1).JPEG", "image/jpeg") → "my-pizza-1.jpg"
func Filename(original, contentType string) string {
	base := path.Base(strings.ReplaceAll(original, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	name := Generate(base)
	if len(name) > maxBaseLen {
		name = strings.TrimRight(name[:maxBaseLen], "-")
	}
	if name == "" {
		name = "image"
	}

	ext, ok := extensions[contentType]
	if !ok {
		ext = strings.ToLower(path.Ext(original))
	}
	return name + ext
}
