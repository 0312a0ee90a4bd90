// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "strings"

// tagSeparator joins tags in editable form state.
const tagSeparator = ","

// ParseTags splits a comma-separated tag string into trimmed tags.
// Empty segments are dropped, so "a, ,b" yields ["a","b"].
func ParseTags(s string) []string {
	parts := strings.Split(s, tagSeparator)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// JoinTags is the inverse of ParseTags for tags that contain no commas.
func JoinTags(tags []string) string {
	return strings.Join(tags, tagSeparator)
}
