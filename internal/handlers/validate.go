// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"offerdesk/internal/models"
	"offerdesk/internal/offers"
)

// Length limits for offer fields, in characters.
const (
	maxTitleLen       = 300
	maxDescriptionLen = 10_000
	maxTagsLen        = 1_000
	maxURLLen         = 2_048
)

var fieldLimits = map[string]int{
	"title":        maxTitleLen,
	"description":  maxDescriptionLen,
	"tags":         maxTagsLen,
	"promotionUrl": maxURLLen,
}

var limitLabels = map[string]string{
	"title":        "Title",
	"description":  "Description",
	"tags":         "Tags",
	"promotionUrl": "Promotion link",
}

// checkLength returns a message when value is too long for field, or "".
// Fields without a limit always pass.
func checkLength(field, value string) string {
	limit, ok := fieldLimits[field]
	if !ok || utf8.RuneCountInString(value) <= limit {
		return ""
	}
	return fmt.Sprintf("%s is too long (max %s characters).", limitLabels[field], humanize.Comma(int64(limit)))
}

// checkDraftLengths checks every limited field of a create draft.
func checkDraftLengths(d models.Draft) map[string]string {
	errs := map[string]string{}
	for field, value := range map[string]string{
		"title":        d.Title,
		"description":  d.Description,
		"tags":         d.Tags,
		"promotionUrl": d.PromotionURL,
	} {
		if msg := checkLength(field, value); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

// validationMessages maps a validation failure to per-field messages for
// the templates.
func validationMessages(ve *offers.ValidationError) map[string]string {
	errs := make(map[string]string, len(ve.Fields))
	for _, f := range ve.Fields {
		if _, seen := errs[f.Field]; !seen {
			errs[f.Field] = f.Message
		}
	}
	return errs
}
