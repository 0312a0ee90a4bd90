// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Draft is the create-form state of an offer that has not been persisted.
// Tags stay a comma-separated string until submission.
type Draft struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	ExpireDate   string `json:"expireDate" validate:"required,datetime=2006-01-02"`
	Tags         string `json:"tags" validate:"required"`
	Category     string `json:"category" validate:"required"`
	SubCategory  string `json:"subCategory" validate:"required"`
	Country      string `json:"country" validate:"required"`
	PromotionURL string `json:"promotionUrl" validate:"required"`
}

// NewDraft returns an empty draft with form defaults applied.
func NewDraft() Draft {
	return Draft{Country: DefaultCountry}
}

// PendingImage is the file selected on the create form, kept with its
// preview until the form is submitted or reset.
type PendingImage struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	PreviewURL  string `json:"preview_url"`
	Data        []byte `json:"data"`
}
