// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
)

// Offer is a promotional listing as returned by the offers API.
type Offer struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	ExpireDate   *Timestamp `json:"expireDate,omitempty"`
	Tags         []string   `json:"tags"`
	Category     string     `json:"category"`
	SubCategory  ID         `json:"subCategory"`
	Country      string     `json:"country"`
	PromotionURL string     `json:"promotionUrl"`
	ImageURL     string     `json:"imageUrl,omitempty"`

	// Extra keeps upstream fields the console does not model (createdAt,
	// storage paths, ...). They are written back unchanged on update.
	Extra map[string]json.RawMessage `json:"-"`
}

// offerJSON has Offer's fields without its methods.
type offerJSON Offer

// UnmarshalJSON decodes the known fields and retains the rest in Extra.
func (o *Offer) UnmarshalJSON(b []byte) error {
	var known offerJSON
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	for _, k := range offerKeys {
		delete(raw, k)
	}
	*o = Offer(known)
	if len(raw) > 0 {
		o.Extra = raw
	}
	return nil
}

// MarshalJSON encodes the offer including retained upstream fields.
func (o Offer) MarshalJSON() ([]byte, error) {
	fields, err := o.Fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

// Fields returns the offer as a JSON object keyed by field name. Known
// fields win over Extra entries with the same key.
func (o Offer) Fields() (map[string]json.RawMessage, error) {
	b, err := json.Marshal(offerJSON(o))
	if err != nil {
		return nil, fmt.Errorf("marshal offer: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("offer fields: %w", err)
	}
	for k, v := range o.Extra {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	return fields, nil
}

// Clone returns a deep copy so edits never leak into shared list state.
func (o Offer) Clone() Offer {
	c := o
	if o.ExpireDate != nil {
		ts := *o.ExpireDate
		if o.ExpireDate.Nanoseconds != nil {
			ns := *o.ExpireDate.Nanoseconds
			ts.Nanoseconds = &ns
		}
		c.ExpireDate = &ts
	}
	if o.Tags != nil {
		c.Tags = append([]string(nil), o.Tags...)
	}
	if o.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(o.Extra))
		for k, v := range o.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

var offerKeys = []string{
	"id", "title", "description", "expireDate", "tags",
	"category", "subCategory", "country", "promotionUrl", "imageUrl",
}

// Country is a selectable offer market.
type Country struct {
	Code string
	Name string
}

// DefaultCountry is preselected on the create form.
const DefaultCountry = "LK"

// Countries lists the markets offers can target.
var Countries = []Country{
	{Code: "LK", Name: "Sri Lanka"},
	{Code: "emirates", Name: "Emirates"},
}

// IsKnownCountry reports whether code is one of Countries.
func IsKnownCountry(code string) bool {
	for _, c := range Countries {
		if c.Code == code {
			return true
		}
	}
	return false
}
