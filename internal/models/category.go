// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is an upstream identifier. The offers API serialises some ids as JSON
// numbers and others as strings; both decode into the same string form so
// they can be compared with HTML form values.
type ID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: expected string or number, got %s", b)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as a plain string.
func (id ID) String() string { return string(id) }

// Category is a top-level offer classification with its own subcategories.
// Categories are reference data owned by the offers API.
type Category struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Priority        float64       `json:"priority"`
	DocumentID      string        `json:"documentId"`
	SubCategoryList []Subcategory `json:"subCategoryList"`
}

// Subcategory belongs to exactly one Category.
type Subcategory struct {
	ID       ID     `json:"id"`
	Title    string `json:"title"`
	Icon     string `json:"icon"`
	IconType string `json:"iconType"`
}
