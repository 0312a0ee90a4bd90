// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package offerapi

import (
	"encoding/json"
	"fmt"

	"offerdesk/internal/models"
)

// UpdateRequest is the JSON body of an update-offer call: the full offer
// with tags as an array and expireDate as a YYYY-MM-DD string.
type UpdateRequest map[string]json.RawMessage

// NewUpdateRequest builds the update body from an edited offer. Fields the
// console does not model are passed through unchanged.
func NewUpdateRequest(o models.Offer) (UpdateRequest, error) {
	fields, err := o.Fields()
	if err != nil {
		return nil, err
	}

	tags := o.Tags
	if tags == nil {
		tags = []string{}
	}
	if fields["tags"], err = json.Marshal(tags); err != nil {
		return nil, fmt.Errorf("update tags: %w", err)
	}

	if o.ExpireDate != nil {
		if fields["expireDate"], err = json.Marshal(o.ExpireDate.Date()); err != nil {
			return nil, fmt.Errorf("update expireDate: %w", err)
		}
	}
	return UpdateRequest(fields), nil
}
