// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the editable date format used by date inputs and by the
// update endpoint.
const DateLayout = "2006-01-02"

// Timestamp is the seconds-based wrapper the offers API uses for expiry
// dates: {"_seconds": N, "_nanoseconds": M}. Nanoseconds is a pointer so a
// payload without the field is written back without it.
type Timestamp struct {
	Seconds     int64  `json:"_seconds"`
	Nanoseconds *int64 `json:"_nanoseconds,omitempty"`
}

// Time returns the timestamp as a UTC time.
func (ts Timestamp) Time() time.Time {
	var ns int64
	if ts.Nanoseconds != nil {
		ns = *ts.Nanoseconds
	}
	return time.Unix(ts.Seconds, ns).UTC()
}

// Date returns the calendar date of the timestamp in UTC.
func (ts Timestamp) Date() string {
	return DateFromSeconds(ts.Seconds)
}

// IsZero reports whether no expiry was set.
func (ts Timestamp) IsZero() bool {
	return ts.Seconds == 0 && (ts.Nanoseconds == nil || *ts.Nanoseconds == 0)
}

// DateFromSeconds formats Unix seconds as YYYY-MM-DD in UTC.
func DateFromSeconds(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(DateLayout)
}

// TimestampFromDate parses a YYYY-MM-DD date into the seconds of its UTC
// midnight, the same instant a browser assigns to a bare ISO date.
func TimestampFromDate(date string) (Timestamp, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return Timestamp{Seconds: t.Unix()}, nil
}
