// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"trims surrounding space", "a, b ,c", []string{"a", "b", "c"}},
		{"single tag", "pizza", []string{"pizza"}},
		{"drops empty segments", "a,, ,b", []string{"a", "b"}},
		{"empty string", "", []string{}},
		{"only separators", " , ,", []string{}},
		{"keeps inner spaces", "fast food, late night", []string{"fast food", "late night"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTags(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestJoinTags_RoundTrip(t *testing.T) {
	tags := []string{"x", "y"}
	got := ParseTags(JoinTags(tags))
	if !reflect.DeepEqual(got, tags) {
		t.Errorf("ParseTags(JoinTags(%v)) = %v", tags, got)
	}
	if s := JoinTags(tags); s != "x,y" {
		t.Errorf("JoinTags = %q, want %q", s, "x,y")
	}
}

func TestDateFromSeconds(t *testing.T) {
	if got := DateFromSeconds(1700000000); got != "2023-11-14" {
		t.Errorf("DateFromSeconds(1700000000) = %q, want 2023-11-14", got)
	}
	if got := DateFromSeconds(0); got != "1970-01-01" {
		t.Errorf("DateFromSeconds(0) = %q, want 1970-01-01", got)
	}
}

func TestTimestampFromDate(t *testing.T) {
	ts, err := TimestampFromDate("2023-11-14")
	if err != nil {
		t.Fatalf("TimestampFromDate: %v", err)
	}
	if ts.Seconds != 1699920000 {
		t.Errorf("Seconds = %d, want 1699920000", ts.Seconds)
	}
	if ts.Nanoseconds != nil {
		t.Error("Nanoseconds should be unset")
	}

	if _, err := TimestampFromDate("14/11/2023"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestTimestamp_DateConversionIsStable(t *testing.T) {
	// Repeated conversions must not drift.
	for _, sec := range []int64{1699920000, 1700000000, 1735689599, 0} {
		date := DateFromSeconds(sec)
		for i := 0; i < 3; i++ {
			ts, err := TimestampFromDate(date)
			if err != nil {
				t.Fatalf("TimestampFromDate(%q): %v", date, err)
			}
			if next := ts.Date(); next != date {
				t.Fatalf("iteration %d: %q became %q", i, date, next)
			}
		}
	}
}

func TestTimestamp_JSONPreservesShape(t *testing.T) {
	tests := []string{
		`{"_seconds":1700000000}`,
		`{"_seconds":1700000000,"_nanoseconds":0}`,
		`{"_seconds":1700000000,"_nanoseconds":123000000}`,
	}
	for _, in := range tests {
		var ts Timestamp
		if err := json.Unmarshal([]byte(in), &ts); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		out, err := json.Marshal(ts)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(out) != in {
			t.Errorf("round trip: got %s, want %s", out, in)
		}
	}
}

func TestID_UnmarshalStringOrNumber(t *testing.T) {
	var subs []Subcategory
	in := `[{"id":7,"title":"Pizza"},{"id":"s2","title":"Burgers"},{"id":null,"title":"None"}]`
	if err := json.Unmarshal([]byte(in), &subs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []ID{"7", "s2", ""}
	for i, s := range subs {
		if s.ID != want[i] {
			t.Errorf("subs[%d].ID = %q, want %q", i, s.ID, want[i])
		}
	}

	var bad ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &bad); err == nil {
		t.Error("expected error for object id")
	}
}

func TestOffer_RetainsUnknownFields(t *testing.T) {
	in := `{"id":"o1","title":"Deal","description":"d","expireDate":{"_seconds":1700000000,"_nanoseconds":0},` +
		`"tags":["x","y"],"category":"c1","subCategory":"s1","country":"LK","promotionUrl":"https://p",` +
		`"createdAt":{"_seconds":1600000000},"merchant":"acme"}`

	var o Offer
	if err := json.Unmarshal([]byte(in), &o); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if o.ID != "o1" || o.ExpireDate == nil || o.ExpireDate.Seconds != 1700000000 {
		t.Fatalf("known fields not decoded: %+v", o)
	}
	if len(o.Extra) != 2 {
		t.Fatalf("Extra = %v, want createdAt and merchant", o.Extra)
	}

	out, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(out)
	for _, want := range []string{`"merchant":"acme"`, `"createdAt":{"_seconds":1600000000}`, `"expireDate":{"_seconds":1700000000,"_nanoseconds":0}`} {
		if !strings.Contains(s, want) {
			t.Errorf("marshalled offer missing %s: %s", want, s)
		}
	}
}

func TestOffer_CloneIsDeep(t *testing.T) {
	ns := int64(5)
	o := Offer{
		ID:         "o1",
		Tags:       []string{"a"},
		ExpireDate: &Timestamp{Seconds: 10, Nanoseconds: &ns},
		Extra:      map[string]json.RawMessage{"k": json.RawMessage(`1`)},
	}
	c := o.Clone()
	c.Tags[0] = "changed"
	c.ExpireDate.Seconds = 99
	*c.ExpireDate.Nanoseconds = 7
	c.Extra["k"] = json.RawMessage(`2`)

	if o.Tags[0] != "a" || o.ExpireDate.Seconds != 10 || *o.ExpireDate.Nanoseconds != 5 || string(o.Extra["k"]) != "1" {
		t.Errorf("Clone shares state with original: %+v", o)
	}
}

func TestIsKnownCountry(t *testing.T) {
	if !IsKnownCountry(DefaultCountry) {
		t.Errorf("default country %q should be known", DefaultCountry)
	}
	if IsKnownCountry("XX") {
		t.Error("XX should not be known")
	}
}
