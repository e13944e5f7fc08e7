// Package models defines the admin console's domain types as exchanged with
// the backend. Struct tags drive both JSON encoding and client-side
// validation (see internal/validation).
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ID is a backend-assigned identifier. The backend emits both string and
// numeric ids depending on the collection, so ID accepts either on decode
// and always encodes as a string.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the id as a string.
func (id ID) String() string { return string(id) }

// Status is the publish state of a catalogue item or page.
type Status string

// Known status values.
const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
)

// ErrUnknownStatus is returned by Inverse for a status it cannot flip.
var ErrUnknownStatus = errors.New("unknown status")

var statusPairs = map[Status]Status{
	StatusActive:    StatusInactive,
	StatusInactive:  StatusActive,
	StatusPublished: StatusDraft,
	StatusDraft:     StatusPublished,
}

// Inverse returns the value a status toggle sends to the backend:
// active/inactive and published/draft flip. Matching ignores case and the
// result is spelled in the input's case ("Active" -> "Inactive"), so two
// toggles restore the original value. Any other status is an
// ErrUnknownStatus.
func (s Status) Inverse() (Status, error) {
	next, ok := statusPairs[Status(strings.ToLower(string(s)))]
	if !ok {
		return s, fmt.Errorf("%w %q: only active/inactive and published/draft can be toggled", ErrUnknownStatus, string(s))
	}
	return Status(inCaseOf(string(s), string(next))), nil
}

// inCaseOf spells word (lower case) in the case style of like: all upper,
// capitalized, or lower.
func inCaseOf(like, word string) string {
	switch {
	case like == strings.ToUpper(like):
		return strings.ToUpper(word)
	case like[:1] == strings.ToUpper(like[:1]):
		return strings.ToUpper(word[:1]) + word[1:]
	default:
		return word
	}
}

// StatusUpdate is the PATCH body for status toggles.
type StatusUpdate struct {
	Status Status `json:"status" validate:"required"`
}

// Price is a decimal amount. Some endpoints send prices as strings
// ("499.00"), so decoding accepts both forms.
type Price float64

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", s, err)
		}
		*p = Price(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*p = Price(f)
	return nil
}

// FAQ is one question/answer pair on a course or sales page.
type FAQ struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// Image is an uploaded image reference.
type Image struct {
	URL     string `json:"url" validate:"required,url"`
	AltText string `json:"altText,omitempty"`
}
