package models

import (
	"strings"
	"time"

	"github.com/learnhub/learnadmin/internal/util/tags"
)

// Contact is a CRM contact (lead or customer).
type Contact struct {
	ID        ID        `json:"id,omitempty"`
	Name      string    `json:"name" validate:"required,max=120"`
	Email     string    `json:"email" validate:"required,email"`
	Phone     string    `json:"phone,omitempty" validate:"omitempty,e164"`
	Source    string    `json:"source,omitempty"`
	Tags      []string  `json:"tags,omitempty" validate:"dive,required"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// Normalized returns c with surrounding whitespace removed from its text
// fields and its tag list cleaned up.
func (c Contact) Normalized() Contact {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Tags = tags.Normalize(c.Tags)
	return c
}

// Tag labels contacts for segmentation.
type Tag struct {
	ID    ID     `json:"id,omitempty"`
	Name  string `json:"name" validate:"required,max=60"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Count int    `json:"count,omitempty"`
}
