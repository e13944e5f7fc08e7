package models

import "time"

// SalesPage is a landing page promoting one course.
type SalesPage struct {
	ID        ID        `json:"id,omitempty"`
	Title     string    `json:"title" validate:"required,min=3,max=200"`
	Slug      string    `json:"slug" validate:"required,slug"`
	CourseID  string    `json:"courseId" validate:"required"`
	Headline  string    `json:"headline,omitempty"`
	Status    Status    `json:"status,omitempty" validate:"omitempty,oneof=published draft"`
	FAQs      []FAQ     `json:"faqs,omitempty" validate:"dive"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// CheckoutPage sells one product, optionally with order bumps.
type CheckoutPage struct {
	ID           ID        `json:"id,omitempty"`
	Title        string    `json:"title" validate:"required,min=3,max=200"`
	Slug         string    `json:"slug" validate:"required,slug"`
	ProductID    string    `json:"productId" validate:"required"`
	OrderBumpIDs []string  `json:"orderBumpIds,omitempty" validate:"max=5,unique,dive,required"`
	Status       Status    `json:"status,omitempty" validate:"omitempty,oneof=published draft"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}
