package models

import "time"

// Course is a sellable course in the catalogue.
type Course struct {
	ID              ID        `json:"id,omitempty"`
	Title           string    `json:"title" validate:"required,min=3,max=200"`
	Slug            string    `json:"slug,omitempty" validate:"omitempty,slug"`
	Description     string    `json:"description,omitempty"`
	Category        string    `json:"category,omitempty"`
	Instructor      string    `json:"instructor,omitempty"`
	Price           Price     `json:"price" validate:"gte=0"`
	DiscountedPrice Price     `json:"discountedPrice,omitempty" validate:"gte=0,ltefield=Price"`
	Status          Status    `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Lessons         int       `json:"lessons,omitempty" validate:"gte=0"`
	Thumbnail       string    `json:"thumbnail,omitempty" validate:"omitempty,url"`
	FAQs            []FAQ     `json:"faqs,omitempty" validate:"dive"`
	BonusImages     []Image   `json:"bonusImages,omitempty" validate:"max=10,dive"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero"`
}

// DigitalProduct is a downloadable product (e-book, template pack...).
type DigitalProduct struct {
	ID          ID        `json:"id,omitempty"`
	Title       string    `json:"title" validate:"required,min=3,max=200"`
	Description string    `json:"description,omitempty"`
	Price       Price     `json:"price" validate:"gte=0"`
	Status      Status    `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	FileURL     string    `json:"fileUrl,omitempty" validate:"omitempty,url"`
	Downloads   int       `json:"downloads,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// OrderBump is an add-on offered at checkout for a target product.
type OrderBump struct {
	ID              ID        `json:"id,omitempty"`
	Title           string    `json:"title" validate:"required,min=3,max=200"`
	Description     string    `json:"description,omitempty"`
	Price           Price     `json:"price" validate:"gte=0"`
	TargetProductID string    `json:"targetProductId" validate:"required"`
	Status          Status    `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
}

// ExploreCourse is the learner-facing course card from the explore feed.
type ExploreCourse struct {
	ID         ID      `json:"id,omitempty"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug,omitempty"`
	Category   string  `json:"category,omitempty"`
	Instructor string  `json:"instructor,omitempty"`
	Price      Price   `json:"price"`
	Rating     float64 `json:"rating,omitempty"`
	Enrolled   int     `json:"enrolled,omitempty"`
}
