package resources

import (
	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/collection"
	"github.com/learnhub/learnadmin/internal/models"
)

// SalesPages is the landing page builder's list.
func SalesPages() Binding[models.SalesPage] {
	return Binding[models.SalesPage]{
		Name:    "sales-pages",
		Aliases: []string{"sales"},
		Short:   "Manage sales pages",
		Endpoints: api.Endpoints{
			List:       "/admin/sales-pages",
			ListUnwrap: "data",
			Get:        "/admin/sales-pages/:id",
			ItemUnwrap: "data",
			Create:     "/admin/sales-pages",
			Update:     "/admin/sales-pages/:id",
			Delete:     "/admin/sales-pages/:id",
			Status:     "/admin/sales-pages/:id/status",
		},
		Schema: collection.Schema[models.SalesPage]{
			Resource: "sales-pages",
			Singular: "Sales page",
			ID:       func(p models.SalesPage) string { return p.ID.String() },
			Fields: map[string]func(models.SalesPage) any{
				"id":        func(p models.SalesPage) any { return p.ID },
				"title":     func(p models.SalesPage) any { return p.Title },
				"slug":      func(p models.SalesPage) any { return p.Slug },
				"courseId":  func(p models.SalesPage) any { return p.CourseID },
				"headline":  func(p models.SalesPage) any { return p.Headline },
				"status":    func(p models.SalesPage) any { return p.Status },
				"createdAt": func(p models.SalesPage) any { return p.CreatedAt },
			},
			TextFields: []string{"title", "slug", "headline"},
			Columns:    []string{"id", "title", "slug", "courseId", "status"},
			Status: statusField(
				func(p models.SalesPage) models.Status { return p.Status },
				func(p models.SalesPage, s models.Status) models.SalesPage { p.Status = s; return p },
			),
		},
	}
}

// CheckoutPages is the checkout page list.
func CheckoutPages() Binding[models.CheckoutPage] {
	return Binding[models.CheckoutPage]{
		Name:    "checkout-pages",
		Aliases: []string{"checkout"},
		Short:   "Manage checkout pages",
		Endpoints: api.Endpoints{
			List:       "/admin/checkout-pages",
			ListUnwrap: "data",
			Get:        "/admin/checkout-pages/:id",
			ItemUnwrap: "data",
			Create:     "/admin/checkout-pages",
			Update:     "/admin/checkout-pages/:id",
			Delete:     "/admin/checkout-pages/:id",
			Status:     "/admin/checkout-pages/:id/status",
		},
		Schema: collection.Schema[models.CheckoutPage]{
			Resource: "checkout-pages",
			Singular: "Checkout page",
			ID:       func(p models.CheckoutPage) string { return p.ID.String() },
			Fields: map[string]func(models.CheckoutPage) any{
				"id":           func(p models.CheckoutPage) any { return p.ID },
				"title":        func(p models.CheckoutPage) any { return p.Title },
				"slug":         func(p models.CheckoutPage) any { return p.Slug },
				"productId":    func(p models.CheckoutPage) any { return p.ProductID },
				"orderBumpIds": func(p models.CheckoutPage) any { return p.OrderBumpIDs },
				"status":       func(p models.CheckoutPage) any { return p.Status },
				"createdAt":    func(p models.CheckoutPage) any { return p.CreatedAt },
			},
			TextFields: []string{"title", "slug"},
			Columns:    []string{"id", "title", "productId", "status"},
			Status: statusField(
				func(p models.CheckoutPage) models.Status { return p.Status },
				func(p models.CheckoutPage, s models.Status) models.CheckoutPage { p.Status = s; return p },
			),
		},
	}
}
