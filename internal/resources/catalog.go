package resources

import (
	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/collection"
	"github.com/learnhub/learnadmin/internal/models"
)

// Courses is the course catalogue screen.
func Courses() Binding[models.Course] {
	return Binding[models.Course]{
		Name:    "courses",
		Aliases: []string{"course"},
		Short:   "Manage courses",
		Endpoints: api.Endpoints{
			List:       "/admin/assets/get-courses",
			ListUnwrap: "courses",
			Get:        "/admin/assets/get-course/:id",
			ItemUnwrap: "course",
			Create:     "/admin/assets/create-course",
			Update:     "/admin/assets/update-course/:id",
			Delete:     "/admin/assets/delete-course/:id",
			Status:     "/admin/assets/course/:id/status",
		},
		Schema: collection.Schema[models.Course]{
			Resource: "courses",
			Singular: "Course",
			ID:       func(c models.Course) string { return c.ID.String() },
			Fields: map[string]func(models.Course) any{
				"id":              func(c models.Course) any { return c.ID },
				"title":           func(c models.Course) any { return c.Title },
				"slug":            func(c models.Course) any { return c.Slug },
				"category":        func(c models.Course) any { return c.Category },
				"instructor":      func(c models.Course) any { return c.Instructor },
				"price":           func(c models.Course) any { return c.Price },
				"discountedPrice": func(c models.Course) any { return c.DiscountedPrice },
				"status":          func(c models.Course) any { return c.Status },
				"lessons":         func(c models.Course) any { return c.Lessons },
				"createdAt":       func(c models.Course) any { return c.CreatedAt },
			},
			TextFields: []string{"title", "slug", "category", "instructor"},
			Columns:    []string{"id", "title", "category", "price", "discountedPrice", "status"},
			Status: statusField(
				func(c models.Course) models.Status { return c.Status },
				func(c models.Course, s models.Status) models.Course { c.Status = s; return c },
			),
		},
	}
}

// Products is the digital products screen.
func Products() Binding[models.DigitalProduct] {
	return Binding[models.DigitalProduct]{
		Name:    "products",
		Aliases: []string{"product", "digital-products"},
		Short:   "Manage digital products",
		Endpoints: api.Endpoints{
			List:       "/admin/assets/file/get-digital-products",
			ListUnwrap: "products",
			Get:        "/admin/assets/file/digital-products/:id",
			ItemUnwrap: "data",
			Create:     "/admin/assets/file/digital-products",
			Update:     "/admin/assets/file/digital-products/:id",
			Delete:     "/admin/assets/file/digital-products/:id",
			Status:     "/admin/assets/file/digital-products/:id/status",
		},
		Schema: collection.Schema[models.DigitalProduct]{
			Resource: "products",
			Singular: "Product",
			ID:       func(p models.DigitalProduct) string { return p.ID.String() },
			Fields: map[string]func(models.DigitalProduct) any{
				"id":          func(p models.DigitalProduct) any { return p.ID },
				"title":       func(p models.DigitalProduct) any { return p.Title },
				"description": func(p models.DigitalProduct) any { return p.Description },
				"price":       func(p models.DigitalProduct) any { return p.Price },
				"status":      func(p models.DigitalProduct) any { return p.Status },
				"fileUrl":     func(p models.DigitalProduct) any { return p.FileURL },
				"downloads":   func(p models.DigitalProduct) any { return p.Downloads },
				"createdAt":   func(p models.DigitalProduct) any { return p.CreatedAt },
			},
			TextFields: []string{"title", "description"},
			Columns:    []string{"id", "title", "price", "downloads", "status"},
			Status: statusField(
				func(p models.DigitalProduct) models.Status { return p.Status },
				func(p models.DigitalProduct, s models.Status) models.DigitalProduct { p.Status = s; return p },
			),
		},
	}
}

// OrderBumps is the checkout add-on screen.
func OrderBumps() Binding[models.OrderBump] {
	return Binding[models.OrderBump]{
		Name:    "order-bumps",
		Aliases: []string{"bumps"},
		Short:   "Manage order bumps",
		Endpoints: api.Endpoints{
			List:       "/admin/assets/get-order-bumps",
			ListUnwrap: "data",
			Get:        "/admin/assets/get-order-bump/:id",
			ItemUnwrap: "data",
			Create:     "/admin/assets/create-order-bump",
			Update:     "/admin/assets/update-order-bump/:id",
			Delete:     "/admin/assets/delete-order-bump/:id",
			Status:     "/admin/assets/order-bump/:id/status",
		},
		Schema: collection.Schema[models.OrderBump]{
			Resource: "order-bumps",
			Singular: "Order bump",
			ID:       func(b models.OrderBump) string { return b.ID.String() },
			Fields: map[string]func(models.OrderBump) any{
				"id":              func(b models.OrderBump) any { return b.ID },
				"title":           func(b models.OrderBump) any { return b.Title },
				"description":     func(b models.OrderBump) any { return b.Description },
				"price":           func(b models.OrderBump) any { return b.Price },
				"targetProductId": func(b models.OrderBump) any { return b.TargetProductID },
				"status":          func(b models.OrderBump) any { return b.Status },
				"createdAt":       func(b models.OrderBump) any { return b.CreatedAt },
			},
			TextFields: []string{"title", "description"},
			Columns:    []string{"id", "title", "price", "targetProductId", "status"},
			Status: statusField(
				func(b models.OrderBump) models.Status { return b.Status },
				func(b models.OrderBump, s models.Status) models.OrderBump { b.Status = s; return b },
			),
		},
	}
}

// Explore is the learner-facing course feed. Read-only.
func Explore() Binding[models.ExploreCourse] {
	return Binding[models.ExploreCourse]{
		Name:  "explore",
		Short: "Browse the learner course feed",
		Endpoints: api.Endpoints{
			List:       "/user/courses/explore",
			ListUnwrap: "courses",
		},
		Schema: collection.Schema[models.ExploreCourse]{
			Resource: "explore",
			Singular: "Course",
			ID:       func(c models.ExploreCourse) string { return c.ID.String() },
			Fields: map[string]func(models.ExploreCourse) any{
				"id":         func(c models.ExploreCourse) any { return c.ID },
				"title":      func(c models.ExploreCourse) any { return c.Title },
				"category":   func(c models.ExploreCourse) any { return c.Category },
				"instructor": func(c models.ExploreCourse) any { return c.Instructor },
				"price":      func(c models.ExploreCourse) any { return c.Price },
				"rating":     func(c models.ExploreCourse) any { return c.Rating },
				"enrolled":   func(c models.ExploreCourse) any { return c.Enrolled },
			},
			TextFields: []string{"title", "category", "instructor"},
			Columns:    []string{"id", "title", "instructor", "price", "rating"},
		},
	}
}
