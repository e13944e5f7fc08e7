package resources

import (
	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/collection"
	"github.com/learnhub/learnadmin/internal/models"
)

// Contacts is the CRM contacts screen. Contacts have no status toggle.
func Contacts() Binding[models.Contact] {
	return Binding[models.Contact]{
		Name:    "contacts",
		Aliases: []string{"contact"},
		Short:   "Manage CRM contacts",
		Endpoints: api.Endpoints{
			List:       "/admin/crm/contacts",
			ListUnwrap: "data",
			Get:        "/admin/crm/contacts/:id",
			ItemUnwrap: "data",
			Create:     "/admin/crm/contacts",
			Update:     "/admin/crm/contacts/:id",
			Delete:     "/admin/crm/contacts/:id",
		},
		Schema: collection.Schema[models.Contact]{
			Resource: "contacts",
			Singular: "Contact",
			ID:       func(c models.Contact) string { return c.ID.String() },
			Fields: map[string]func(models.Contact) any{
				"id":        func(c models.Contact) any { return c.ID },
				"name":      func(c models.Contact) any { return c.Name },
				"email":     func(c models.Contact) any { return c.Email },
				"phone":     func(c models.Contact) any { return c.Phone },
				"source":    func(c models.Contact) any { return c.Source },
				"tags":      func(c models.Contact) any { return c.Tags },
				"createdAt": func(c models.Contact) any { return c.CreatedAt },
			},
			TextFields: []string{"name", "email", "phone", "tags"},
			Columns:    []string{"id", "name", "email", "phone", "tags"},
		},
	}
}

// Tags is the CRM tag list. The backend returns a bare array and has no
// single-tag endpoint.
func Tags() Binding[models.Tag] {
	return Binding[models.Tag]{
		Name:    "tags",
		Aliases: []string{"tag"},
		Short:   "Manage CRM tags",
		Endpoints: api.Endpoints{
			List:   "/admin/crm/tags",
			Create: "/admin/crm/tags",
			Update: "/admin/crm/tags/:id",
			Delete: "/admin/crm/tags/:id",
		},
		Schema: collection.Schema[models.Tag]{
			Resource: "tags",
			Singular: "Tag",
			ID:       func(t models.Tag) string { return t.ID.String() },
			Fields: map[string]func(models.Tag) any{
				"id":    func(t models.Tag) any { return t.ID },
				"name":  func(t models.Tag) any { return t.Name },
				"color": func(t models.Tag) any { return t.Color },
				"count": func(t models.Tag) any { return t.Count },
			},
			TextFields: []string{"name"},
			Columns:    []string{"id", "name", "color", "count"},
		},
	}
}
