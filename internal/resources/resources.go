// Package resources binds each admin screen to its backend endpoints and to
// the field schema the collection pipeline filters, sorts and renders by.
package resources

import (
	"slices"

	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/collection"
	"github.com/learnhub/learnadmin/internal/models"
)

// Binding describes one resource: its CLI name, endpoints and schema.
type Binding[T any] struct {
	// Name is the CLI command name, e.g. "order-bumps".
	Name    string
	Aliases []string
	Short   string

	Endpoints api.Endpoints
	Schema    collection.Schema[T]
}

// NewResource returns the typed API client for the binding.
func (b Binding[T]) NewResource(client *api.Client) *api.Resource[T] {
	return api.NewResource[T](client, b.Endpoints)
}

// Info is the type-independent part of a Binding.
type Info struct {
	Name      string
	Short     string
	Endpoints api.Endpoints
	Columns   []string
	Fields    []string
}

// Info returns the binding's description without its item type.
func (b Binding[T]) Info() Info {
	fields := make([]string, 0, len(b.Schema.Fields))
	for name := range b.Schema.Fields {
		fields = append(fields, name)
	}
	slices.Sort(fields)
	return Info{
		Name:      b.Name,
		Short:     b.Short,
		Endpoints: b.Endpoints,
		Columns:   b.Schema.Columns,
		Fields:    fields,
	}
}

// All lists every binding in CLI order.
func All() []Info {
	return []Info{
		Courses().Info(),
		Products().Info(),
		OrderBumps().Info(),
		Contacts().Info(),
		Tags().Info(),
		Transactions().Info(),
		SalesPages().Info(),
		CheckoutPages().Info(),
		Explore().Info(),
	}
}

// Lookup returns the Info for name, matching aliases too.
func Lookup(name string) (Info, bool) {
	for _, info := range All() {
		if info.Name == name {
			return info, true
		}
	}
	for alias, target := range aliases() {
		if alias == name {
			return Lookup(target)
		}
	}
	return Info{}, false
}

func aliases() map[string]string {
	out := map[string]string{}
	add := func(name string, as []string) {
		for _, a := range as {
			out[a] = name
		}
	}
	add(Courses().Name, Courses().Aliases)
	add(Products().Name, Products().Aliases)
	add(OrderBumps().Name, OrderBumps().Aliases)
	add(Contacts().Name, Contacts().Aliases)
	add(Tags().Name, Tags().Aliases)
	add(Transactions().Name, Transactions().Aliases)
	add(SalesPages().Name, SalesPages().Aliases)
	add(CheckoutPages().Name, CheckoutPages().Aliases)
	add(Explore().Name, Explore().Aliases)
	return out
}

func statusField[T any](get func(T) models.Status, set func(T, models.Status) T) *collection.StatusField[T] {
	return &collection.StatusField[T]{Get: get, Set: set}
}
