package collection

import "strings"

// Filter returns the items matching state, in input order. An item matches
// when the query is empty or at least one text field contains it
// (case-insensitive), and every active exact filter equals the field's
// string form.
func Filter[T any](items []T, schema Schema[T], state FilterState) []T {
	query := strings.ToLower(state.Query)

	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchesQuery(item, schema, query) && matchesExact(item, schema, state.Exact) {
			out = append(out, item)
		}
	}
	return out
}

func matchesQuery[T any](item T, schema Schema[T], query string) bool {
	if query == "" {
		return true
	}
	for _, field := range schema.TextFields {
		if strings.Contains(strings.ToLower(schema.Text(item, field)), query) {
			return true
		}
	}
	return false
}

func matchesExact[T any](item T, schema Schema[T], exact map[string]string) bool {
	for field, want := range exact {
		if want == "" {
			continue
		}
		if schema.Text(item, field) != want {
			return false
		}
	}
	return true
}
