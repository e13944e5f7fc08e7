package collection

// RemoveByID returns items without the element(s) whose id equals id. Other
// items keep their order. The input is not mutated.
func RemoveByID[T any](items []T, idOf func(T) string, id string) ([]T, bool) {
	out := make([]T, 0, len(items))
	removed := false
	for _, item := range items {
		if idOf(item) == id {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

// ReplaceByID returns items with the element sharing replacement's id
// swapped for replacement, in place.
func ReplaceByID[T any](items []T, idOf func(T) string, replacement T) ([]T, bool) {
	id := idOf(replacement)
	return UpdateByID(items, idOf, id, func(T) T { return replacement })
}

// UpdateByID returns items with fn applied to the element whose id equals id.
func UpdateByID[T any](items []T, idOf func(T) string, id string, fn func(T) T) ([]T, bool) {
	out := make([]T, len(items))
	copy(out, items)
	found := false
	for i, item := range out {
		if idOf(item) == id {
			out[i] = fn(item)
			found = true
		}
	}
	return out, found
}

// FindByID returns the element whose id equals id.
func FindByID[T any](items []T, idOf func(T) string, id string) (T, bool) {
	for _, item := range items {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}
