package collection

import "github.com/learnhub/learnadmin/internal/constants"

// Page is one page of a derived collection.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// Paginate returns items[(page-1)*size : page*size] clamped to bounds.
// A page past the end yields an empty slice. page < 1 is treated as 1 and
// size < 1 as the default page size.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size < 1 {
		size = constants.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}

	p := Page[T]{
		Items:      []T{},
		Page:       page,
		PageSize:   size,
		TotalItems: len(items),
		TotalPages: TotalPages(len(items), size),
	}

	start := (page - 1) * size
	if start >= len(items) || start < 0 {
		return p
	}
	end := start + size
	if end > len(items) || end < start {
		end = len(items)
	}
	p.Items = append(p.Items, items[start:end]...)
	return p
}

// TotalPages is ceil(n/size).
func TotalPages(n, size int) int {
	if size < 1 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ClampPage returns page limited to [1, max(1, totalPages)].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// HasNext reports whether a later page exists.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// Range returns the 1-based positions of the first and last item on the
// page, or 0, 0 for an empty page.
func (p Page[T]) Range() (int, int) {
	if len(p.Items) == 0 {
		return 0, 0
	}
	first := (p.Page-1)*p.PageSize + 1
	return first, first + len(p.Items) - 1
}
