package collection

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/learnhub/learnadmin/internal/constants"
	"github.com/learnhub/learnadmin/internal/events"
)

// ErrStale is returned by Load when its result was discarded because a newer
// Load started or the list was closed.
var ErrStale = errors.New("stale load discarded")

// View is the derived state of a List: the visible page plus counts.
type View[T any] struct {
	Page[T]
	Filtered int
	Total    int
	Filter   FilterState
	Sort     SortState
	Loading  bool
}

// List is the observable state of one list screen: the raw collection and
// its filter, sort and page. Thread-safe for concurrent access.
type List[T any] struct {
	schema  Schema[T]
	fetcher *Fetcher[T]

	// Event bus for publishing changes
	eventBus *events.EventBus

	raw      []T
	filter   FilterState
	sort     SortState
	page     int
	pageSize int
	loading  bool
	lastErr  error

	// Load bookkeeping: only the latest generation may apply its result.
	generation uint64
	cancelLoad context.CancelFunc
	closed     bool

	mu sync.RWMutex
}

// NewList creates an empty list. fetcher and eventBus may be nil.
func NewList[T any](schema Schema[T], fetcher *Fetcher[T], eventBus *events.EventBus) *List[T] {
	return &List[T]{
		schema:   schema,
		fetcher:  fetcher,
		eventBus: eventBus,
		raw:      make([]T, 0),
		filter:   FilterState{Exact: map[string]string{}},
		page:     1,
		pageSize: constants.DefaultPageSize,
	}
}

// Schema returns the list's schema.
func (l *List[T]) Schema() Schema[T] {
	return l.schema
}

// Load fetches the collection and replaces the raw items. Starting a Load
// cancels any Load still in flight; a result that arrives after a newer
// Load started, or after Close, is discarded with ErrStale.
func (l *List[T]) Load(ctx context.Context) error {
	if l.fetcher == nil {
		return errors.New("list has no fetcher")
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrStale
	}
	if l.cancelLoad != nil {
		l.cancelLoad()
	}
	loadCtx, cancel := context.WithCancel(ctx)
	l.generation++
	gen := l.generation
	l.cancelLoad = cancel
	l.loading = true
	l.mu.Unlock()
	l.publishLoading(true)

	items, err := l.fetcher.Fetch(loadCtx)
	cancel()

	l.mu.Lock()
	if l.closed || gen != l.generation {
		l.mu.Unlock()
		return ErrStale
	}
	l.cancelLoad = nil
	l.raw = items
	l.loading = false
	l.lastErr = err
	l.clampLocked()
	l.mu.Unlock()

	l.publishLoading(false)
	l.publishChanged()
	return err
}

// Close cancels any in-flight Load and makes later results stale.
func (l *List[T]) Close() {
	l.mu.Lock()
	l.closed = true
	if l.cancelLoad != nil {
		l.cancelLoad()
		l.cancelLoad = nil
	}
	l.mu.Unlock()
}

// Loading returns whether a Load is in flight.
func (l *List[T]) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Err returns the error of the last applied Load.
func (l *List[T]) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// Items returns a copy of the raw collection.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.raw)
}

// SetItems replaces the raw collection.
func (l *List[T]) SetItems(items []T) {
	l.mu.Lock()
	l.raw = slices.Clone(items)
	if l.raw == nil {
		l.raw = make([]T, 0)
	}
	l.clampLocked()
	l.mu.Unlock()
	l.publishChanged()
}

// Count returns the number of raw items.
func (l *List[T]) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.raw)
}

// Find returns the raw item with id.
func (l *List[T]) Find(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return FindByID(l.raw, l.schema.ID, id)
}

// Remove deletes the item with id from the raw collection.
func (l *List[T]) Remove(id string) bool {
	return l.mutate(func(raw []T) ([]T, bool) {
		return RemoveByID(raw, l.schema.ID, id)
	})
}

// Replace swaps the item sharing item's id.
func (l *List[T]) Replace(item T) bool {
	return l.mutate(func(raw []T) ([]T, bool) {
		return ReplaceByID(raw, l.schema.ID, item)
	})
}

// Update applies fn to the item with id.
func (l *List[T]) Update(id string, fn func(T) T) bool {
	return l.mutate(func(raw []T) ([]T, bool) {
		return UpdateByID(raw, l.schema.ID, id, fn)
	})
}

// Append adds item at the end of the raw collection.
func (l *List[T]) Append(item T) {
	l.mutate(func(raw []T) ([]T, bool) {
		return append(slices.Clone(raw), item), true
	})
}

func (l *List[T]) mutate(fn func([]T) ([]T, bool)) bool {
	l.mu.Lock()
	next, changed := fn(l.raw)
	if changed {
		l.raw = next
		l.clampLocked()
	}
	l.mu.Unlock()

	if changed {
		l.publishChanged()
	}
	return changed
}

// SetQuery sets the free-text query.
func (l *List[T]) SetQuery(q string) {
	l.withState(func() { l.filter.Query = q })
}

// SetExactFilter sets (or, with an empty value, clears) an exact filter.
func (l *List[T]) SetExactFilter(field, value string) {
	l.withState(func() {
		if value == "" {
			delete(l.filter.Exact, field)
			return
		}
		l.filter.Exact[field] = value
	})
}

// ClearFilters removes the query and all exact filters.
func (l *List[T]) ClearFilters() {
	l.withState(func() { l.filter = FilterState{Exact: map[string]string{}} })
}

// ToggleSort clicks the header for key.
func (l *List[T]) ToggleSort(key string) {
	l.withState(func() { l.sort = l.sort.Toggle(key) })
}

// SetSort sets the sort directly.
func (l *List[T]) SetSort(s SortState) {
	l.withState(func() { l.sort = s })
}

// SetPage moves to page, clamped to the available pages.
func (l *List[T]) SetPage(page int) {
	l.withState(func() { l.page = page })
}

// NextPage moves forward one page if possible.
func (l *List[T]) NextPage() {
	l.withState(func() { l.page++ })
}

// PrevPage moves back one page if possible.
func (l *List[T]) PrevPage() {
	l.withState(func() { l.page-- })
}

// SetPageSize changes the page size and returns to the first page.
func (l *List[T]) SetPageSize(size int) {
	l.withState(func() {
		if size < 1 {
			size = constants.DefaultPageSize
		}
		l.pageSize = size
		l.page = 1
	})
}

func (l *List[T]) withState(fn func()) {
	l.mu.Lock()
	fn()
	l.clampLocked()
	l.mu.Unlock()
	l.publishChanged()
}

// Filtered returns the filtered and sorted collection without pagination.
func (l *List[T]) Filtered() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return Sort(Filter(l.raw, l.schema, l.filter), l.schema, l.sort)
}

// View recomputes filter -> sort -> paginate over the current state.
func (l *List[T]) View() View[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()

	filtered := Filter(l.raw, l.schema, l.filter)
	sorted := Sort(filtered, l.schema, l.sort)

	return View[T]{
		Page:     Paginate(sorted, l.page, l.pageSize),
		Filtered: len(filtered),
		Total:    len(l.raw),
		Filter:   copyFilter(l.filter),
		Sort:     l.sort,
		Loading:  l.loading,
	}
}

// clampLocked keeps page within [1, max(1, totalPages)] (must hold lock).
func (l *List[T]) clampLocked() {
	n := len(Filter(l.raw, l.schema, l.filter))
	l.page = ClampPage(l.page, TotalPages(n, l.pageSize))
}

func (l *List[T]) publishChanged() {
	if l.eventBus == nil {
		return
	}
	l.mu.RLock()
	filtered := len(Filter(l.raw, l.schema, l.filter))
	total := len(l.raw)
	page := l.page
	totalPages := TotalPages(filtered, l.pageSize)
	l.mu.RUnlock()

	l.eventBus.PublishCollectionChanged(l.schema.Resource, total, filtered, page, totalPages)
}

func (l *List[T]) publishLoading(loading bool) {
	if l.eventBus != nil {
		l.eventBus.PublishLoading(l.schema.Resource, loading)
	}
}

func copyFilter(f FilterState) FilterState {
	exact := make(map[string]string, len(f.Exact))
	for k, v := range f.Exact {
		exact[k] = v
	}
	return FilterState{Query: f.Query, Exact: exact}
}
