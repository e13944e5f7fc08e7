// Package collection implements the admin list view as a reusable pipeline
// over any item type:
//
//	fetch -> filter -> sort -> paginate -> (row action) -> reconcile -> re-derive
//
// Filter, Sort and Paginate are pure functions. List owns the mutable state
// of one screen, and Dispatcher runs row actions against a Backend and
// reconciles the result into the List by id.
package collection

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/learnhub/learnadmin/internal/models"
)

// Schema describes how the pipeline sees an item type.
type Schema[T any] struct {
	// Resource is the plural name used in events and logs ("courses").
	Resource string

	// Singular is used in notifications ("Course deleted successfully").
	Singular string

	// ID returns the backend-assigned identifier.
	ID func(T) string

	// Fields are the named scalar accessors used by filters, sort keys and
	// table columns. A missing field reads as "".
	Fields map[string]func(T) any

	// TextFields are matched by the free-text query.
	TextFields []string

	// Columns is the default table column order.
	Columns []string

	// Status is nil for resources without a status toggle.
	Status *StatusField[T]
}

// StatusField reads and writes an item's status.
type StatusField[T any] struct {
	Get func(T) models.Status
	Set func(T, models.Status) T
}

// Value returns the named field of item, or nil when the field is unknown.
func (s Schema[T]) Value(item T, field string) any {
	fn, ok := s.Fields[field]
	if !ok || fn == nil {
		return nil
	}
	return fn(item)
}

// HasField reports whether field is declared.
func (s Schema[T]) HasField(field string) bool {
	_, ok := s.Fields[field]
	return ok
}

// Text returns the display form of the named field.
func (s Schema[T]) Text(item T, field string) string {
	return FieldString(s.Value(item, field))
}

// FieldString renders a field value the way filters and tables see it.
// nil (and nil pointers) render as "".
func FieldString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.RFC3339)
	case []string:
		return strings.Join(x, ", ")
	case fmt.Stringer:
		if isNilPointer(v) {
			return ""
		}
		return x.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
		return FieldString(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// FilterState is the active free-text query plus exact-match filters.
// An exact filter with an empty value is inactive.
type FilterState struct {
	Query string
	Exact map[string]string
}

// Active reports whether any filter would exclude items.
func (f FilterState) Active() bool {
	if f.Query != "" {
		return true
	}
	for _, v := range f.Exact {
		if v != "" {
			return true
		}
	}
	return false
}

// Direction is a sort direction.
type Direction int

// Sort directions.
const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// SortState is the active sort. An empty Key means input order.
type SortState struct {
	Key       string
	Direction Direction
}

// Toggle returns the state after clicking the header for key: the same key
// flips direction, a new key starts ascending.
func (s SortState) Toggle(key string) SortState {
	if key == s.Key {
		if s.Direction == Ascending {
			return SortState{Key: key, Direction: Descending}
		}
		return SortState{Key: key, Direction: Ascending}
	}
	return SortState{Key: key, Direction: Ascending}
}
