package collection

import (
	"cmp"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Sort returns a sorted copy of items; the input is never mutated. An empty
// key returns a copy in input order. The sort is stable, and Descending
// inverts the comparison.
func Sort[T any](items []T, schema Schema[T], state SortState) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	if state.Key == "" {
		return out
	}

	slices.SortStableFunc(out, func(a, b T) int {
		c := Compare(schema.Value(a, state.Key), schema.Value(b, state.Key))
		if state.Direction == Descending {
			return -c
		}
		return c
	})
	return out
}

// Compare orders two field values. Two numeric values (Go numbers, or
// strings that parse as numbers) compare numerically, two times
// chronologically, anything else by case-sensitive string comparison of
// their FieldString forms.
func Compare(a, b any) int {
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if na, ok := numeric(a); ok {
		if nb, ok := numeric(b); ok {
			return cmp.Compare(na, nb)
		}
	}
	return strings.Compare(FieldString(a), FieldString(b))
}

func numeric(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
