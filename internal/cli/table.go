package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/learnhub/learnadmin/internal/collection"
)

const maxCellWidth = 48

// renderTable prints one page of rows with a header and a page footer.
func renderTable[T any](w io.Writer, schema collection.Schema[T], columns []string, view collection.View[T], colored bool) {
	if len(view.Items) == 0 {
		if view.Filter.Active() {
			fmt.Fprintf(w, "No %s match the current filters (%d total).\n", schema.Resource, view.Total)
		} else {
			fmt.Fprintf(w, "No %s found.\n", schema.Resource)
		}
		return
	}

	tbl := uitable.New()
	tbl.MaxColWidth = maxCellWidth
	tbl.Separator = "  "

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		label := strings.ToUpper(c)
		if c == view.Sort.Key {
			if view.Sort.Direction == collection.Descending {
				label += " ▼"
			} else {
				label += " ▲"
			}
		}
		header[i] = label
	}
	tbl.AddRow(header...)

	for _, item := range view.Items {
		row := make([]interface{}, len(columns))
		for i, c := range columns {
			row[i] = schema.Text(item, c)
		}
		tbl.AddRow(row...)
	}

	// The header is styled after layout so escape codes do not skew widths.
	lines := strings.SplitN(tbl.String(), "\n", 2)
	bold := color.New(color.Bold)
	if colored {
		bold.EnableColor()
	} else {
		bold.DisableColor()
	}
	fmt.Fprintln(w, bold.Sprint(lines[0]))
	if len(lines) > 1 {
		fmt.Fprintln(w, lines[1])
	}

	first, last := view.Range()
	fmt.Fprintf(w, "\nPage %d of %d (showing %d-%d of %d", view.Page.Page, max(view.TotalPages, 1), first, last, view.Filtered)
	if view.Filtered != view.Total {
		fmt.Fprintf(w, ", %d total", view.Total)
	}
	fmt.Fprintln(w, ")")
}

// renderRows prints every given row, without pagination.
func renderRows[T any](w io.Writer, schema collection.Schema[T], columns []string, items []T, sort collection.SortState, colored bool) {
	view := collection.View[T]{
		Page:     collection.Paginate(items, 1, max(len(items), 1)),
		Filtered: len(items),
		Total:    len(items),
		Sort:     sort,
	}
	renderTable(w, schema, columns, view, colored)
}

// renderDetail prints every field of one item as a two-column table.
func renderDetail[T any](w io.Writer, schema collection.Schema[T], item T) {
	tbl := uitable.New()
	tbl.MaxColWidth = 80
	tbl.Wrap = true
	for _, f := range schemaFields(schema) {
		tbl.AddRow(f+":", schema.Text(item, f))
	}
	fmt.Fprintln(w, tbl)
}

// schemaFields returns the declared field names, id first.
func schemaFields[T any](schema collection.Schema[T]) []string {
	fields := make([]string, 0, len(schema.Fields))
	for name := range schema.Fields {
		if name != "id" {
			fields = append(fields, name)
		}
	}
	slices.Sort(fields)
	if schema.HasField("id") {
		fields = append([]string{"id"}, fields...)
	}
	return fields
}

// checkFields rejects names the schema does not declare.
func checkFields[T any](schema collection.Schema[T], what string, names ...string) error {
	for _, n := range names {
		if !schema.HasField(n) {
			return fmt.Errorf("unknown %s %q for %s (valid: %s)", what, n, schema.Resource, strings.Join(schemaFields(schema), ", "))
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
