package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/collection"
	"github.com/learnhub/learnadmin/internal/constants"
	"github.com/learnhub/learnadmin/internal/progress"
	"github.com/learnhub/learnadmin/internal/resources"
	ustrings "github.com/learnhub/learnadmin/internal/util/strings"
)

// resourceView is one list screen: the loaded list and the dispatcher that
// runs row actions against it.
type resourceView[T any] struct {
	app     *app
	binding resources.Binding[T]
	backend *api.Resource[T]
	list    *collection.List[T]
	actions *collection.Dispatcher[T]
}

// openResource wires a list and dispatcher for b. confirm may be nil for
// commands that never delete. Callers must Close the view.
func openResource[T any](cmd *cobra.Command, b resources.Binding[T], confirm collection.Confirmer) (*resourceView[T], error) {
	a, err := getApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := a.requireLogin(); err != nil {
		a.Close()
		return nil, err
	}

	backend := b.NewResource(a.client)
	fetcher := collection.NewFetcher(b.Name, backend, a.notifier, a.logger)
	list := collection.NewList(b.Schema, fetcher, a.bus)
	list.SetPageSize(a.cfg.PageSize)

	actions := collection.NewDispatcher(list, backend, collection.DispatcherOptions[T]{
		Confirmer: confirm,
		Notifier:  a.notifier,
		Logger:    a.logger,
	})

	return &resourceView[T]{app: a, binding: b, backend: backend, list: list, actions: actions}, nil
}

// Close cancels any load in flight and releases the app.
func (v *resourceView[T]) Close() {
	v.list.Close()
	v.app.Close()
}

func (v *resourceView[T]) load(ctx context.Context) error {
	return actionError(v.list.Load(ctx))
}

func (v *resourceView[T]) colored() bool {
	return v.app.cfg.Color && !color.NoColor
}

// actionError maps a failed load or row action to the command's error. The
// notifier has already shown everything except cancellation.
func actionError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, api.ErrCancelled), errors.Is(err, context.Canceled):
		return err
	default:
		return reported(err)
	}
}

// newResourceCmd creates the command group for one resource. Write
// subcommands are only added when the backend offers the action.
func newResourceCmd[T any](b resources.Binding[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     b.Name,
		Aliases: b.Aliases,
		Short:   b.Short,
		Long: b.Short + `

Fields: ` + strings.Join(schemaFields(b.Schema), ", ") + `

Examples:
  learnadmin ` + b.Name + ` list --search text --sort ` + defaultSortKey(b) + ` --desc
  learnadmin ` + b.Name + ` get ID
  learnadmin ` + b.Name + ` browse`,
	}

	cmd.AddCommand(newListCmd(b))
	cmd.AddCommand(newGetCmd(b))
	if b.Endpoints.Create != "" {
		cmd.AddCommand(newCreateCmd(b))
	}
	if b.Endpoints.Update != "" {
		cmd.AddCommand(newUpdateCmd(b))
	}
	if b.Endpoints.Delete != "" {
		cmd.AddCommand(newDeleteCmd(b))
	}
	if b.Endpoints.Status != "" && b.Schema.Status != nil {
		cmd.AddCommand(newToggleStatusCmd(b))
	}
	cmd.AddCommand(newBrowseCmd(b))

	return cmd
}

func defaultSortKey[T any](b resources.Binding[T]) string {
	for _, c := range b.Schema.Columns {
		if c != "id" {
			return c
		}
	}
	return "id"
}

// listOptions are the flags shared by 'list' and 'ls'.
type listOptions struct {
	search   string
	filters  []string
	sortKey  string
	desc     bool
	page     int
	pageSize int
	columns  []string
	all      bool
}

func (o *listOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.search, "search", "s", "", "Free-text search (case-insensitive)")
	cmd.Flags().StringArrayVarP(&o.filters, "filter", "f", nil, "Exact filter FIELD=VALUE (repeatable)")
	cmd.Flags().StringVar(&o.sortKey, "sort", "", "Sort by field")
	cmd.Flags().BoolVar(&o.desc, "desc", false, "Sort descending")
	cmd.Flags().IntVarP(&o.page, "page", "p", 1, "Page number (clamped to the last page)")
	cmd.Flags().IntVarP(&o.pageSize, "page-size", "n", 0, fmt.Sprintf("Rows per page, 1-%d (default from config)", constants.MaxPageSize))
	cmd.Flags().StringSliceVar(&o.columns, "columns", nil, "Columns to show (comma-separated)")
	cmd.Flags().BoolVarP(&o.all, "all", "a", false, "Show every matching row without pagination")
}

// parseFilters splits FIELD=VALUE pairs and checks the fields exist.
func parseFilters[T any](schema collection.Schema[T], raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, f := range raw {
		field, value, ok := strings.Cut(f, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q: expected FIELD=VALUE", f)
		}
		if err := checkFields(schema, "filter field", field); err != nil {
			return nil, err
		}
		out[field] = value
	}
	return out, nil
}

// validate rejects bad flags before any request is made.
func validateListOptions[T any](schema collection.Schema[T], o listOptions) error {
	if _, err := parseFilters(schema, o.filters); err != nil {
		return err
	}
	if o.sortKey != "" {
		if err := checkFields(schema, "sort field", o.sortKey); err != nil {
			return err
		}
	}
	if err := checkFields(schema, "column", o.columns...); err != nil {
		return err
	}
	if o.pageSize < 0 || o.pageSize > constants.MaxPageSize {
		return fmt.Errorf("--page-size must be between 1 and %d, got %d", constants.MaxPageSize, o.pageSize)
	}
	return nil
}

// applyListOptions configures a loaded list. The page is applied last so it
// is clamped against the filtered result.
func applyListOptions[T any](list *collection.List[T], o listOptions, defaultSize int) {
	size := o.pageSize
	if size == 0 {
		size = defaultSize
	}
	list.SetPageSize(size)
	list.SetQuery(o.search)
	filters, _ := parseFilters(list.Schema(), o.filters)
	for field, value := range filters {
		list.SetExactFilter(field, value)
	}
	if o.sortKey != "" {
		dir := collection.Ascending
		if o.desc {
			dir = collection.Descending
		}
		list.SetSort(collection.SortState{Key: o.sortKey, Direction: dir})
	}
	list.SetPage(o.page)
}

// pageJSON is the --json form of a list.
type pageJSON[T any] struct {
	Items      []T    `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
	Filtered   int    `json:"filtered"`
	Total      int    `json:"total"`
	Sort       string `json:"sort,omitempty"`
}

func newListCmd[T any](b resources.Binding[T]) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List " + b.Name,
		Long: `List ` + b.Name + ` with search, exact filters, sorting and pagination.

The whole collection is fetched with one request; filtering, sorting and
paging happen locally. Text fields matched by --search: ` + strings.Join(b.Schema.TextFields, ", ") + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, b, opts)
		},
	}
	opts.bind(cmd)

	return cmd
}

func runList[T any](cmd *cobra.Command, b resources.Binding[T], opts listOptions) error {
	if err := validateListOptions(b.Schema, opts); err != nil {
		return err
	}

	v, err := openResource(cmd, b, nil)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.load(cmd.Context()); err != nil {
		return err
	}
	applyListOptions(v.list, opts, v.app.cfg.PageSize)

	columns := b.Schema.Columns
	if len(opts.columns) > 0 {
		columns = opts.columns
	}

	out := cmd.OutOrStdout()
	view := v.list.View()
	if opts.all {
		items := v.list.Filtered()
		if jsonOutput {
			return writeJSON(out, pageJSON[T]{
				Items: items, Page: 1, PageSize: len(items), TotalPages: 1,
				Filtered: view.Filtered, Total: view.Total, Sort: sortLabel(view.Sort),
			})
		}
		renderRows(out, b.Schema, columns, items, view.Sort, v.colored())
		return nil
	}

	if jsonOutput {
		return writeJSON(out, pageJSON[T]{
			Items:      view.Items,
			Page:       view.Page.Page,
			PageSize:   view.PageSize,
			TotalPages: view.TotalPages,
			Filtered:   view.Filtered,
			Total:      view.Total,
			Sort:       sortLabel(view.Sort),
		})
	}
	renderTable(out, b.Schema, columns, view, v.colored())
	return nil
}

func sortLabel(s collection.SortState) string {
	if s.Key == "" {
		return ""
	}
	return s.Key + " " + s.Direction.String()
}

func newGetCmd[T any](b resources.Binding[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get ID",
		Short: "Show one " + strings.ToLower(b.Schema.Singular),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openResource(cmd, b, nil)
			if err != nil {
				return err
			}
			defer v.Close()

			item, err := fetchOne(cmd.Context(), v, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), item)
			}
			renderDetail(cmd.OutOrStdout(), b.Schema, item)
			return nil
		},
	}

	return cmd
}

// fetchOne uses the single-item endpoint, or the list when there is none.
func fetchOne[T any](ctx context.Context, v *resourceView[T], id string) (T, error) {
	if v.binding.Endpoints.Get != "" {
		item, err := v.backend.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, api.ErrCancelled) && !errors.Is(err, context.Canceled) {
				v.app.notifier.Error(v.binding.Name, err)
			}
			return item, actionError(err)
		}
		return item, nil
	}

	var zero T
	if err := v.load(ctx); err != nil {
		return zero, err
	}
	item, ok := v.list.Find(id)
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", v.binding.Schema.Singular, id, api.ErrNotFound)
	}
	return item, nil
}

// readPayload reads JSON from path, or stdin when path is "-".
func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("--file is required (use - for stdin)")
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return data, nil
}

// decodeStrict unmarshals data into out, rejecting unknown fields so typos
// do not silently drop values.
func decodeStrict(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func newCreateCmd[T any](b resources.Binding[T]) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create --file FILE",
		Short: "Create a " + strings.ToLower(b.Schema.Singular) + " from JSON",
		Long: `Create a ` + strings.ToLower(b.Schema.Singular) + ` from a JSON document.

  learnadmin ` + b.Name + ` create --file new.json
  echo '{...}' | learnadmin ` + b.Name + ` create --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			var item T
			if err := decodeStrict(data, &item); err != nil {
				return err
			}

			v, err := openResource(cmd, b, nil)
			if err != nil {
				return err
			}
			defer v.Close()

			created, err := v.actions.Add(cmd.Context(), item)
			if err != nil {
				return actionError(err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.Schema.ID(created))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "F", "", "JSON file with the new item (- for stdin)")

	return cmd
}

func newUpdateCmd[T any](b resources.Binding[T]) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update ID --file FILE",
		Short: "Update a " + strings.ToLower(b.Schema.Singular) + " from JSON",
		Long: `Update a ` + strings.ToLower(b.Schema.Singular) + `. The current version is loaded and the
fields present in the JSON document replace its values; absent fields are
kept.

  echo '{"price": 499}' | learnadmin ` + b.Name + ` update ID --file -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			var check T
			if err := decodeStrict(data, &check); err != nil {
				return err
			}

			v, err := openResource(cmd, b, nil)
			if err != nil {
				return err
			}
			defer v.Close()

			if b.Endpoints.Get == "" {
				// Edit works on the listed copy.
				if err := v.load(cmd.Context()); err != nil {
					return err
				}
			}

			var mergeErr error
			updated, err := v.actions.Edit(cmd.Context(), args[0], func(current T) (T, error) {
				mergeErr = json.Unmarshal(data, &current)
				return current, mergeErr
			})
			if err != nil {
				if mergeErr != nil {
					return fmt.Errorf("invalid JSON: %w", mergeErr)
				}
				return actionError(err)
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), updated)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "F", "", "JSON file with the changed fields (- for stdin)")

	return cmd
}

func newDeleteCmd[T any](b resources.Binding[T]) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID [ID...]",
		Short: "Delete " + b.Name,
		Long: `Delete one or more ` + b.Name + ` after confirmation. Only ids the backend
confirmed as deleted are removed; failures are reported per id.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, b, args, yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// deleteJSON is the --json form of a delete.
type deleteJSON struct {
	Requested int      `json:"requested"`
	Deleted   int      `json:"deleted"`
	Failed    []string `json:"failed,omitempty"`
}

func runDelete[T any](cmd *cobra.Command, b resources.Binding[T], ids []string, yes bool) error {
	var confirm collection.Confirmer = collection.AlwaysConfirm
	if !yes {
		confirm = newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	}

	v, err := openResource(cmd, b, confirm)
	if err != nil {
		return err
	}
	defer v.Close()

	// The list supplies titles for the prompt.
	if err := v.load(cmd.Context()); err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	bar := progress.New(errOut, isTerminal(errOut), quiet || jsonOutput || len(ids) == 1)
	var startOnce sync.Once
	var failed []string
	onEach := func(id string, err error) {
		startOnce.Do(func() {
			bar.Start(len(ids), "Deleting "+ustrings.Count(len(ids), b.Schema.Singular))
		})
		if err != nil {
			failed = append(failed, id)
		}
		bar.Step(id, err)
	}

	deleted, err := v.actions.DeleteMany(cmd.Context(), ids, onEach)
	bar.Finish()
	if errors.Is(err, collection.ErrDeclined) {
		fmt.Fprintln(errOut, "Aborted.")
		return nil
	}

	if jsonOutput {
		if werr := writeJSON(cmd.OutOrStdout(), deleteJSON{Requested: len(ids), Deleted: deleted, Failed: failed}); werr != nil {
			return werr
		}
	} else if len(ids) > 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", ustrings.Count(deleted, b.Schema.Singular))
	}
	return actionError(err)
}

func newToggleStatusCmd[T any](b resources.Binding[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "toggle-status ID",
		Aliases: []string{"toggle"},
		Short:   "Flip the status of a " + strings.ToLower(b.Schema.Singular),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := openResource(cmd, b, nil)
			if err != nil {
				return err
			}
			defer v.Close()

			if err := v.load(cmd.Context()); err != nil {
				return err
			}
			next, err := v.actions.ToggleStatus(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, api.ErrNotFound) {
					return err
				}
				return actionError(err)
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"id": args[0], "status": string(next)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), next)
			return nil
		},
	}

	return cmd
}

func newBrowseCmd[T any](b resources.Binding[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse " + b.Name + " interactively",
		Long: `Open an interactive list of ` + b.Name + `. Type ? at the prompt for the
available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, b)
		},
	}

	return cmd
}
