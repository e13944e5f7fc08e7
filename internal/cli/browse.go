package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/collection"
	"github.com/learnhub/learnadmin/internal/events"
	"github.com/learnhub/learnadmin/internal/resources"
	ustrings "github.com/learnhub/learnadmin/internal/util/strings"
)

const browseHelp = `Commands:
  n, next            next page
  p, prev            previous page
  g, page N          go to page N
  / TEXT             search (empty clears)
  f, filter F=V      exact filter (F= clears it)
  c, clear           clear search and filters
  s, sort FIELD      sort by FIELD; again to reverse
  size N             rows per page
  v, view ID         show one row
  d, delete ID       delete a row
  t, toggle ID       flip a row's status
  r, reload          fetch again
  q, quit            leave`

// runBrowse is an interactive list screen reading commands from stdin.
// Failures are shown as notifications and never end the session.
func runBrowse[T any](cmd *cobra.Command, b resources.Binding[T]) error {
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	v, err := openResource(cmd, b, p)
	if err != nil {
		return err
	}
	defer v.Close()

	watch := watchList(v.app.bus, b.Schema.Resource)
	defer watch.Close()

	ctx := cmd.Context()
	if err := v.load(ctx); err != nil && !isReported(err) {
		return err
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		changed, loaded := watch.drain()
		if loaded && changed != nil && v.list.Err() == nil {
			fmt.Fprintf(out, "Loaded %s.\n", ustrings.Count(changed.Total, b.Schema.Singular))
		}
		if changed != nil {
			fmt.Fprintln(out)
			renderTable(out, b.Schema, b.Schema.Columns, v.list.View(), v.colored())
		}

		fmt.Fprintf(out, "%s> ", b.Name)
		line, err := p.readLine()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		verb, arg := splitCommand(line)
		switch verb {
		case "":
		case "q", "quit", "exit":
			return nil
		case "?", "h", "help":
			fmt.Fprintln(out, browseHelp)
		case "n", "next":
			v.list.NextPage()
		case "p", "prev":
			v.list.PrevPage()
		case "g", "page":
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintf(out, "Not a page number: %q\n", arg)
				continue
			}
			v.list.SetPage(n)
		case "size":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				fmt.Fprintf(out, "Not a page size: %q\n", arg)
				continue
			}
			v.list.SetPageSize(n)
		case "/", "search":
			v.list.SetQuery(arg)
		case "f", "filter":
			filters, err := parseFilters(b.Schema, []string{arg})
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			for field, value := range filters {
				v.list.SetExactFilter(field, value)
			}
		case "c", "clear":
			v.list.ClearFilters()
		case "s", "sort":
			if err := checkFields(b.Schema, "sort field", arg); err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			v.list.ToggleSort(arg)
		case "v", "view":
			item, ok := v.list.Find(arg)
			if !ok {
				fmt.Fprintf(out, "No %s with id %q in this list.\n", strings.ToLower(b.Schema.Singular), arg)
			} else {
				renderDetail(out, b.Schema, item)
			}
		case "d", "delete":
			if b.Endpoints.Delete == "" {
				fmt.Fprintf(out, "%s cannot be deleted.\n", b.Name)
				continue
			}
			if err := v.actions.Delete(ctx, arg); errors.Is(err, collection.ErrDeclined) {
				fmt.Fprintln(out, "Aborted.")
			}
		case "t", "toggle":
			_, err := v.actions.ToggleStatus(ctx, arg)
			switch {
			case errors.Is(err, api.ErrUnsupported):
				fmt.Fprintf(out, "%s have no status.\n", b.Name)
			case errors.Is(err, api.ErrNotFound):
				fmt.Fprintln(out, err)
			}
		case "r", "reload":
			_ = v.load(ctx)
		default:
			fmt.Fprintf(out, "Unknown command %q. Type ? for help.\n", verb)
		}
	}
}

// listWatch follows a list's events between prompts. Lists publish
// synchronously, so whatever a command changed is buffered by the time
// the command returns.
type listWatch struct {
	bus      *events.EventBus
	resource string
	changed  <-chan events.Event
	loading  <-chan events.Event
}

func watchList(bus *events.EventBus, resource string) *listWatch {
	return &listWatch{
		bus:      bus,
		resource: resource,
		changed:  bus.Subscribe(events.EventCollectionChanged),
		loading:  bus.Subscribe(events.EventCollectionLoading),
	}
}

// drain returns the latest change for the watched resource and whether a
// load finished since the last call.
func (w *listWatch) drain() (last *events.CollectionChangedEvent, loaded bool) {
	for {
		select {
		case ev, ok := <-w.changed:
			if !ok {
				return last, loaded
			}
			if c, ok := ev.(*events.CollectionChangedEvent); ok && c.Resource == w.resource {
				last = c
			}
		case ev, ok := <-w.loading:
			if !ok {
				return last, loaded
			}
			if l, ok := ev.(*events.CollectionLoadingEvent); ok && l.Resource == w.resource && !l.Loading {
				loaded = true
			}
		default:
			return last, loaded
		}
	}
}

func (w *listWatch) Close() {
	w.bus.Unsubscribe(events.EventCollectionChanged, w.changed)
	w.bus.Unsubscribe(events.EventCollectionLoading, w.loading)
}

// splitCommand splits "verb arg..." and accepts "/text" as a search.
func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "/") {
		return "/", strings.TrimSpace(line[1:])
	}
	verb, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(verb), strings.TrimSpace(arg)
}
