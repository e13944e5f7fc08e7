// Package cli provides command shortcuts for common operations.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/learnhub/learnadmin/internal/resources"
)

// AddShortcuts adds shortcut commands to the root command.
// Shortcuts provide convenient aliases for commonly-used operations.
func AddShortcuts(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newLsShortcut())
	rootCmd.AddCommand(newRmShortcut())
}

// runner is the type-erased form of a resource's list and delete commands,
// so shortcuts can pick a resource by name at run time.
type runner struct {
	list   func(cmd *cobra.Command, opts listOptions) error
	delete func(cmd *cobra.Command, ids []string, yes bool) error
}

func runnerFor[T any](b resources.Binding[T]) runner {
	r := runner{
		list: func(cmd *cobra.Command, opts listOptions) error { return runList(cmd, b, opts) },
	}
	if b.Endpoints.Delete != "" {
		r.delete = func(cmd *cobra.Command, ids []string, yes bool) error { return runDelete(cmd, b, ids, yes) }
	}
	return r
}

func runners() map[string]runner {
	return map[string]runner{
		resources.Courses().Name:       runnerFor(resources.Courses()),
		resources.Products().Name:      runnerFor(resources.Products()),
		resources.OrderBumps().Name:    runnerFor(resources.OrderBumps()),
		resources.Contacts().Name:      runnerFor(resources.Contacts()),
		resources.Tags().Name:          runnerFor(resources.Tags()),
		resources.Transactions().Name:  runnerFor(resources.Transactions()),
		resources.SalesPages().Name:    runnerFor(resources.SalesPages()),
		resources.CheckoutPages().Name: runnerFor(resources.CheckoutPages()),
		resources.Explore().Name:       runnerFor(resources.Explore()),
	}
}

// lookupRunner resolves a resource name or alias.
func lookupRunner(name string) (runner, string, error) {
	info, ok := resources.Lookup(name)
	if !ok {
		return runner{}, "", fmt.Errorf("unknown resource %q (valid: %s)", name, strings.Join(resourceNames(), ", "))
	}
	return runners()[info.Name], info.Name, nil
}

func resourceNames() []string {
	var names []string
	for _, info := range resources.All() {
		names = append(names, info.Name)
	}
	return names
}

// newLsShortcut creates the 'ls' shortcut command.
// Shortcut for: <resource> list
func newLsShortcut() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "ls [resource]",
		Short: "List a resource (shortcut for '<resource> list')",
		Long: `Shortcut for listing any resource. Defaults to courses.

Equivalent to: learnadmin <resource> list

Examples:
  learnadmin ls
  learnadmin ls contacts --search priya
  learnadmin ls transactions --filter status=failed --sort createdAt --desc`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: resourceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := resources.Courses().Name
			if len(args) == 1 {
				name = args[0]
			}
			r, _, err := lookupRunner(name)
			if err != nil {
				return err
			}
			return r.list(cmd, opts)
		},
	}
	opts.bind(cmd)

	return cmd
}

// newRmShortcut creates the 'rm' shortcut command.
// Shortcut for: <resource> delete
func newRmShortcut() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <resource> <id> [id...]",
		Short: "Delete rows (shortcut for '<resource> delete')",
		Long: `Shortcut for deleting rows of any resource.

Equivalent to: learnadmin <resource> delete <ids>

Examples:
  learnadmin rm courses 64f1c0
  learnadmin rm tags t1 t2 t3 --yes`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, name, err := lookupRunner(args[0])
			if err != nil {
				return err
			}
			if r.delete == nil {
				return fmt.Errorf("%s cannot be deleted", name)
			}
			return r.delete(cmd, args[1:], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// newResourcesCmd creates the 'resources' command.
func newResourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "List the resources learnadmin manages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := resources.All()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), all)
			}
			out := cmd.OutOrStdout()
			for _, info := range all {
				actions := []string{"list"}
				for _, a := range []struct {
					name string
					path string
				}{
					{"get", info.Endpoints.Get},
					{"create", info.Endpoints.Create},
					{"update", info.Endpoints.Update},
					{"delete", info.Endpoints.Delete},
					{"toggle-status", info.Endpoints.Status},
				} {
					if a.path != "" {
						actions = append(actions, a.name)
					}
				}
				fmt.Fprintf(out, "%-15s %s\n", info.Name, info.Short)
				fmt.Fprintf(out, "%-15s actions: %s\n", "", strings.Join(actions, ", "))
			}
			return nil
		},
	}

	return cmd
}
