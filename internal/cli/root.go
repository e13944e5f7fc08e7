// Package cli provides the command-line interface for learnadmin.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/logging"
	"github.com/learnhub/learnadmin/internal/resources"
	"github.com/learnhub/learnadmin/internal/version"
)

var (
	// Global flags
	cfgFile    string
	apiBaseURL string
	verbose    bool
	debug      bool
	jsonOutput bool
	quiet      bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "learnadmin",
		Short: "learnadmin - admin console for the LearnHub backend",
		Long: `learnadmin ` + version.Version + ` - Built: ` + version.BuildTime + `
Command-line admin console for courses, digital products, order bumps,
CRM contacts and tags, sales pages, checkout pages and transactions.

Every resource supports the same list view: search, exact filters,
sorting and pagination, plus the row actions the backend offers.

  learnadmin login
  learnadmin courses list --search go --filter status=active --sort price --desc
  learnadmin courses toggle-status 64f1c0
  learnadmin contacts delete 12 13 14
  learnadmin tags browse`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger(cmd.ErrOrStderr())
			logging.SetVerbose(verbose || debug)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default ~/.config/learnadmin/config)")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "Backend API base URL (overrides config and LEARNADMIN_API_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON instead of tables")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress success notifications")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	rootCmd.AddCommand(newCompletionCmd(rootCmd))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate a shell completion script",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		Long: `Generate a shell completion script for learnadmin.

  source <(learnadmin completion bash)
  learnadmin completion zsh > "${fpath[1]}/_learnadmin"
  learnadmin completion fish > ~/.config/fish/completions/learnadmin.fish`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(out)
			case "zsh":
				return rootCmd.GenZshCompletion(out)
			case "fish":
				return rootCmd.GenFishCompletion(out, true)
			default:
				return rootCmd.GenPowerShellCompletion(out)
			}
		},
	}
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.ExecuteContext(rootContext)

	signal.Stop(sigChan)
	close(sigChan)

	if err != nil && !isReported(err) {
		fmt.Fprintln(os.Stderr, "Error:", api.UserMessage(err))
	}
	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newResourcesCmd())

	rootCmd.AddCommand(newResourceCmd(resources.Courses()))
	rootCmd.AddCommand(newResourceCmd(resources.Products()))
	rootCmd.AddCommand(newResourceCmd(resources.OrderBumps()))
	rootCmd.AddCommand(newResourceCmd(resources.Contacts()))
	rootCmd.AddCommand(newResourceCmd(resources.Tags()))
	rootCmd.AddCommand(newResourceCmd(resources.Transactions()))
	rootCmd.AddCommand(newResourceCmd(resources.SalesPages()))
	rootCmd.AddCommand(newResourceCmd(resources.CheckoutPages()))
	rootCmd.AddCommand(newResourceCmd(resources.Explore()))

	AddShortcuts(rootCmd)
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// reportedError marks an error the user has already seen as a notification,
// so Execute does not print it a second time.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func isReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
