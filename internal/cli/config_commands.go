// Package cli provides configuration management commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/config"
	"github.com/learnhub/learnadmin/internal/resources"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage learnadmin configuration",
		Long: `Configuration management commands for learnadmin.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  set   - Change a single setting
  test  - Test API connection and login
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigSetCmd())
	configCmd.AddCommand(newConfigTestCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for learnadmin.

The configuration will be saved to ~/.config/learnadmin/config
(or the file given with --config).

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()
			out := cmd.OutOrStdout()

			configPath := config.ResolveConfigPath(cfgFile)
			if configPath == "" {
				return fmt.Errorf("failed to determine config path")
			}
			expanded, err := config.ExpandPath(configPath)
			if err != nil {
				return err
			}

			if !force {
				if _, err := os.Stat(expanded); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", expanded)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Fprintln(out, "LearnHub Admin Configuration Setup")
			fmt.Fprintln(out, "==================================")
			fmt.Fprintln(out)

			p := newPrompter(cmd.InOrStdin(), out)
			cfg := config.NewConfig()

			for {
				answer, err := p.Line("API Base URL", cfg.BaseURL)
				if err != nil {
					return err
				}
				cfg.BaseURL = strings.TrimSuffix(answer, "/")
				if err := cfg.Validate(); err != nil {
					fmt.Fprintf(out, "  Error: %v\n", err)
					continue
				}
				break
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "Display Settings (press Enter for defaults)")
			fmt.Fprintln(out, "--------------------------------------------")

			pageSize, err := p.Line("Rows per page", strconv.Itoa(cfg.PageSize))
			if err != nil {
				return err
			}
			if err := cfg.Set("display.page_size", pageSize); err != nil {
				fmt.Fprintf(out, "  Keeping default: %v\n", err)
			}

			fmt.Fprintln(out)
			useProxy, err := p.Confirm(cmd.Context(), "Configure proxy?")
			if err != nil {
				return err
			}
			if useProxy {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Proxy Configuration")
				fmt.Fprintln(out, "-------------------")
				fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
				mode, err := p.Line("Proxy mode", "system")
				if err != nil {
					return err
				}
				_ = cfg.Set("proxy.mode", mode)

				if cfg.ProxyMode != "no-proxy" && cfg.ProxyMode != "system" {
					host, err := p.Line("Proxy host", "")
					if err != nil {
						return err
					}
					cfg.ProxyHost = host

					port, err := p.Line("Proxy port", strconv.Itoa(cfg.ProxyPort))
					if err != nil {
						return err
					}
					if err := cfg.Set("proxy.port", port); err != nil {
						fmt.Fprintf(out, "  Keeping default: %v\n", err)
					}

					user, err := p.Line("Proxy user", "")
					if err != nil {
						return err
					}
					cfg.ProxyUser = user
					if user != "" {
						if cfg.ProxyPassword, err = p.Password("Proxy password"); err != nil {
							return err
						}
					}
				}
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.Save(cfg, expanded); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			logger.Info().Str("path", expanded).Msg("Configuration saved")

			fmt.Fprintln(out)
			fmt.Fprintf(out, "✓ Configuration saved to: %s\n", expanded)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Sign in with: learnadmin login")
			fmt.Fprintln(out, "Then test your configuration with: learnadmin config test")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

The base URL is resolved from:
  1. Command-line flag (--api-url)
  2. Environment variable (LEARNADMIN_API_URL)
  3. Configuration file (~/.config/learnadmin/config)

Priority: flags > environment > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, configPath, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			baseURL, source := config.ResolveBaseURL(apiBaseURL, cfg)

			fmt.Fprintln(out, "Current Configuration")
			fmt.Fprintln(out, "=====================")
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Backend Settings:")
			fmt.Fprintf(out, "  API Base URL:    %s (from %s)\n", baseURL, source)
			if cfg.RequestTimeout > 0 {
				fmt.Fprintf(out, "  Request Timeout: %s\n", cfg.RequestTimeout)
			} else {
				fmt.Fprintln(out, "  Request Timeout: none")
			}
			fmt.Fprintf(out, "  Max Retries:     %d\n", cfg.MaxRetries)
			fmt.Fprintf(out, "  Rate Limit:      %g req/s (burst %g)\n", cfg.RequestsPerSecond, cfg.Burst)
			if config.AccessTokenOverride() != "" {
				// Never display any portion of a token.
				fmt.Fprintf(out, "  Access Token:    <set via %s>\n", config.EnvToken)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Proxy Settings:")
			fmt.Fprintf(out, "  Proxy Mode: %s\n", cfg.ProxyMode)
			if cfg.ProxyHost != "" {
				fmt.Fprintf(out, "  Proxy Host: %s\n", cfg.ProxyHost)
				fmt.Fprintf(out, "  Proxy Port: %d\n", cfg.ProxyPort)
			}
			if cfg.ProxyUser != "" {
				fmt.Fprintf(out, "  Proxy User: %s\n", cfg.ProxyUser)
			}
			if cfg.ProxyPassword != "" {
				fmt.Fprintln(out, "  Proxy Password: <set>")
			}
			if cfg.NoProxy != "" {
				fmt.Fprintf(out, "  No Proxy:   %s\n", cfg.NoProxy)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Display Settings:")
			fmt.Fprintf(out, "  Page Size:             %d\n", cfg.PageSize)
			fmt.Fprintf(out, "  Color:                 %t\n", cfg.Color)
			fmt.Fprintf(out, "  Desktop Notifications: %t\n", cfg.DesktopNotifications)
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Configuration file: %s\n", configPath)
			if expanded, err := config.ExpandPath(configPath); err == nil {
				if _, err := os.Stat(expanded); os.IsNotExist(err) {
					fmt.Fprintln(out, "  (file does not exist - using defaults)")
				}
			}

			return nil
		},
	}

	return cmd
}

// newConfigSetCmd creates the 'config set' command.
func newConfigSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change a single configuration value",
		Long: `Change a single configuration value and save the file.

Valid keys:
  ` + strings.Join(config.SettableKeys(), "\n  "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: config.SettableKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, configPath, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.Save(cfg, configPath); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			GetLogger().Debug().Str("key", args[0]).Str("path", configPath).Msg("Configuration updated")
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s updated\n", strings.ToLower(args[0]))
			return nil
		},
	}

	return cmd
}

// newConfigTestCmd creates the 'config test' command.
func newConfigTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test API connection",
		Long: `Test the API connection with current configuration.

Use this to verify your login and network connectivity. The test lists
courses, which requires a valid session. A proxy user without a saved
password is asked for one, also when input is piped.`,
		Annotations: map[string]string{annotationAskProxyPassword: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Testing API Connection")
			fmt.Fprintln(out, "======================")
			fmt.Fprintln(out)

			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(out, "API URL: %s (from %s)\n", a.client.BaseURL(), a.urlSource)
			if err := a.requireLogin(); err != nil {
				fmt.Fprintln(out, "✗ Not logged in")
				return err
			}
			fmt.Fprintln(out, "Testing connection...")
			fmt.Fprintln(out)

			ctx, cancel := context.WithTimeout(GetContext(), 15*time.Second)
			defer cancel()

			courses, err := resources.Courses().NewResource(a.client).List(ctx)
			if err != nil {
				a.logger.Error().Err(err).Msg("Connection test failed")
				fmt.Fprintln(out, "✗ Connection FAILED")
				fmt.Fprintf(out, "  Error: %s\n", api.UserMessage(err))
				return reported(fmt.Errorf("connection test failed: %w", err))
			}

			a.logger.Info().Msg("Connection test successful")

			fmt.Fprintln(out, "✓ Connection SUCCESSFUL")
			fmt.Fprintln(out)
			if claims, err := a.session.Claims(); err == nil && claims.Email != "" {
				fmt.Fprintf(out, "Signed in as: %s\n", claims.Email)
			}
			fmt.Fprintf(out, "Courses visible: %d\n", len(courses))
			return nil
		},
	}

	return cmd
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Long:  `Display the path to the configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			configPath := config.ResolveConfigPath(cfgFile)
			if cfgFile != "" {
				fmt.Fprintln(out, "Configuration path (from --config flag):")
			} else {
				fmt.Fprintln(out, "Configuration path:")
			}
			fmt.Fprintf(out, "  %s\n", configPath)
			fmt.Fprintln(out)

			expanded, err := config.ExpandPath(configPath)
			if err != nil {
				return err
			}
			if info, err := os.Stat(expanded); err == nil {
				fmt.Fprintln(out, "Status: ✓ File exists")
				fmt.Fprintf(out, "Size:   %d bytes\n", info.Size())
				fmt.Fprintf(out, "Modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Create a configuration file with: learnadmin config init")
			}

			return nil
		},
	}

	return cmd
}
