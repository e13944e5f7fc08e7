package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/auth"
	"github.com/learnhub/learnadmin/internal/models"
)

// reasonUserLogout is the logged-out reason for an explicit 'logout'.
const reasonUserLogout = "logout"

// newLoginCmd creates the 'login' command.
func newLoginCmd() *cobra.Command {
	var email string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the admin backend",
		Long: `Sign in with an admin account and store the session tokens.

The password is read without echo when running in a terminal. For scripts,
pipe it in with --password-stdin:

  learnadmin login --email admin@example.com
  printf '%s' "$PASSWORD" | learnadmin login --email admin@example.com --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
			if email == "" {
				if passwordStdin {
					return errors.New("--email is required with --password-stdin")
				}
				if email, err = p.Line("Email", a.session.Store().Email()); err != nil {
					return err
				}
			}

			var password string
			if passwordStdin {
				password, err = p.readLine()
			} else {
				password, err = p.Password("Password")
			}
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			result, err := a.client.Login(cmd.Context(), models.LoginRequest{Email: email, Password: password})
			if err != nil {
				err = loginError(err)
				a.notifier.Error("login", err)
				return reported(err)
			}
			if err := a.session.Login(result, email); err != nil {
				return fmt.Errorf("failed to store credentials: %w", err)
			}

			a.logger.Debug().Str("email", email).Msg("Logged in")
			a.notifier.Success("login", "Logged in as "+email)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Admin email (default: the last email used)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

// loginError replaces the generic expired-session text of a 401, which
// means wrong credentials here.
func loginError(err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && errors.Is(err, api.ErrUnauthorized) {
		msg := apiErr.Message
		if msg == "" || msg == "Unauthorized" {
			msg = "Invalid email or password"
		}
		return errors.New(msg)
	}
	return err
}

// newLogoutCmd creates the 'logout' command.
func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and remove stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			// Server-side invalidation is best effort; local credentials are
			// always cleared.
			if refresh := a.session.Store().RefreshToken(); refresh != "" {
				if err := a.client.Logout(cmd.Context(), refresh); err != nil {
					a.logger.Debug().Err(err).Msg("Server-side logout failed")
				}
			}
			if err := a.session.Logout(reasonUserLogout); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			a.notifier.Success("logout", "Logged out")
			return nil
		},
	}

	return cmd
}

// whoami is the JSON form of 'whoami'.
type whoami struct {
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Expired   bool      `json:"expired"`
	Source    string    `json:"source"`
}

// newWhoamiCmd creates the 'whoami' command.
func newWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin",
		Long: `Show who the current access token belongs to.

The token is decoded locally; use 'learnadmin config test' to check that the
backend accepts it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := getApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.requireLogin(); err != nil {
				return err
			}
			claims, err := a.session.Claims()
			if err != nil {
				if auth.IsMalformed(err) {
					return errors.New("the stored access token cannot be decoded; run 'learnadmin login' again")
				}
				return err
			}

			info := whoami{
				Email:     claims.Email,
				Role:      claims.Role,
				Subject:   claims.Subject,
				ExpiresAt: claims.ExpiresAt,
				Expired:   claims.Expired(time.Now()),
				Source:    "credential store",
			}
			if info.Email == "" {
				info.Email = a.session.Store().Email()
			}
			if a.session.Token() != a.session.Store().AccessToken() {
				info.Source = "environment"
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			fmt.Fprintf(out, "Email:   %s\n", valueOr(info.Email, "-"))
			fmt.Fprintf(out, "Role:    %s\n", valueOr(info.Role, "-"))
			fmt.Fprintf(out, "Subject: %s\n", valueOr(info.Subject, "-"))
			switch {
			case info.ExpiresAt.IsZero():
				fmt.Fprintln(out, "Expires: never")
			case info.Expired:
				fmt.Fprintf(out, "Expires: %s (expired, will refresh on next request)\n", info.ExpiresAt.Local().Format(time.RFC1123))
			default:
				fmt.Fprintf(out, "Expires: %s (in %s)\n", info.ExpiresAt.Local().Format(time.RFC1123),
					claims.ExpiresIn(time.Now()).Round(time.Minute))
			}
			fmt.Fprintf(out, "Source:  %s\n", info.Source)
			return nil
		},
	}

	return cmd
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
