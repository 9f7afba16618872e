package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/calmora/calmora-cli/internal/calmora"
	"github.com/calmora/calmora-cli/internal/session"
	"github.com/calmora/calmora-cli/pkg/output"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to Calmora",
	Long:  "Authenticate with the Calmora backend and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		reader := bufio.NewReader(stdin)
		email, err := valueOrPrompt(reader, email, "Email")
		if err != nil {
			return err
		}
		password, err = passwordOrPrompt(password, "Password")
		if err != nil {
			return err
		}

		if err := service().Login(cmd.Context(), email, password); err != nil {
			return err
		}

		output.Success("Logged in as %s", email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a Calmora account",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		confirm, _ := cmd.Flags().GetString("confirm-password")

		reader := bufio.NewReader(stdin)
		username, err := valueOrPrompt(reader, username, "Username")
		if err != nil {
			return err
		}
		if email, err = valueOrPrompt(reader, email, "Email"); err != nil {
			return err
		}
		// A password given by flag without a confirmation confirms itself
		promptedPassword := password == ""
		if password, err = passwordOrPrompt(password, "Password"); err != nil {
			return err
		}
		if confirm == "" {
			if !promptedPassword {
				confirm = password
			} else if confirm, err = passwordOrPrompt("", "Confirm password"); err != nil {
				return err
			}
		}

		loggedIn, err := service().Register(cmd.Context(), calmora.Registration{
			Username:        username,
			Email:           email,
			Password:        password,
			ConfirmPassword: confirm,
		})
		if err != nil {
			return err
		}

		output.Success("Account %s created", username)
		if loggedIn {
			output.Info("You are now logged in.")
		} else {
			output.Info("Run 'calmora login' to sign in.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of Calmora",
	Long:  "Remove the stored session token. The backend is not contacted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := service().Logout(cmd.Context()); err != nil {
			return err
		}
		output.Success("Logged out")
		return nil
	},
}

type statusView struct {
	Authenticated bool       `json:"authenticated" yaml:"authenticated"`
	BaseURL       string     `json:"base_url" yaml:"base_url"`
	Backend       string     `json:"session_backend" yaml:"session_backend"`
	Subject       string     `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	Expired       bool       `json:"expired,omitempty" yaml:"expired,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a session token is stored",
	Long: `Show whether a session token is stored.

The token payload is decoded without verification for display only;
the backend remains the only authority on whether it is still valid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		view := statusView{BaseURL: cfg.BaseURL, Backend: cfg.Session.Backend}

		token, err := service().Client().Store().Get(cmd.Context())
		switch {
		case errors.Is(err, session.ErrNoToken):
		case err != nil:
			return fmt.Errorf("failed to read session: %w", err)
		default:
			view.Authenticated = true
			if claims, err := session.DecodeClaims(token); err == nil {
				view.Subject = claims.Subject
				if !claims.ExpiresAt.IsZero() {
					exp := claims.ExpiresAt
					view.ExpiresAt = &exp
				}
				view.Expired = claims.Expired(time.Now())
			}
		}

		if outputFmt != output.FormatTable {
			return output.Render(outputFmt, view, nil)
		}

		if !view.Authenticated {
			output.Warn("Not logged in")
			output.Info("Run 'calmora login' to sign in.")
			return nil
		}
		pairs := [][2]string{{"Backend", view.BaseURL}, {"Session", view.Backend}}
		if view.Subject != "" {
			pairs = append(pairs, [2]string{"User", view.Subject})
		}
		if view.ExpiresAt != nil {
			pairs = append(pairs, [2]string{"Expires", view.ExpiresAt.Local().Format(time.RFC1123)})
		}
		output.Success("Logged in")
		output.KeyValue(pairs)
		if view.Expired {
			output.Warn("The stored token looks expired; run 'calmora login' if requests fail.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")

	registerCmd.Flags().StringP("username", "u", "", "Username")
	registerCmd.Flags().StringP("email", "e", "", "Account email")
	registerCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	registerCmd.Flags().String("confirm-password", "", "Password confirmation (prompted when omitted)")
}
