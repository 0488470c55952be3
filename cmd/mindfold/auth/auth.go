// Package authcmder provides the auth commands for the sync service
// account lifecycle.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mindfoldco/mindfold/pkg/cliui"
	"github.com/mindfoldco/mindfold/pkg/config"
	"github.com/mindfoldco/mindfold/pkg/session"
)

const authLongDesc string = `Manage the sync service account for this machine.

Credentials are stored in credentials.toml in the .mindfold/ directory
and restored automatically on the next run. Logging out removes the
cloud workspace immediately; the server session is revoked in the
background.

Examples:
  mindfold auth register         Create an account and log in
  mindfold auth login            Log in to an existing account
  mindfold auth whoami           Show the logged-in account
  mindfold auth logout           Log out and forget credentials`

const authShortDesc string = "Manage the sync service account"

func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
	}

	cmd.AddCommand(newRegisterCmd())
	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newWhoamiCmd())

	return cmd
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register [email]",
		Short: "Create a sync service account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthenticate(cmd, args, true)
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [email]",
		Short: "Log in to the sync service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthenticate(cmd, args, false)
		},
	}
}

func runAuthenticate(cmd *cobra.Command, args []string, register bool) error {
	configDir, _ := cmd.Flags().GetString("config-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	email := ""
	if len(args) > 0 {
		email = args[0]
	}

	email, password, err := readLoginInput(email)
	if err != nil {
		return err
	}

	s, err := session.Open(cmd.Context(), session.Options{
		ConfigDir: configDir,
		Debug:     debug,
		Mode:      config.ModeLocalCloud,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	a := s.Cloud()
	if a == nil {
		return errors.New("cloud adapter unavailable")
	}

	resp := a.Register
	if !register {
		resp = a.Login
	}

	result := resp(cmd.Context(), email, password)
	if !result.Success {
		return fmt.Errorf("authentication failed: %s", result.Error)
	}

	if err := s.Service.AddCloudWorkspace(result.User); err != nil {
		return err
	}

	fmt.Printf("\n  %s Logged in as %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(result.User.Email),
	)

	return nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of the sync service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			debug, _ := cmd.Flags().GetBool("debug")

			s, err := session.Open(cmd.Context(), session.Options{
				ConfigDir: configDir,
				Debug:     debug,
				Mode:      config.ModeLocalCloud,
			})
			if err != nil {
				return err
			}
			defer s.Close()

			if !s.Service.IsCloudAuthenticated() {
				fmt.Printf("\n  %s Not logged in.\n\n", cliui.DimStyle.Render("●"))
				return nil
			}

			if err := s.Service.LogoutFromCloud(); err != nil {
				return err
			}

			fmt.Printf("\n  %s Logged out.\n\n", cliui.SuccessMark)
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in sync service account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			debug, _ := cmd.Flags().GetBool("debug")

			s, err := session.Open(cmd.Context(), session.Options{
				ConfigDir: configDir,
				Debug:     debug,
				Mode:      config.ModeLocalCloud,
			})
			if err != nil {
				return err
			}
			defer s.Close()

			user := s.Service.CloudUser()
			if user == nil {
				fmt.Printf("\n  %s Not logged in.\n", cliui.DimStyle.Render("●"))
				fmt.Printf("  Use 'mindfold auth login' to log in.\n\n")
				return nil
			}

			fmt.Printf("\n  %s Logged in as %s %s\n\n",
				cliui.SuccessMark,
				cliui.NameStyle.Render(user.Email),
				cliui.DimStyle.Render("("+user.ID+")"),
			)
			return nil
		},
	}
}

// readLoginInput collects the email and password. Piped stdin supplies
// "email password" or just the password when the email argument is given.
func readLoginInput(email string) (string, string, error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return "", "", fmt.Errorf("checking stdin: %w", err)
	}

	// Piped input
	if (fi.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", "", fmt.Errorf("reading stdin: %w", err)
			}
			return "", "", errors.New("no input received on stdin")
		}

		fields := strings.Fields(scanner.Text())
		switch {
		case email == "" && len(fields) >= 2:
			return fields[0], fields[1], nil
		case email != "" && len(fields) >= 1:
			return email, fields[0], nil
		default:
			return "", "", errors.New("expected 'email password' on stdin")
		}
	}

	// Interactive terminal
	if email == "" {
		fmt.Print("Email: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			return "", "", errors.New("no email entered")
		}
		email = strings.TrimSpace(scanner.Text())
	}
	if email == "" {
		return "", "", errors.New("email cannot be empty")
	}

	fmt.Printf("Password for %s: ", email)
	pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", "", fmt.Errorf("reading password: %w", err)
	}
	if len(pwBytes) == 0 {
		return "", "", errors.New("password cannot be empty")
	}

	return email, string(pwBytes), nil
}
