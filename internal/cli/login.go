// internal/cli/login.go
package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/tokscrape/internal/auth"
	"github.com/law-makers/tokscrape/internal/browser/chrome"
	"github.com/law-makers/tokscrape/internal/ui"
)

var (
	loginSession        string
	waitSelector        string
	loginTimeout        time.Duration
	remoteDebuggingPort int
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to TikTok in a browser window and save the session",
	Long: `Opens a visible browser window on the TikTok login page. Once you are logged
in, the browser's cookies are stored in your OS keyring (or under
~/.tokscrape/sessions when no keyring is available).

Pass the session name to 'tokscrape scrape --session' to scrape as a
logged-in viewer.

For headless environments (dev containers), use --remote-debug and open the
forwarded port in your own browser.`,
	Example: `  # Log in and confirm with Enter
  tokscrape login --session main

  # Finish automatically once the upload button shows up
  tokscrape login --session main --wait '[data-e2e="upload-icon"]'

  # Log in from a dev container
  tokscrape login --session main --remote-debug 9222`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().StringVarP(&loginSession, "session", "s", "", "Session name to save (required)")
	loginCmd.Flags().StringVarP(&waitSelector, "wait", "w", "", "CSS selector that appears once logged in")
	loginCmd.Flags().DurationVar(&loginTimeout, "login-timeout", 5*time.Minute, "Timeout for the login process")
	loginCmd.Flags().IntVar(&remoteDebuggingPort, "remote-debug", 0, "Expose Chrome DevTools on this port (e.g., 9222)")
	loginCmd.MarkFlagRequired("session")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}

	store, err := auth.DefaultStore()
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", ui.Bold("🔐 Interactive Login"))
	fmt.Fprintf(out, "%s\n\n", ui.Rule())
	fmt.Fprintf(out, "  %s %s\n", ui.Label("Session"), ui.Value(loginSession))
	if waitSelector != "" {
		fmt.Fprintf(out, "  %s %s\n", ui.Label("Waiting"), ui.Value(waitSelector))
	}
	fmt.Fprintf(out, "  %s %s\n", ui.Label("Timeout"), ui.Value(loginTimeout.String()))

	session, err := auth.InteractiveLogin(cmd.Context(), auth.LoginOptions{
		SessionName:         loginSession,
		WaitSelector:        waitSelector,
		Timeout:             loginTimeout,
		ExecPath:            chrome.Locate(a.Config.ChromePath),
		UserAgent:           a.Config.UserAgent,
		Proxy:               a.Config.Proxy,
		RemoteDebuggingPort: remoteDebuggingPort,
		Confirm:             cmd.InOrStdin(),
		Out:                 out,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	log.Info().Str("session", session.Name).Msg("Saving session")
	if err := store.Save(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintln(out, ui.Success("\n✓ Session saved successfully!"))
	fmt.Fprintf(out, "\n%s\n", ui.Bold("Use it with:"))
	fmt.Fprintf(out, "  %s%s\n\n", ui.ColorCyan+"tokscrape scrape <username> --session="+ui.ColorReset, ui.Value(loginSession))
	if !session.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Session expires: %s\n\n", session.ExpiresAt.Format(time.RFC1123))
	}
	return nil
}
