// internal/cli/sessions.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/tokscrape/internal/auth"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved TikTok login sessions",
	Long: `List, view, import and delete saved login sessions.

Sessions hold the cookies captured by 'tokscrape login' and are stored in
your OS keyring.`,
	Example: `  # List all saved sessions
  tokscrape sessions list

  # View details of a specific session
  tokscrape sessions view main

  # Delete a session
  tokscrape sessions delete old`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <session-name>",
	Short: "View details of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsView,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var assumeYes bool

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsViewCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	sessionsDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Delete without asking")
}

// sessionStore is swapped in tests.
var sessionStore = auth.DefaultStore

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := sessionStore()
	if err != nil {
		return err
	}
	names, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "\nNo saved sessions found.")
		fmt.Fprintln(out, "\nCreate a session with:")
		fmt.Fprintln(out, "  tokscrape login --session=<name>")
		fmt.Fprintln(out)
		return nil
	}

	fmt.Fprintf(out, "\n📋 Saved Sessions (%d)\n", len(names))
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out)

	now := time.Now()
	for i, name := range names {
		fmt.Fprintf(out, "%d. %s\n", i+1, name)

		s, err := store.Load(name)
		if err != nil {
			fmt.Fprintf(out, "   ⚠️  Error loading: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "   Cookies: %d\n", len(s.Cookies))
		fmt.Fprintf(out, "   Created: %s\n", s.CreatedAt.Format(time.RFC1123))
		if !s.ExpiresAt.IsZero() {
			if s.Expired(now) {
				fmt.Fprintf(out, "   Status: ⚠️  Expired (%s ago)\n", now.Sub(s.ExpiresAt).Round(time.Hour))
			} else {
				fmt.Fprintf(out, "   Expires: %s (in %s)\n", s.ExpiresAt.Format(time.RFC1123), s.ExpiresAt.Sub(now).Round(time.Hour))
			}
		}
		if i < len(names)-1 {
			fmt.Fprintln(out)
		}
	}
	fmt.Fprintln(out)
	return nil
}

func runSessionsView(cmd *cobra.Command, args []string) error {
	name := args[0]
	store, err := sessionStore()
	if err != nil {
		return err
	}
	s, err := store.Load(name)
	if err != nil {
		return fmt.Errorf("failed to load session '%s': %w", name, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n🔍 Session Details: %s\n", name)
	fmt.Fprintln(out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Name:     %s\n", s.Name)
	fmt.Fprintf(out, "URL:      %s\n", s.URL)
	fmt.Fprintf(out, "Created:  %s\n", s.CreatedAt.Format(time.RFC1123))
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Expires:  %s\n", s.ExpiresAt.Format(time.RFC1123))
		if s.Expired(time.Now()) {
			fmt.Fprintln(out, "Status:   ⚠️  Expired")
		} else {
			fmt.Fprintf(out, "Status:   ✓ Valid (expires in %s)\n", time.Until(s.ExpiresAt).Round(time.Hour))
		}
	}

	fmt.Fprintf(out, "\nCookies (%d):\n", len(s.Cookies))
	for i, c := range s.Cookies {
		if i >= 5 {
			fmt.Fprintf(out, "  ... and %d more\n", len(s.Cookies)-5)
			break
		}
		fmt.Fprintf(out, "  • %s (domain: %s)\n", c.Name, c.Domain)
	}
	fmt.Fprintln(out)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	out := cmd.OutOrStdout()

	if !assumeYes && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("\n⚠️  Delete session '%s'? [y/N]: ", name)) {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	store, err := sessionStore()
	if err != nil {
		return err
	}
	if err := store.Delete(name); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	fmt.Fprintf(out, "\n✓ Session '%s' deleted successfully.\n\n", name)
	return nil
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprint(out, question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
