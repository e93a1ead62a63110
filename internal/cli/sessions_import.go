// internal/cli/sessions_import.go
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/tokscrape/internal/auth"
)

var (
	importFormat string
	importFile   string
)

// sessionsImportCmd represents the sessions import command
var sessionsImportCmd = &cobra.Command{
	Use:   "import <session-name>",
	Short: "Import cookies exported from your browser as a session",
	Long: `Create a session from cookies exported by your own browser, for machines
where the interactive login window cannot be shown.

Log in to TikTok in your regular browser, export the cookies with a cookie
extension (JSON) or as cookies.txt (Netscape), then import them here.`,
	Example: `  # Import a cookies.txt file
  tokscrape sessions import main --format netscape --file cookies.txt

  # Import JSON from stdin
  tokscrape sessions import main --format json < cookies.json`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsImport,
}

func init() {
	sessionsCmd.AddCommand(sessionsImportCmd)

	sessionsImportCmd.Flags().StringVar(&importFormat, "format", "json", "Import format: json or netscape")
	sessionsImportCmd.Flags().StringVarP(&importFile, "file", "f", "", "Read cookies from this file instead of stdin")
}

func runSessionsImport(cmd *cobra.Command, args []string) error {
	name := args[0]

	var in io.Reader = cmd.InOrStdin()
	if importFile != "" {
		f, err := os.Open(importFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	var (
		cookies []auth.Cookie
		err     error
	)
	switch importFormat {
	case "json":
		cookies, err = auth.ParseJSONCookies(in)
	case "netscape":
		cookies, err = auth.ParseNetscapeCookies(in)
	default:
		return fmt.Errorf("unsupported format: %s (use: json, netscape)", importFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}
	if len(cookies) == 0 {
		return fmt.Errorf("no cookies imported")
	}

	s := &auth.Session{
		Name:      name,
		URL:       auth.DefaultLoginURL,
		Cookies:   cookies,
		CreatedAt: time.Now(),
		ExpiresAt: auth.ExpiryFromCookies(cookies),
	}

	store, err := sessionStore()
	if err != nil {
		return err
	}
	if err := store.Save(s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n✅ Session '%s' created successfully!\n", name)
	fmt.Fprintf(out, "   Cookies: %d\n", len(cookies))
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "   Expires: %s\n", s.ExpiresAt.Format(time.RFC1123))
	}
	fmt.Fprintf(out, "\nUse with:\n  tokscrape scrape <username> --session=%s\n\n", name)
	return nil
}
