// internal/cli/scrape.go
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/tokscrape/internal/app"
	"github.com/law-makers/tokscrape/internal/config"
	"github.com/law-makers/tokscrape/internal/prompt"
	"github.com/law-makers/tokscrape/internal/reqctx"
	"github.com/law-makers/tokscrape/internal/scraper"
	"github.com/law-makers/tokscrape/internal/ui"
	"github.com/law-makers/tokscrape/internal/utils/output"
	"github.com/law-makers/tokscrape/pkg/models"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [username]",
	Short: "Scrape a profile and its popular videos",
	Long: `Opens the profile, switches to the Popular tab (or --tab), scrolls the feed
until no new videos load and then visits each video to read its counters.

When the username or --limit is missing you are asked for it. A video that
fails to load is skipped; the run still writes a result.`,
	Example: `  # Ask for everything interactively
  tokscrape scrape

  # Scrape the first 10 popular videos of @someone without a visible browser
  tokscrape scrape someone --limit 10 --headless

  # Use a saved login session and also write CSV and Markdown
  tokscrape scrape someone --session main --csv --markdown

  # Replay saved pages offline
  tokscrape scrape someone --engine snapshot --snapshot-dir ./pages --limit 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	config.RegisterScrapeFlags(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	defer a.Close(context.Background())

	var asker *prompt.Prompter
	interactive := func() (*prompt.Prompter, error) {
		if asker == nil {
			p, err := prompt.Stdio()
			if err != nil {
				return nil, err
			}
			asker = p
		}
		return asker, nil
	}

	var username string
	if len(args) == 1 {
		username = scraper.NormalizeUsername(args[0])
	} else {
		p, err := interactive()
		if err != nil {
			return fmt.Errorf("username: %w", err)
		}
		if username, err = p.AskUsername(); err != nil {
			return err
		}
	}
	if err := scraper.ValidateUsername(username); err != nil {
		return err
	}

	limitFlag, _ := cmd.Flags().GetInt("limit")
	if cmd.Flags().Changed("limit") && limitFlag < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", limitFlag)
	}
	var chosen int
	chooseLimit := func(ctx context.Context, available int) (n int, err error) {
		defer func() { chosen = n }()
		if cmd.Flags().Changed("limit") {
			return flagLimit(ctx, cmd.ErrOrStderr(), limitFlag, available)
		}
		p, err := interactive()
		if err != nil {
			return 0, err
		}
		return p.AskLimit(available)
	}

	ctx, run := reqctx.WithRun(cmd.Context(), *a.Logger, username)
	logger := zerolog.Ctx(ctx)

	res, err := scrapeProfile(ctx, a, username, chooseLimit)
	if werr := a.Metrics.WriteFile(a.Config.MetricsFile); werr != nil {
		logger.Warn().Err(werr).Msg("Failed to write metrics file")
	}
	if err != nil {
		// the run failed as a whole; nothing is written and the command still succeeds
		logger.Error().Err(reqctx.Wrap(ctx, err)).Dur("elapsed", run.Elapsed()).Msg("Scrape failed")
		fmt.Fprintln(cmd.ErrOrStderr(), ui.Error("❌ Scrape failed: "+err.Error()))
		return nil
	}

	paths, err := writeOutputs(a.Config, username, res)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), res, chosen, paths)
	logger.Info().Dur("elapsed", run.Elapsed()).Int("videos", len(res.Videos)).Msg("Run complete")
	return nil
}

// flagLimit checks a --limit value against the listing size. Values above
// the available count are clamped, with a notice on w.
func flagLimit(ctx context.Context, w io.Writer, limit, available int) (int, error) {
	if limit > available && available > 0 {
		zerolog.Ctx(ctx).Warn().Int("limit", limit).Int("available", available).Msg("Limit exceeds available videos, clamping")
		fmt.Fprintln(w, ui.Warn(fmt.Sprintf("--limit %d exceeds the %d available videos, scraping %d", limit, available, available)))
		limit = available
	}
	return prompt.ValidateLimit(fmt.Sprint(limit), available)
}

func scrapeProfile(ctx context.Context, a *app.Application, username string, chooseLimit scraper.LimitFunc) (*models.Result, error) {
	cookies, err := a.LoadSession()
	if err != nil {
		return nil, err
	}

	b, err := a.EnsureBrowser(ctx, cookies)
	if err != nil {
		return nil, scraper.NewScrapeError(scraper.ErrCodeNavigation, "browser", "start browser", err)
	}

	s := scraper.New(b, a.ScraperOptions())
	s.Limiter = a.Limiter
	s.Metrics = a.Metrics
	if !a.Config.JSONLog && prompt.IsTerminal(os.Stderr) {
		s.Progress = newProgressBar
	}
	return s.Run(ctx, username, chooseLimit)
}

func newProgressBar(total int) scraper.Progress {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("🎥 videos"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)
}

func writeOutputs(cfg *config.Config, username string, res *models.Result) ([]string, error) {
	jsonPath := filepath.Join(cfg.OutputDir, output.Filename(username, cfg.Tab, "json"))
	if err := output.SaveJSON(res, jsonPath); err != nil {
		return nil, fmt.Errorf("write %s: %w", jsonPath, err)
	}
	paths := []string{jsonPath}

	if cfg.CSV {
		p := filepath.Join(cfg.OutputDir, output.Filename(username, cfg.Tab, "csv"))
		if err := output.SaveCSV(res, p); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	if cfg.Markdown {
		p := filepath.Join(cfg.OutputDir, output.Filename(username, cfg.Tab, "md"))
		if err := output.SaveMarkdown(res, cfg.BaseURL, p); err != nil {
			return paths, fmt.Errorf("write %s: %w", p, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// printSummary reports the run; requested is the chosen limit, used to call
// out videos that were skipped.
func printSummary(w io.Writer, res *models.Result, requested int, paths []string) {
	p := res.Profile
	fmt.Fprintf(w, "\n%s\n", ui.Bold("🎉 Scraping complete!"))
	fmt.Fprintf(w, "%s\n", ui.Rule())
	fmt.Fprintf(w, "  %s %s (%s)\n", ui.Label("Profile"), p.Username, p.DisplayName)
	fmt.Fprintf(w, "  %s %s  %s %s  %s %s\n",
		ui.Label("Followers"), p.Followers,
		ui.Label("Following"), p.Following,
		ui.Label("Likes"), p.Likes)
	fmt.Fprintf(w, "  %s %d\n", ui.Label("Total popular videos"), res.TotalPopularVideos)
	fmt.Fprintf(w, "  %s %d\n", ui.Label("Videos scraped"), len(res.Videos))
	if skipped := requested - len(res.Videos); skipped > 0 {
		fmt.Fprintf(w, "  %s\n", ui.Warn(fmt.Sprintf("%d of %d videos skipped, see the log for details", skipped, requested)))
	}
	for _, path := range paths {
		fmt.Fprintln(w, ui.Success("📁 Results saved to "+path))
	}
	fmt.Fprintln(w)
}
