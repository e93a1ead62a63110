package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors")
	pf.Bool("json", false, "Log as JSON lines")
	pf.String("config", "", "Path to configuration file (optional)")
	pf.String("engine", DefaultEngine, "Browser engine: chrome, rod or snapshot")
	pf.Bool("headless", DefaultHeadless, "Hide the browser window")
	pf.String("chrome-path", "", "Path to the Chrome/Chromium executable")
	pf.String("proxy", "", "Set HTTP/SOCKS5 proxy (e.g., http://localhost:8080)")
	pf.String("user-agent", "", "Custom user agent string")
	pf.Duration("timeout", DefaultNavigationTimeout, "Timeout for a single page load")
}

// RegisterScrapeFlags registers the flags of the scrape command
func RegisterScrapeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("limit", 0, "Number of videos to scrape (prompted when omitted)")
	f.String("tab", DefaultTab, "Profile tab to collect")
	f.String("session", "", "Saved login session to use (see 'tokscrape login')")
	f.StringP("output-dir", "o", DefaultOutputDir, "Directory for result files")
	f.Bool("csv", false, "Also write the videos as CSV")
	f.Bool("markdown", false, "Also write a Markdown report")
	f.String("metrics-file", "", "Write Prometheus metrics to this file after the run")
	f.String("snapshot-dir", "", "Directory of saved HTML pages for the snapshot engine")
	f.Int("max-scrolls", DefaultMaxScrolls, "Maximum scroll observations on the feed")
	f.Duration("scroll-pause", DefaultScrollPause, "Pause after each scroll")
	f.Duration("item-delay", DefaultItemDelay, "Pause after each scraped video")
	f.Bool("state-fallback", DefaultStateFallback, "Read counters from the page's embedded state when they do not render")
}
