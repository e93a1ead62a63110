// Package scraper drives a browser through a TikTok profile: header, tab
// switch, feed scrolling, listing and per-video details.
package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/tokscrape/internal/browser"
	"github.com/law-makers/tokscrape/internal/ratelimit"
	urlutil "github.com/law-makers/tokscrape/internal/utils/url"
	"github.com/law-makers/tokscrape/pkg/models"
)

// Options holds the timings and knobs of a run.
type Options struct {
	BaseURL string
	Tab     string

	MaxScrolls  int
	ScrollPause time.Duration

	ProfileWaitTimeout time.Duration
	TabWaitTimeout     time.Duration
	TabSettleDelay     time.Duration
	DetailWaitTimeout  time.Duration
	ItemDelay          time.Duration

	// StateFallback reads a video's counters from its hydration state when
	// the like counter does not render in time.
	StateFallback bool
}

// DefaultOptions mirrors the pacing TikTok tolerates for a single viewer.
func DefaultOptions() Options {
	return Options{
		BaseURL:            BaseURL,
		Tab:                "Popular",
		MaxScrolls:         50,
		ScrollPause:        time.Second,
		ProfileWaitTimeout: 15 * time.Second,
		TabWaitTimeout:     7 * time.Second,
		TabSettleDelay:     3 * time.Second,
		DetailWaitTimeout:  15 * time.Second,
		ItemDelay:          2 * time.Second,
		StateFallback:      true,
	}
}

// LimitFunc decides how many of the available videos to visit.
type LimitFunc func(ctx context.Context, available int) (int, error)

// Scraper runs the whole pipeline against one browser.
type Scraper struct {
	Browser  browser.Browser
	Options  Options
	Limiter  ratelimit.Limiter
	Waiter   Waiter
	Metrics  *Metrics
	Progress func(total int) Progress
}

// New creates a Scraper with wall-clock waits and no navigation limit.
func New(b browser.Browser, opts Options) *Scraper {
	return &Scraper{
		Browser: b,
		Options: opts,
		Limiter: ratelimit.Unlimited{},
		Waiter:  SleepWaiter{},
	}
}

// NormalizeUsername trims whitespace and a leading @.
func NormalizeUsername(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9._]+$`)

// ValidateUsername checks a normalized handle. TikTok handles are letters,
// digits, dots and underscores; the handle also names the output file.
func ValidateUsername(name string) error {
	if name == "" {
		return ErrEmptyUsername
	}
	if !handlePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidUsername, name)
	}
	return nil
}

// Run scrapes username's profile and the selected tab. A returned error means
// no result should be persisted; per-video failures only shrink Videos.
func (s *Scraper) Run(ctx context.Context, username string, chooseLimit LimitFunc) (*models.Result, error) {
	res, err := s.run(ctx, username, chooseLimit)
	if err != nil {
		code := CodeOf(err)
		if code == "" {
			code = "ERROR"
		}
		s.Metrics.IncRun(string(code))
		return nil, err
	}
	s.Metrics.IncRun("ok")
	return res, nil
}

func (s *Scraper) run(ctx context.Context, username string, chooseLimit LimitFunc) (*models.Result, error) {
	username = NormalizeUsername(username)
	if err := ValidateUsername(username); err != nil {
		return nil, NewScrapeError(ErrCodeValidation, "input", "invalid username", err)
	}
	if s.Browser == nil {
		return nil, ErrNoBrowser
	}
	logger := zerolog.Ctx(ctx)
	o := s.Options

	page, err := s.Browser.NewPage(ctx)
	if err != nil {
		return nil, NewScrapeError(ErrCodeNavigation, "profile", "open page", err)
	}
	defer page.Close()

	profileURL := urlutil.ProfileURL(o.BaseURL, username)
	logger.Info().Str("url", profileURL).Msg("Scraping profile")
	if err := s.Limiter.Wait(ctx, profileURL); err != nil {
		return nil, NewScrapeError(ErrCodeNavigation, "profile", "rate limiter", err)
	}
	if err := page.Navigate(ctx, profileURL); err != nil {
		return nil, NewScrapeError(ErrCodeNavigation, "profile", "load "+profileURL, err)
	}

	profile, err := ScrapeProfile(ctx, page, o.ProfileWaitTimeout)
	if err != nil {
		return nil, NewScrapeError(ErrCodeProfile, "profile", "profile header", err)
	}
	logger.Info().
		Str("display_name", profile.DisplayName).
		Str("followers", profile.Followers).
		Msg("Profile scraped")

	SelectTab(ctx, page, s.Waiter, o.Tab, o.TabWaitTimeout, o.TabSettleDelay)

	loaded, err := Converge(ctx, page, s.Waiter, o.MaxScrolls, o.ScrollPause)
	if err != nil {
		return nil, NewScrapeError(ErrCodeListing, "scroll", "feed scrolling", err)
	}
	s.Metrics.SetFeedItems(loaded)

	entries, err := CollectListing(ctx, page, o.BaseURL)
	if err != nil {
		return nil, NewScrapeError(ErrCodeListing, "listing", "collect feed links", err)
	}
	s.Metrics.SetListing(len(entries))
	logger.Info().Int("total", len(entries)).Str("tab", o.Tab).Msg("Videos available")

	limit := 0
	if len(entries) > 0 {
		if limit, err = chooseLimit(ctx, len(entries)); err != nil {
			return nil, NewScrapeError(ErrCodeValidation, "limit", "choose video limit", err)
		}
	}

	var progress Progress
	if s.Progress != nil && limit > 0 {
		progress = s.Progress(min(limit, len(entries)))
	}
	details, err := CollectDetails(ctx, s.Browser, entries, limit, DetailOptions{
		WaitTimeout:   o.DetailWaitTimeout,
		ItemDelay:     o.ItemDelay,
		StateFallback: o.StateFallback,
		Limiter:       s.Limiter,
		Waiter:        s.Waiter,
		Metrics:       s.Metrics,
		Progress:      progress,
	})
	if err != nil {
		if CodeOf(err) == "" {
			err = NewScrapeError(ErrCodeDetail, "detail", "video pages", err)
		}
		return nil, err
	}

	res := Assemble(profile, entries, details)
	return &res, nil
}
