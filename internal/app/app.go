// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/tokscrape/internal/auth"
	"github.com/law-makers/tokscrape/internal/browser"
	"github.com/law-makers/tokscrape/internal/browser/chrome"
	"github.com/law-makers/tokscrape/internal/browser/rodengine"
	"github.com/law-makers/tokscrape/internal/browser/snapshot"
	"github.com/law-makers/tokscrape/internal/config"
	"github.com/law-makers/tokscrape/internal/ratelimit"
	"github.com/law-makers/tokscrape/internal/scraper"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once per command invocation. The browser is started lazily by
// EnsureBrowser so that commands which never scrape do not launch one.
// Use Close() to release the browser on every exit path.
type Application struct {
	Config  *config.Config
	Logger  *zerolog.Logger
	Metrics *scraper.Metrics
	Limiter *ratelimit.HostLimiter

	browserMu sync.Mutex
	Browser   browser.Browser

	startTime time.Time
}

// New creates an Application from cfg.
func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := NewLogger(cfg, os.Stderr)
	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Str("engine", cfg.Engine).
		Msg("Logger initialized")

	limiter := ratelimit.NewHostLimiter(cfg.NavRateLimitRPS, cfg.NavRateLimitBurst)
	logger.Debug().
		Float64("nav_rps", cfg.NavRateLimitRPS).
		Int("nav_burst", cfg.NavRateLimitBurst).
		Msg("Rate limiter initialized")

	return &Application{
		Config:    cfg,
		Logger:    &logger,
		Metrics:   scraper.NewMetrics(),
		Limiter:   limiter,
		startTime: time.Now(),
	}, nil
}

// NewLogger builds the process logger: JSON lines when cfg.JSONLog, a
// console writer otherwise. It also sets the global level.
func NewLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if !cfg.JSONLog {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().Timestamp().Logger()
}

// ScraperOptions maps the configuration onto scraper timings.
func (a *Application) ScraperOptions() scraper.Options {
	c := a.Config
	return scraper.Options{
		BaseURL:            c.BaseURL,
		Tab:                c.Tab,
		MaxScrolls:         c.MaxScrolls,
		ScrollPause:        c.ScrollPause,
		ProfileWaitTimeout: c.ProfileWaitTimeout,
		TabWaitTimeout:     c.TabWaitTimeout,
		TabSettleDelay:     c.TabSettleDelay,
		DetailWaitTimeout:  c.DetailWaitTimeout,
		ItemDelay:          c.ItemDelay,
		StateFallback:      c.StateFallback,
	}
}

// LoadSession returns the cookies of the configured login session, or nil
// when no session is configured.
func (a *Application) LoadSession() ([]auth.Cookie, error) {
	if a.Config.Session == "" {
		return nil, nil
	}
	store, err := auth.DefaultStore()
	if err != nil {
		return nil, err
	}
	s, err := auth.LoadValid(store, a.Config.Session)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", a.Config.Session, err)
	}
	a.Logger.Info().Str("session", s.Name).Int("cookies", len(s.Cookies)).Msg("Using saved session")
	return s.Cookies, nil
}

// EnsureBrowser lazily starts the configured engine if it has not already
// been started. cookies are installed before the first page opens.
func (a *Application) EnsureBrowser(ctx context.Context, cookies []auth.Cookie) (browser.Browser, error) {
	if a == nil {
		return nil, fmt.Errorf("application is nil")
	}

	a.browserMu.Lock()
	defer a.browserMu.Unlock()

	if a.Browser != nil {
		return a.Browser, nil
	}

	c := a.Config
	opts := browser.Options{
		Headless:          c.Headless,
		ChromePath:        c.ChromePath,
		UserAgent:         c.UserAgent,
		Proxy:             c.Proxy,
		NavigationTimeout: c.NavigationTimeout,
		Cookies:           cookies,
	}

	a.Logger.Debug().Str("engine", c.Engine).Bool("headless", c.Headless).Msg("Starting browser")

	var (
		b   browser.Browser
		err error
	)
	switch browser.Engine(c.Engine) {
	case browser.EngineChrome:
		b, err = chrome.New(ctx, opts)
	case browser.EngineRod:
		b, err = rodengine.New(ctx, opts)
	case browser.EngineSnapshot:
		b, err = snapshot.Open(c.SnapshotDir)
	default:
		err = fmt.Errorf("%w: %q", browser.ErrUnknownEngine, c.Engine)
	}
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to start browser")
		return nil, err
	}

	a.Browser = b
	return b, nil
}

// Close releases the browser. Errors are logged, not returned, so that the
// remaining shutdown still runs.
func (a *Application) Close(ctx context.Context) error {
	a.browserMu.Lock()
	defer a.browserMu.Unlock()

	if a.Browser != nil {
		if err := a.Browser.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing browser")
		}
		a.Browser = nil
	}

	a.Logger.Debug().Dur("uptime", a.Uptime()).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
