// Package chrome implements browser.Browser on top of chromedp.
package chrome

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/tokscrape/internal/auth"
	"github.com/law-makers/tokscrape/internal/browser"
	"github.com/rs/zerolog/log"
)

// Browser is a single Chrome process. Every page is a separate tab created
// from a blank root tab that keeps the process alive until Close.
type Browser struct {
	opts        browser.Options
	allocCancel context.CancelFunc
	rootCtx     context.Context
	rootCancel  context.CancelFunc
	mu          sync.Mutex
	closed      bool
}

// New launches Chrome and installs opts.Cookies.
func New(ctx context.Context, opts browser.Options) (*Browser, error) {
	start := time.Now()

	// The allocator outlives ctx: the browser is released by Close.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(opts)...)
	rootCtx, rootCancel := chromedp.NewContext(allocCtx)

	b := &Browser{
		opts:        opts,
		allocCancel: allocCancel,
		rootCtx:     rootCtx,
		rootCancel:  rootCancel,
	}

	launched := make(chan error, 1)
	go func() { launched <- chromedp.Run(rootCtx) }()
	select {
	case err := <-launched:
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
	case <-ctx.Done():
		b.Close()
		return nil, ctx.Err()
	}

	if len(opts.Cookies) > 0 {
		if err := chromedp.Run(rootCtx, network.SetCookies(cookieParams(opts.Cookies))); err != nil {
			b.Close()
			return nil, fmt.Errorf("install session cookies: %w", err)
		}
		log.Debug().Int("cookies", len(opts.Cookies)).Msg("Session cookies installed")
	}

	log.Debug().
		Bool("headless", opts.Headless).
		Dur("elapsed", time.Since(start)).
		Msg("Chrome launched")
	return b, nil
}

// NewPage opens a new tab.
func (b *Browser) NewPage(ctx context.Context) (browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("chrome: %w", browser.ErrPageClosed)
	}
	return newPage(b.rootCtx, b.opts.NavigationTimeout)
}

// Close shuts down every tab and the Chrome process.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	b.rootCancel()
	b.allocCancel()
	log.Debug().Msg("Chrome closed")
	return nil
}

func allocatorOptions(opts browser.Options) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-prompt-on-repost", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.WindowSize(1920, 1080),
	}

	if path := Locate(opts.ChromePath); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"), chromedp.Flag("disable-gpu", true))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	return allocOpts
}

// cookieParams converts stored session cookies to CDP parameters
func cookieParams(cookies []auth.Cookie) []*network.CookieParam {
	params := make([]*network.CookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &network.CookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if c.Expires > 0 {
			expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
			p.Expires = &expires
		}
		switch auth.NormalizeSameSite(c.SameSite) {
		case "Strict":
			p.SameSite = network.CookieSameSiteStrict
		case "Lax":
			p.SameSite = network.CookieSameSiteLax
		case "None":
			p.SameSite = network.CookieSameSiteNone
		}
		params = append(params, p)
	}
	return params
}
