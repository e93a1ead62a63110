package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// DefaultLoginURL is TikTok's login entry page
const DefaultLoginURL = "https://www.tiktok.com/login"

// LoginOptions configures the interactive login
type LoginOptions struct {
	SessionName string
	URL         string
	// WaitSelector is waited for after login; empty means wait for Enter on Confirm.
	WaitSelector string
	Timeout      time.Duration
	ExecPath     string
	UserAgent    string
	Proxy        string
	// RemoteDebuggingPort runs the browser headless and exposes DevTools on
	// this port so the login can be driven from a forwarded browser.
	RemoteDebuggingPort int
	// Confirm is read for the Enter key when WaitSelector is empty.
	Confirm io.Reader
	// Out receives the instructions shown to the user.
	Out io.Writer
}

// InteractiveLogin opens a visible browser, lets the user sign in, and
// captures every cookie the browser holds afterwards.
func InteractiveLogin(ctx context.Context, opts LoginOptions) (*Session, error) {
	if opts.SessionName == "" {
		return nil, ErrEmptyName
	}
	if opts.URL == "" {
		opts.URL = DefaultLoginURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.Confirm == nil {
		opts.Confirm = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	remote := opts.RemoteDebuggingPort > 0
	if !remote && runtime.GOOS == "linux" && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return nil, fmt.Errorf("interactive login needs a display server (DISPLAY not set); try --remote-debug")
	}

	log.Info().Str("session", opts.SessionName).Str("url", opts.URL).Msg("Starting interactive login")

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", remote),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(1280, 800),
	}
	if opts.ExecPath != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(opts.ExecPath)}, allocOpts...)
	}
	if remote {
		allocOpts = append(allocOpts,
			chromedp.Flag("remote-debugging-port", fmt.Sprint(opts.RemoteDebuggingPort)),
			chromedp.Flag("remote-debugging-address", "0.0.0.0"),
		)
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if remote {
		fmt.Fprintf(opts.Out, "\n🌐 Browser started. Open http://localhost:%d and log in to TikTok.\n", opts.RemoteDebuggingPort)
	} else {
		fmt.Fprintln(opts.Out, "\n🌐 Browser opened. Log in to TikTok in that window.")
	}
	if err := chromedp.Run(browserCtx, network.Enable(), chromedp.Navigate(opts.URL)); err != nil {
		return nil, fmt.Errorf("navigate to login page: %w", err)
	}

	if opts.WaitSelector != "" {
		fmt.Fprintf(opts.Out, "   Waiting for element: %s\n", opts.WaitSelector)
		if err := chromedp.Run(browserCtx, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery)); err != nil {
			return nil, fmt.Errorf("login timeout or failed: %w", err)
		}
	} else {
		fmt.Fprintln(opts.Out, "\n   Press Enter once you are logged in...")
		if _, err := bufio.NewReader(opts.Confirm).ReadString('\n'); err != nil && err != io.EOF {
			return nil, fmt.Errorf("read confirmation: %w", err)
		}
	}

	var cookies []*network.Cookie
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("extract cookies: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies found, login may have failed")
	}
	log.Info().Int("cookie_count", len(cookies)).Msg("Cookies extracted")

	s := &Session{
		Name:      opts.SessionName,
		URL:       opts.URL,
		Cookies:   FromNetworkCookies(cookies),
		CreatedAt: time.Now(),
	}
	s.ExpiresAt = ExpiryFromCookies(s.Cookies)
	return s, nil
}

// FromNetworkCookies converts CDP cookies to stored cookies
func FromNetworkCookies(cookies []*network.Cookie) []Cookie {
	out := make([]Cookie, len(cookies))
	for i, c := range cookies {
		out[i] = Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		}
	}
	return out
}
