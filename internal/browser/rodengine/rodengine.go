// Package rodengine implements browser.Browser with go-rod, every page
// opened through the stealth evasions.
package rodengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/law-makers/tokscrape/internal/auth"
	"github.com/law-makers/tokscrape/internal/browser"
	"github.com/rs/zerolog/log"
)

// requestIdle is how long the network must stay quiet for a navigation to finish.
const requestIdle = 500 * time.Millisecond

// Browser wraps a rod browser and its launcher.
type Browser struct {
	opts     browser.Options
	launcher *launcher.Launcher
	browser  *rod.Browser
	mu       sync.Mutex
	closed   bool
}

// New launches a browser through rod's launcher.
func New(ctx context.Context, opts browser.Options) (*Browser, error) {
	l := launcher.New().Headless(opts.Headless).NoSandbox(true)
	if opts.ChromePath != "" {
		l = l.Bin(opts.ChromePath)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}

	controlURL, err := l.Context(ctx).Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	rb := rod.New().ControlURL(controlURL)
	if err := rb.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	if len(opts.Cookies) > 0 {
		if err := rb.SetCookies(cookieParams(opts.Cookies)); err != nil {
			rb.Close()
			l.Kill()
			return nil, fmt.Errorf("install session cookies: %w", err)
		}
	}

	log.Debug().Bool("headless", opts.Headless).Msg("Rod browser launched")
	return &Browser{opts: opts, launcher: l, browser: rb}, nil
}

// NewPage opens a stealth page.
func (b *Browser) NewPage(ctx context.Context) (browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("rod: %w", browser.ErrPageClosed)
	}

	page, err := stealth.Page(b.browser)
	if err != nil {
		return nil, fmt.Errorf("create stealth page: %w", err)
	}
	if b.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: b.opts.UserAgent}); err != nil {
			page.Close()
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}
	return &Page{page: page, navTimeout: b.opts.NavigationTimeout}, nil
}

// Close closes the browser and kills the launched process.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	err := b.browser.Close()
	b.launcher.Kill()
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

// Page is a rod page.
type Page struct {
	page       *rod.Page
	navTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

func (p *Page) with(ctx context.Context, timeout time.Duration) (*rod.Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, browser.ErrPageClosed
	}
	page := p.page.Context(ctx)
	if timeout > 0 {
		page = page.Timeout(timeout)
	}
	return page, nil
}

// Navigate loads url and waits until no request has been in flight for requestIdle.
func (p *Page) Navigate(ctx context.Context, url string) error {
	page, err := p.with(ctx, p.navTimeout)
	if err != nil {
		return err
	}
	wait := page.WaitRequestIdle(requestIdle, nil, nil, nil)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	wait()
	if err := page.GetContext().Err(); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *Page) eval(ctx context.Context, script string, out interface{}) error {
	page, err := p.with(ctx, 0)
	if err != nil {
		return err
	}
	res, err := page.Eval(script)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return res.Value.Unmarshal(out)
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	var n int
	if err := p.eval(ctx, browser.CountScript(selector), &n); err != nil {
		return 0, fmt.Errorf("count %q: %w", selector, err)
	}
	return n, nil
}

func (p *Page) Text(ctx context.Context, loc browser.Locator) (string, error) {
	var l browser.Lookup
	if err := p.eval(ctx, browser.TextScript(loc), &l); err != nil {
		return "", fmt.Errorf("text %s: %w", loc, err)
	}
	if !l.Found {
		return "", browser.NotFound(loc)
	}
	return l.Value, nil
}

func (p *Page) Attribute(ctx context.Context, loc browser.Locator, name string) (string, bool, error) {
	var l browser.Lookup
	if err := p.eval(ctx, browser.AttributeScript(loc, name), &l); err != nil {
		return "", false, fmt.Errorf("attribute %s@%s: %w", loc, name, err)
	}
	if !l.Found {
		return "", false, browser.NotFound(loc)
	}
	return l.Value, l.Has, nil
}

func (p *Page) Click(ctx context.Context, loc browser.Locator) error {
	var l browser.Lookup
	if err := p.eval(ctx, browser.ClickScript(loc), &l); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	if !l.Found {
		return browser.NotFound(loc)
	}
	return nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	page, err := p.with(ctx, timeout)
	if err != nil {
		return err
	}
	el, err := page.Element(selector)
	if err == nil {
		err = el.WaitVisible()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("wait for %q: %w", selector, context.DeadlineExceeded)
		}
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (p *Page) Scroll(ctx context.Context) error {
	if err := p.eval(ctx, browser.ScrollScript, nil); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	return p.page.Close()
}

func cookieParams(cookies []auth.Cookie) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			Expires:  proto.TimeSinceEpoch(c.Expires),
		}
		switch auth.NormalizeSameSite(c.SameSite) {
		case "Strict":
			p.SameSite = proto.NetworkCookieSameSiteStrict
		case "Lax":
			p.SameSite = proto.NetworkCookieSameSiteLax
		case "None":
			p.SameSite = proto.NetworkCookieSameSiteNone
		}
		params = append(params, p)
	}
	return params
}
