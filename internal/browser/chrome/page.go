package chrome

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/tokscrape/internal/browser"
	"github.com/rs/zerolog/log"
)

// idleEvents are the lifecycle events that count as network quiescence.
// networkAlmostIdle is at most two open connections for 500ms.
var idleEvents = map[string]bool{
	"networkAlmostIdle": true,
	"networkIdle":       true,
}

// document identifies one load of one frame.
type document struct {
	frame  cdp.FrameID
	loader cdp.LoaderID
}

// idleTracker records which documents have gone quiet. Events from other
// frames and from earlier loads are kept apart by their loader ID, so only
// the document a navigation started can satisfy its wait.
type idleTracker struct {
	mu     sync.Mutex
	quiet  map[document]bool
	notify chan struct{}
}

func newIdleTracker() *idleTracker {
	return &idleTracker{
		quiet:  make(map[document]bool),
		notify: make(chan struct{}, 1),
	}
}

func (t *idleTracker) observe(ev *cdppage.EventLifecycleEvent) {
	if !idleEvents[ev.Name] {
		return
	}
	t.mu.Lock()
	t.quiet[document{ev.FrameID, ev.LoaderID}] = true
	t.mu.Unlock()
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

// reset forgets every recorded document.
func (t *idleTracker) reset() {
	t.mu.Lock()
	clear(t.quiet)
	t.mu.Unlock()
}

func (t *idleTracker) reached(doc document) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.quiet[doc]
}

// wait blocks until doc has gone quiet or ctx ends.
func (t *idleTracker) wait(ctx context.Context, doc document) error {
	for {
		if t.reached(doc) {
			return nil
		}
		select {
		case <-t.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Page is one Chrome tab.
type Page struct {
	ctx        context.Context
	cancel     context.CancelFunc
	navTimeout time.Duration
	idle       *idleTracker

	mu     sync.Mutex
	closed bool
}

func newPage(parent context.Context, navTimeout time.Duration) (*Page, error) {
	ctx, cancel := chromedp.NewContext(parent)
	p := &Page{
		ctx:        ctx,
		cancel:     cancel,
		navTimeout: navTimeout,
		idle:       newIdleTracker(),
	}

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		if e, ok := ev.(*cdppage.EventLifecycleEvent); ok {
			p.idle.observe(e)
		}
	})

	// First Run on the tab context allocates the target; it must not carry a deadline.
	if err := chromedp.Run(ctx, cdppage.SetLifecycleEventsEnabled(true)); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}
	return p, nil
}

// run executes actions on the tab, bounded by timeout (if > 0) and by ctx.
func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return browser.ErrPageClosed
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(p.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits until the main frame's new document is
// network-idle.
func (p *Page) Navigate(ctx context.Context, url string) error {
	start := time.Now()
	p.idle.reset()

	err := p.run(ctx, p.navTimeout,
		chromedp.ActionFunc(func(c context.Context) error {
			frame, loader, errText, err := cdppage.Navigate(url).Do(c)
			if err != nil {
				return err
			}
			if errText != "" {
				return fmt.Errorf("page load error %s", errText)
			}
			if loader == "" {
				// same-document navigation, nothing new to load
				return nil
			}
			return p.idle.wait(c, document{frame, loader})
		}),
	)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}

	log.Debug().Str("url", url).Dur("elapsed", time.Since(start)).Msg("Page loaded")
	return nil
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	var n int
	if err := p.run(ctx, 0, chromedp.Evaluate(browser.CountScript(selector), &n)); err != nil {
		return 0, fmt.Errorf("count %q: %w", selector, err)
	}
	return n, nil
}

func (p *Page) lookup(ctx context.Context, script string) (browser.Lookup, error) {
	var l browser.Lookup
	err := p.run(ctx, 0, chromedp.Evaluate(script, &l))
	return l, err
}

func (p *Page) Text(ctx context.Context, loc browser.Locator) (string, error) {
	l, err := p.lookup(ctx, browser.TextScript(loc))
	if err != nil {
		return "", fmt.Errorf("text %s: %w", loc, err)
	}
	if !l.Found {
		return "", browser.NotFound(loc)
	}
	return l.Value, nil
}

func (p *Page) Attribute(ctx context.Context, loc browser.Locator, name string) (string, bool, error) {
	l, err := p.lookup(ctx, browser.AttributeScript(loc, name))
	if err != nil {
		return "", false, fmt.Errorf("attribute %s@%s: %w", loc, name, err)
	}
	if !l.Found {
		return "", false, browser.NotFound(loc)
	}
	return l.Value, l.Has, nil
}

func (p *Page) Click(ctx context.Context, loc browser.Locator) error {
	l, err := p.lookup(ctx, browser.ClickScript(loc))
	if err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	if !l.Found {
		return browser.NotFound(loc)
	}
	return nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (p *Page) Scroll(ctx context.Context) error {
	if err := p.run(ctx, 0, chromedp.Evaluate(browser.ScrollScript, nil)); err != nil {
		return fmt.Errorf("scroll: %w", err)
	}
	return nil
}

// Close closes the tab. Safe to call more than once.
func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.cancel()
	return nil
}
