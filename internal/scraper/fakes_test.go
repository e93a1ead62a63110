package scraper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/law-makers/tokscrape/internal/browser"
)

// recordingWaiter returns immediately and remembers every requested pause.
type recordingWaiter struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *recordingWaiter) Wait(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waits = append(w.waits, d)
	return ctx.Err()
}

func (w *recordingWaiter) count(d time.Duration) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, x := range w.waits {
		if x == d {
			n++
		}
	}
	return n
}

// feedPage is a Capability whose item count follows a script, one value per
// Count call; the last value repeats.
type feedPage struct {
	counts   []int
	countErr error
	observed int
	scrolls  int
}

func (p *feedPage) Count(ctx context.Context, selector string) (int, error) {
	if p.countErr != nil {
		return 0, p.countErr
	}
	i := min(p.observed, len(p.counts)-1)
	p.observed++
	return p.counts[i], nil
}

func (p *feedPage) Text(context.Context, browser.Locator) (string, error) {
	return "", browser.ErrNotFound
}

func (p *feedPage) Attribute(context.Context, browser.Locator, string) (string, bool, error) {
	return "", false, browser.ErrNotFound
}

func (p *feedPage) Click(context.Context, browser.Locator) error { return nil }

func (p *feedPage) WaitVisible(context.Context, string, time.Duration) error { return nil }

func (p *feedPage) Scroll(context.Context) error {
	p.scrolls++
	return nil
}

// tabPage exposes a row of segmented tab buttons.
type tabPage struct {
	feedPage
	labels  []string
	active  int
	waitErr error
	clicks  []int
}

func (p *tabPage) WaitVisible(context.Context, string, time.Duration) error { return p.waitErr }

func (p *tabPage) Count(ctx context.Context, selector string) (int, error) {
	return len(p.labels), nil
}

func (p *tabPage) Text(ctx context.Context, loc browser.Locator) (string, error) {
	if loc.Index >= len(p.labels) {
		return "", browser.NotFound(loc)
	}
	return p.labels[loc.Index], nil
}

func (p *tabPage) Attribute(ctx context.Context, loc browser.Locator, name string) (string, bool, error) {
	if loc.Index == p.active {
		return "true", true, nil
	}
	return "false", true, nil
}

func (p *tabPage) Click(ctx context.Context, loc browser.Locator) error {
	p.clicks = append(p.clicks, loc.Index)
	p.active = loc.Index
	return nil
}

// videoStats is what a fake video page shows; a nil entry means the page
// never renders its like counter.
type videoStats struct {
	likes, comments, shares string
}

// videoBrowser hands out pages that serve videoStats by URL.
type videoBrowser struct {
	videos  map[string]*videoStats
	navErr  map[string]error
	pages   []*videoPage
	openErr error
}

func (b *videoBrowser) NewPage(ctx context.Context) (browser.Page, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	p := &videoPage{b: b}
	b.pages = append(b.pages, p)
	return p, nil
}

func (b *videoBrowser) Close() error { return nil }

type videoPage struct {
	feedPage
	b       *videoBrowser
	url     string
	visited []string
	closes  int
}

func (p *videoPage) Navigate(ctx context.Context, url string) error {
	p.visited = append(p.visited, url)
	if err := p.b.navErr[url]; err != nil {
		return err
	}
	p.url = url
	return nil
}

func (p *videoPage) Close() error {
	p.closes++
	return nil
}

func (p *videoPage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if p.b.videos[p.url] == nil {
		return context.DeadlineExceeded
	}
	return nil
}

func (p *videoPage) Text(ctx context.Context, loc browser.Locator) (string, error) {
	v := p.b.videos[p.url]
	if v == nil {
		return "", browser.NotFound(loc)
	}
	var s string
	switch loc.Selector {
	case SelLikeCount:
		s = v.likes
	case SelCommentCount:
		s = v.comments
	case SelShareCount:
		s = v.shares
	}
	if s == "" {
		return "", browser.NotFound(loc)
	}
	return s, nil
}

var errBoom = errors.New("boom")
