// Package snapshot implements browser.Browser over saved HTML documents.
//
// A document for https://www.tiktok.com/@user/video/1 is read from
// "@user/video/1.html" inside the snapshot filesystem. Scrolling is a no-op,
// visibility is presence, and clicking an element marks it data-active="true"
// while clearing the flag on its siblings, which is how segmented tab
// controls render their state.
package snapshot

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/law-makers/tokscrape/internal/browser"
)

// Browser serves pages from a filesystem of HTML snapshots.
type Browser struct {
	fsys fs.FS
}

// New returns a Browser reading from fsys.
func New(fsys fs.FS) *Browser {
	return &Browser{fsys: fsys}
}

// Open returns a Browser reading from dir.
func Open(dir string) (*Browser, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("snapshot dir: %s is not a directory", dir)
	}
	return New(os.DirFS(dir)), nil
}

func (b *Browser) NewPage(ctx context.Context) (browser.Page, error) {
	return &Page{fsys: b.fsys}, nil
}

func (b *Browser) Close() error { return nil }

// FileFor maps a page URL to its snapshot file name.
func FileFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	p := strings.Trim(path.Clean("/"+u.Path), "/")
	if p == "" {
		p = "index"
	}
	return p + ".html", nil
}

// Page is a parsed snapshot document.
type Page struct {
	fsys fs.FS

	mu     sync.Mutex
	doc    *goquery.Document
	closed bool
}

func (p *Page) document() (*goquery.Document, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, browser.ErrPageClosed
	}
	if p.doc == nil {
		return nil, fmt.Errorf("snapshot: no document loaded")
	}
	return p.doc, nil
}

func (p *Page) Navigate(ctx context.Context, rawURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := FileFor(rawURL)
	if err != nil {
		return err
	}
	f, err := p.fsys.Open(name)
	if err != nil {
		return fmt.Errorf("navigate %s: %w", rawURL, err)
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return fmt.Errorf("parse snapshot %s: %w", name, err)
	}
	doc := goquery.NewDocumentFromNode(root)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrPageClosed
	}
	p.doc = doc
	return nil
}

// resolve follows loc through the document; the selection is empty when it
// does not resolve.
func resolve(doc *goquery.Document, loc browser.Locator) *goquery.Selection {
	sel := doc.Find(loc.Selector).Eq(loc.Index)
	for i := 0; i < loc.Up && sel.Length() > 0; i++ {
		sel = sel.Parent()
	}
	if loc.Within != "" && sel.Length() > 0 {
		sel = sel.Find(loc.Within).First()
	}
	return sel
}

func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	doc, err := p.document()
	if err != nil {
		return 0, err
	}
	return doc.Find(selector).Length(), nil
}

func (p *Page) Text(ctx context.Context, loc browser.Locator) (string, error) {
	doc, err := p.document()
	if err != nil {
		return "", err
	}
	sel := resolve(doc, loc)
	if sel.Length() == 0 {
		return "", browser.NotFound(loc)
	}
	return strings.TrimSpace(sel.Text()), nil
}

func (p *Page) Attribute(ctx context.Context, loc browser.Locator, name string) (string, bool, error) {
	doc, err := p.document()
	if err != nil {
		return "", false, err
	}
	sel := resolve(doc, loc)
	if sel.Length() == 0 {
		return "", false, browser.NotFound(loc)
	}
	v, ok := sel.Attr(name)
	return v, ok, nil
}

func (p *Page) Click(ctx context.Context, loc browser.Locator) error {
	doc, err := p.document()
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	sel := resolve(doc, loc)
	if sel.Length() == 0 {
		return browser.NotFound(loc)
	}
	sel.Siblings().Filter("[data-active]").SetAttr("data-active", "false")
	sel.SetAttr("data-active", "true")
	return nil
}

func (p *Page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	doc, err := p.document()
	if err != nil {
		return err
	}
	if doc.Find(selector).Length() == 0 {
		return fmt.Errorf("wait for %q: %w", selector, context.DeadlineExceeded)
	}
	return nil
}

func (p *Page) Scroll(ctx context.Context) error {
	_, err := p.document()
	return err
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
