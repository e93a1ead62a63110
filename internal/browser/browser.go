// Package browser defines the selector capability the scraper consumes and the
// options shared by every engine that implements it.
package browser

import (
	"context"
	"errors"
	"time"

	"github.com/law-makers/tokscrape/internal/auth"
)

// Common browser errors
var (
	ErrNotFound      = errors.New("element not found")
	ErrPageClosed    = errors.New("page is closed")
	ErrUnknownEngine = errors.New("unknown browser engine")
)

// Locator addresses a single element: the Index-th match of Selector, then Up
// ancestor levels, then the first descendant matching Within (if set).
type Locator struct {
	Selector string
	Index    int
	Up       int
	Within   string
}

// Nth is a shorthand for the i-th match of sel.
func Nth(sel string, i int) Locator {
	return Locator{Selector: sel, Index: i}
}

// First is a shorthand for the first match of sel.
func First(sel string) Locator {
	return Locator{Selector: sel}
}

// Capability is the element-level API of a loaded page.
//
// Text and Attribute return ErrNotFound (possibly wrapped) when the locator
// does not resolve. Attribute reports ok=false for a present element that
// lacks the attribute.
type Capability interface {
	Count(ctx context.Context, selector string) (int, error)
	Text(ctx context.Context, loc Locator) (string, error)
	Attribute(ctx context.Context, loc Locator, name string) (value string, ok bool, err error)
	Click(ctx context.Context, loc Locator) error

	// WaitVisible blocks until selector matches a visible element or timeout elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Scroll moves the viewport down by one window height.
	Scroll(ctx context.Context) error
}

// Page is a browser tab.
type Page interface {
	Capability

	// Navigate loads url and waits for network quiescence.
	Navigate(ctx context.Context, url string) error

	Close() error
}

// Browser owns the browser process and hands out pages.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Engine names a Browser implementation.
type Engine string

const (
	EngineChrome   Engine = "chrome"
	EngineRod      Engine = "rod"
	EngineSnapshot Engine = "snapshot"
)

// Options configures how an engine launches its browser.
type Options struct {
	Headless   bool
	ChromePath string
	UserAgent  string
	Proxy      string

	// NavigationTimeout bounds a single page load including the idle wait.
	NavigationTimeout time.Duration

	// Cookies are installed before the first navigation.
	Cookies []auth.Cookie
}
