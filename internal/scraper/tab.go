package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/tokscrape/internal/browser"
)

// SelectTab activates the feed tab whose label matches (case-insensitive,
// trimmed). It never fails the run: problems are logged and the feed stays on
// whatever tab is current. It reports whether the tab ended up active.
func SelectTab(ctx context.Context, c browser.Capability, w Waiter, label string, waitTimeout, settle time.Duration) bool {
	logger := zerolog.Ctx(ctx)
	if err := selectTab(ctx, c, w, label, waitTimeout, settle); err != nil {
		logger.Warn().Err(err).Str("tab", label).Msg("Failed to switch tab")
		return false
	}
	return true
}

func selectTab(ctx context.Context, c browser.Capability, w Waiter, label string, waitTimeout, settle time.Duration) error {
	logger := zerolog.Ctx(ctx)

	if err := c.WaitVisible(ctx, SelTabButton, waitTimeout); err != nil {
		return fmt.Errorf("tab controls did not appear: %w", err)
	}
	n, err := c.Count(ctx, SelTabButton)
	if err != nil {
		return err
	}

	want := strings.TrimSpace(label)
	for i := 0; i < n; i++ {
		loc := browser.Nth(SelTabButton, i)
		text, err := c.Text(ctx, loc)
		if err != nil {
			return err
		}
		if !strings.EqualFold(strings.TrimSpace(text), want) {
			continue
		}

		active, _, err := c.Attribute(ctx, loc, AttrTabActive)
		if err != nil {
			return err
		}
		if active == "true" {
			logger.Info().Str("tab", want).Msg("Tab already active")
			return nil
		}
		if err := c.Click(ctx, loc); err != nil {
			return fmt.Errorf("click tab: %w", err)
		}
		logger.Info().Str("tab", want).Msg("Switched tab, waiting for items to load")
		return w.Wait(ctx, settle)
	}
	return fmt.Errorf("tab %q not found among %d controls", want, n)
}
