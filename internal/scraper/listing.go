package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/law-makers/tokscrape/internal/browser"
	urlutil "github.com/law-makers/tokscrape/internal/utils/url"
	"github.com/law-makers/tokscrape/pkg/models"
)

// CollectListing reads every feed anchor in DOM order and keeps the ones that
// point at a video. Links are resolved against baseURL; a missing view
// counter yields models.DefaultViews.
func CollectListing(ctx context.Context, c browser.Capability, baseURL string) ([]models.ListingEntry, error) {
	n, err := c.Count(ctx, SelPostAnchor)
	if err != nil {
		return nil, fmt.Errorf("count feed anchors: %w", err)
	}

	entries := make([]models.ListingEntry, 0, n)
	skipped := 0
	for i := 0; i < n; i++ {
		href, ok, err := c.Attribute(ctx, browser.Nth(SelPostAnchor, i), "href")
		if err != nil {
			return nil, fmt.Errorf("read href of anchor %d: %w", i, err)
		}
		if !ok || !strings.Contains(href, VideoPathMarker) {
			skipped++
			continue
		}

		views, err := c.Text(ctx, browser.Locator{
			Selector: SelPostAnchor,
			Index:    i,
			Up:       ViewCountDepth,
			Within:   SelVideoViews,
		})
		if errors.Is(err, browser.ErrNotFound) {
			views = models.DefaultViews
		} else if err != nil {
			return nil, fmt.Errorf("read views of anchor %d: %w", i, err)
		}

		entries = append(entries, models.ListingEntry{
			URL:   urlutil.ResolveURL(baseURL, href),
			Views: views,
		})
	}

	zerolog.Ctx(ctx).Info().
		Int("videos", len(entries)).
		Int("skipped_links", skipped).
		Msg("Collected listing")
	return entries, nil
}
