package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/tokscrape/internal/browser"
	"github.com/law-makers/tokscrape/internal/hydration"
	"github.com/law-makers/tokscrape/internal/ratelimit"
	"github.com/law-makers/tokscrape/pkg/models"
)

// Progress receives one tick per processed item.
type Progress interface {
	Add(n int) error
	Finish() error
}

type noProgress struct{}

func (noProgress) Add(int) error { return nil }
func (noProgress) Finish() error { return nil }

// DetailOptions controls the per-item visits.
type DetailOptions struct {
	WaitTimeout time.Duration
	ItemDelay   time.Duration
	Limiter     ratelimit.Limiter
	Waiter      Waiter
	Metrics     *Metrics
	Progress    Progress

	// StateFallback enables reading counters from the page state script
	// when the like counter does not appear.
	StateFallback bool
}

// CollectDetails visits the first limit entries one at a time on a single
// secondary page and reads their engagement counters. An item that fails is
// logged and left out; the loop carries on with the next one. The only
// returned errors are failing to open the page and cancellation of ctx.
func CollectDetails(ctx context.Context, b browser.Browser, entries []models.ListingEntry, limit int, opts DetailOptions) ([]models.VideoDetail, error) {
	logger := zerolog.Ctx(ctx)

	n := min(limit, len(entries))
	if n <= 0 {
		return []models.VideoDetail{}, nil
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	if opts.Waiter == nil {
		opts.Waiter = SleepWaiter{}
	}
	if opts.Progress == nil {
		opts.Progress = noProgress{}
	}
	defer opts.Progress.Finish()

	page, err := b.NewPage(ctx)
	if err != nil {
		return nil, NewScrapeError(ErrCodeDetail, "detail", "open video page", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			logger.Debug().Err(err).Msg("Closing video page")
		}
	}()

	details := make([]models.VideoDetail, 0, n)
	for i, entry := range entries[:n] {
		if err := ctx.Err(); err != nil {
			return details, err
		}

		itemLog := logger.With().Int("item", i+1).Int("of", n).Str("url", entry.URL).Logger()
		itemLog.Info().Msg("Scraping video")

		start := time.Now()
		d, err := scrapeVideo(ctx, page, entry, opts)
		opts.Metrics.ObserveDetail(time.Since(start))
		_ = opts.Progress.Add(1)

		if err != nil {
			if ctx.Err() != nil {
				return details, ctx.Err()
			}
			opts.Metrics.IncVideo("failed")
			itemLog.Warn().Err(err).Msg("Failed to scrape video stats")
			continue
		}

		opts.Metrics.IncVideo("ok")
		details = append(details, d)
		itemLog.Info().
			Str("likes", d.Likes).
			Str("comments", d.Comments).
			Str("shares", d.Shares).
			Str("views", d.Views).
			Msg("Scraped video")

		if err := opts.Waiter.Wait(ctx, opts.ItemDelay); err != nil {
			return details, err
		}
	}
	return details, nil
}

func scrapeVideo(ctx context.Context, page browser.Page, entry models.ListingEntry, opts DetailOptions) (models.VideoDetail, error) {
	if err := opts.Limiter.Wait(ctx, entry.URL); err != nil {
		return models.VideoDetail{}, err
	}
	if err := page.Navigate(ctx, entry.URL); err != nil {
		return models.VideoDetail{}, fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitVisible(ctx, SelLikeCount, opts.WaitTimeout); err != nil {
		waitErr := NewScrapeError(ErrCodeTimeout, "detail", "like counter did not appear", err)
		if !opts.StateFallback || ctx.Err() != nil {
			return models.VideoDetail{}, waitErr
		}
		d, ok := detailFromState(ctx, page, entry)
		if !ok {
			return models.VideoDetail{}, waitErr
		}
		return d, nil
	}

	likes, err := page.Text(ctx, browser.First(SelLikeCount))
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("read likes: %w", err)
	}
	comments, err := counter(ctx, page, SelCommentCount)
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("read comments: %w", err)
	}
	shares, err := counter(ctx, page, SelShareCount)
	if err != nil {
		return models.VideoDetail{}, fmt.Errorf("read shares: %w", err)
	}

	return models.VideoDetail{
		VideoLink: entry.URL,
		Likes:     likes,
		Comments:  comments,
		Shares:    shares,
		Views:     entry.Views,
	}, nil
}

// detailFromState reads the counters from the first hydration script that
// describes the entry's video.
func detailFromState(ctx context.Context, c browser.Capability, entry models.ListingEntry) (models.VideoDetail, bool) {
	logger := zerolog.Ctx(ctx)
	id := hydration.VideoID(entry.URL)

	for _, sel := range hydration.Scripts {
		src, err := c.Text(ctx, browser.First(sel))
		if err != nil {
			continue
		}
		stats, err := hydration.VideoStats(src, id)
		if err != nil {
			logger.Debug().Err(err).Str("script", sel).Msg("Page state has no counters")
			continue
		}

		views := entry.Views
		if views == models.DefaultViews && stats.Views != "" {
			views = stats.Views
		}
		logger.Info().Str("url", entry.URL).Msg("Counters read from page state")
		return models.VideoDetail{
			VideoLink: entry.URL,
			Likes:     stats.Likes,
			Comments:  stats.Comments,
			Shares:    stats.Shares,
			Views:     views,
		}, true
	}
	return models.VideoDetail{}, false
}

// counter reads an optional engagement counter, "0" when the page has none.
func counter(ctx context.Context, c browser.Capability, sel string) (string, error) {
	text, err := c.Text(ctx, browser.First(sel))
	if errors.Is(err, browser.ErrNotFound) {
		return "0", nil
	}
	return text, err
}
