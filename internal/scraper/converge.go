package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/tokscrape/internal/browser"
)

// StableObservations is how many consecutive unchanged item counts end scrolling.
const StableObservations = 3

// Converge scrolls the feed until the number of loaded items stops growing
// or maxScrolls observations have been made, and returns the last count seen.
//
// Each observation compares the item count with the previous distinct count.
// After StableObservations equal comparisons in a row it stops without
// scrolling again. An empty feed counts as stable from the first observation.
func Converge(ctx context.Context, c browser.Capability, w Waiter, maxScrolls int, pause time.Duration) (int, error) {
	logger := zerolog.Ctx(ctx)

	lastCount, unchanged := 0, 0
	for i := 0; i < maxScrolls; i++ {
		count, err := c.Count(ctx, SelPostItem)
		if err != nil {
			return lastCount, fmt.Errorf("count feed items: %w", err)
		}

		if count == lastCount {
			unchanged++
		} else {
			unchanged = 0
			lastCount = count
		}

		if unchanged >= StableObservations {
			logger.Debug().Int("observations", i+1).Msg("No new items after repeated scrolls")
			break
		}

		if err := c.Scroll(ctx); err != nil {
			return lastCount, fmt.Errorf("scroll: %w", err)
		}
		if err := w.Wait(ctx, pause); err != nil {
			return lastCount, err
		}
	}

	if lastCount == 0 {
		logger.Warn().Msg("Feed has no items")
	}
	logger.Info().Int("items", lastCount).Msg("Finished scrolling")
	return lastCount, nil
}
