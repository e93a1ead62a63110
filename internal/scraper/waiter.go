package scraper

import (
	"context"
	"time"
)

// Waiter performs the fixed pauses between browser actions.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// SleepWaiter waits on the wall clock and returns early if ctx is cancelled.
type SleepWaiter struct{}

func (SleepWaiter) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
