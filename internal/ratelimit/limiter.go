// Package ratelimit paces page loads per host so a run never hammers the site
// faster than the configured navigation rate.
package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	urlutil "github.com/law-makers/tokscrape/internal/utils/url"
)

const (
	DefaultRate  = 1.0
	DefaultBurst = 1
)

// Limiter blocks a navigation until its host may be visited again.
type Limiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// HostLimiter keeps one token bucket per host.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing navigationsPerSecond loads per
// host with the given burst. Non-positive values fall back to the defaults.
func NewHostLimiter(navigationsPerSecond float64, burst int) *HostLimiter {
	if navigationsPerSecond <= 0 {
		navigationsPerSecond = DefaultRate
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		perHost:  rate.Limit(navigationsPerSecond),
		burst:    burst,
	}
}

// Wait blocks until rawURL's host has a free token. URLs without a host
// (snapshot replays, about:blank) pass straight through.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	host := urlutil.Host(rawURL)
	if host == "" {
		return nil
	}
	return l.get(host).Wait(ctx)
}

func (l *HostLimiter) get(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.limiters[host]
	if !ok {
		lim = rate.NewLimiter(l.perHost, l.burst)
		l.limiters[host] = lim
	}
	return lim
}

// Unlimited never blocks.
type Unlimited struct{}

func (Unlimited) Wait(context.Context, string) error { return nil }
