package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostLimiter_PerHostBuckets(t *testing.T) {
	l := NewHostLimiter(0.001, 1)

	require.NoError(t, l.Wait(context.Background(), "https://www.tiktok.com/@a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "https://www.tiktok.com/@a/video/1"), "same host shares a bucket")
	assert.NoError(t, l.Wait(context.Background(), "https://m.tiktok.com/@a"), "other host has its own bucket")
}

func TestHostLimiter_WaitHonoursContext(t *testing.T) {
	l := NewHostLimiter(0.001, 1)
	require.NoError(t, l.Wait(context.Background(), "https://www.tiktok.com/"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx, "https://www.tiktok.com/"))
}

func TestHostLimiter_HostlessURLsPass(t *testing.T) {
	l := NewHostLimiter(0.001, 1)
	for i := 0; i < 3; i++ {
		assert.NoError(t, l.Wait(context.Background(), "/@a/video/1"))
	}
}

func TestNewHostLimiter_Defaults(t *testing.T) {
	l := NewHostLimiter(-1, 0)
	assert.Equal(t, DefaultBurst, l.burst)
	assert.InDelta(t, DefaultRate, float64(l.perHost), 1e-9)
}
