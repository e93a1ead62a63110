package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverge_StopsAfterThreeStableObservations(t *testing.T) {
	page := &feedPage{counts: []int{5, 5, 5, 8, 8, 8, 8}}
	w := &recordingWaiter{}

	got, err := Converge(context.Background(), page, w, 50, time.Second)
	require.NoError(t, err)

	assert.Equal(t, 8, got)
	assert.Equal(t, 7, page.observed)
	assert.Equal(t, 6, page.scrolls)
	assert.Equal(t, 6, w.count(time.Second))
}

func TestConverge_BudgetExhausted(t *testing.T) {
	page := &feedPage{counts: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}}
	w := &recordingWaiter{}

	got, err := Converge(context.Background(), page, w, 4, 10*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, 4, got, "last observed count")
	assert.Equal(t, 4, page.observed)
	assert.Equal(t, 4, page.scrolls)
}

func TestConverge_EmptyFeed(t *testing.T) {
	page := &feedPage{counts: []int{0}}

	got, err := Converge(context.Background(), page, &recordingWaiter{}, 50, time.Second)
	require.NoError(t, err)

	assert.Equal(t, 0, got)
	assert.Equal(t, 3, page.observed)
	assert.Equal(t, 2, page.scrolls)
}

func TestConverge_GrowthResetsStability(t *testing.T) {
	page := &feedPage{counts: []int{3, 3, 6, 6, 9, 9, 9, 9}}

	got, err := Converge(context.Background(), page, &recordingWaiter{}, 50, time.Second)
	require.NoError(t, err)

	assert.Equal(t, 9, got)
	assert.Equal(t, 8, page.observed)
}

func TestConverge_CountErrorPropagates(t *testing.T) {
	page := &feedPage{countErr: errBoom}

	_, err := Converge(context.Background(), page, &recordingWaiter{}, 50, time.Second)
	assert.ErrorIs(t, err, errBoom)
	assert.Zero(t, page.scrolls)
}

func TestConverge_CancelledWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	page := &feedPage{counts: []int{1, 2, 3}}

	_, err := Converge(ctx, page, &recordingWaiter{}, 50, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
