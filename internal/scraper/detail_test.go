package scraper

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/tokscrape/internal/browser/snapshot"
	"github.com/law-makers/tokscrape/pkg/models"
)

func listing(urls ...string) []models.ListingEntry {
	out := make([]models.ListingEntry, len(urls))
	for i, u := range urls {
		out[i] = models.ListingEntry{URL: u, Views: "v" + u}
	}
	return out
}

func TestCollectDetails_SkipsFailedItem(t *testing.T) {
	b := &videoBrowser{videos: map[string]*videoStats{
		"A": {likes: "1", comments: "2", shares: "3"},
		"B": nil,
		"C": {likes: "7", comments: "8", shares: "9"},
	}}
	w := &recordingWaiter{}
	entries := listing("A", "B", "C")

	details, err := CollectDetails(context.Background(), b, entries, 3, DetailOptions{
		WaitTimeout: time.Second,
		ItemDelay:   2 * time.Second,
		Waiter:      w,
	})
	require.NoError(t, err)

	assert.Equal(t, []models.VideoDetail{
		{VideoLink: "A", Likes: "1", Comments: "2", Shares: "3", Views: "vA"},
		{VideoLink: "C", Likes: "7", Comments: "8", Shares: "9", Views: "vC"},
	}, details)

	res := Assemble(models.Profile{Username: "u"}, entries, details)
	assert.Equal(t, 3, res.TotalPopularVideos)
	assert.Len(t, res.Videos, 2)

	require.Len(t, b.pages, 1, "one secondary page for all items")
	assert.Equal(t, []string{"A", "B", "C"}, b.pages[0].visited)
	assert.Equal(t, 1, b.pages[0].closes)
	assert.Equal(t, 2, w.count(2*time.Second))
}

func TestCollectDetails_RespectsLimit(t *testing.T) {
	b := &videoBrowser{videos: map[string]*videoStats{
		"A": {likes: "1"}, "B": {likes: "2"}, "C": {likes: "3"},
	}}

	for _, limit := range []int{1, 2, 3, 10} {
		details, err := CollectDetails(context.Background(), b, listing("A", "B", "C"), limit, DetailOptions{Waiter: &recordingWaiter{}})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(details), min(limit, 3))
	}
}

func TestCollectDetails_MissingCountersDefaultToZero(t *testing.T) {
	b := &videoBrowser{videos: map[string]*videoStats{"A": {likes: "5"}}}

	details, err := CollectDetails(context.Background(), b, listing("A"), 1, DetailOptions{Waiter: &recordingWaiter{}})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "0", details[0].Comments)
	assert.Equal(t, "0", details[0].Shares)
}

func TestCollectDetails_NavigationFailureSkipped(t *testing.T) {
	b := &videoBrowser{
		videos: map[string]*videoStats{"A": {likes: "1"}, "B": {likes: "2"}},
		navErr: map[string]error{"A": errBoom},
	}
	m := NewMetrics()

	details, err := CollectDetails(context.Background(), b, listing("A", "B"), 2, DetailOptions{
		Waiter:  &recordingWaiter{},
		Metrics: m,
	})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "B", details[0].VideoLink)
}

func TestCollectDetails_ZeroLimitOpensNothing(t *testing.T) {
	b := &videoBrowser{}

	details, err := CollectDetails(context.Background(), b, listing("A"), 0, DetailOptions{})
	require.NoError(t, err)
	assert.Empty(t, details)
	assert.Empty(t, b.pages)
}

func TestCollectDetails_OpenPageFails(t *testing.T) {
	b := &videoBrowser{openErr: errBoom}

	_, err := CollectDetails(context.Background(), b, listing("A"), 1, DetailOptions{})
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, ErrCodeDetail, CodeOf(err))
}

func TestCollectDetails_CancelledStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &videoBrowser{videos: map[string]*videoStats{"A": {likes: "1"}, "B": {likes: "2"}}}

	w := &cancelWaiter{cancel: cancel}
	details, err := CollectDetails(ctx, b, listing("A", "B"), 2, DetailOptions{Waiter: w})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, details, 1)
	assert.Equal(t, 1, b.pages[0].closes)
}

type cancelWaiter struct{ cancel context.CancelFunc }

func (w *cancelWaiter) Wait(ctx context.Context, d time.Duration) error {
	w.cancel()
	return ctx.Err()
}

type countingProgress struct{ added, finished int }

func (p *countingProgress) Add(n int) error {
	p.added += n
	return nil
}

func (p *countingProgress) Finish() error {
	p.finished++
	return nil
}

func TestCollectDetails_ReportsProgress(t *testing.T) {
	b := &videoBrowser{videos: map[string]*videoStats{"A": {likes: "1"}, "B": nil}}
	p := &countingProgress{}

	_, err := CollectDetails(context.Background(), b, listing("A", "B"), 2, DetailOptions{
		Waiter:   &recordingWaiter{},
		Progress: p,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, p.added)
	assert.Equal(t, 1, p.finished)
}

const stateOnlyVideoHTML = `<html><head>
<script id="__UNIVERSAL_DATA_FOR_REHYDRATION__" type="application/json">{"__DEFAULT_SCOPE__":{"webapp.video-detail":{"itemInfo":{"itemStruct":{"id":"4","stats":{"diggCount":51000,"commentCount":120,"shareCount":33,"playCount":700000}}}}}}</script>
</head><body><p>loading</p></body></html>`

func TestCollectDetails_StateFallback(t *testing.T) {
	fsys := fixtureFS()
	fsys["@someone/video/4.html"] = &fstest.MapFile{Data: []byte(stateOnlyVideoHTML)}
	b := snapshot.New(fsys)

	entries := []models.ListingEntry{
		{URL: BaseURL + "/@someone/video/2", Views: "900K"},
		{URL: BaseURL + "/@someone/video/4", Views: models.DefaultViews},
	}

	details, err := CollectDetails(context.Background(), b, entries, 2, DetailOptions{
		Waiter:        &recordingWaiter{},
		StateFallback: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []models.VideoDetail{
		{VideoLink: BaseURL + "/@someone/video/4", Likes: "51000", Comments: "120", Shares: "33", Views: "700000"},
	}, details, "video 2 has neither counters nor state and is skipped")

	details, err = CollectDetails(context.Background(), b, entries, 2, DetailOptions{Waiter: &recordingWaiter{}})
	require.NoError(t, err)
	assert.Empty(t, details, "without the fallback a missing like counter skips the video")
}

func TestCollectDetails_StateForOtherVideoIgnored(t *testing.T) {
	fsys := fixtureFS()
	fsys["@someone/video/5.html"] = &fstest.MapFile{Data: []byte(stateOnlyVideoHTML)}

	details, err := CollectDetails(context.Background(), snapshot.New(fsys),
		[]models.ListingEntry{{URL: BaseURL + "/@someone/video/5", Views: "1"}}, 1,
		DetailOptions{Waiter: &recordingWaiter{}, StateFallback: true})
	require.NoError(t, err)
	assert.Empty(t, details)
}
