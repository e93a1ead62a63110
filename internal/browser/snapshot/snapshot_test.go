package snapshot

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/tokscrape/internal/browser"
)

const fixtureHTML = `<html><head>
<script id="SIGI_STATE">window['SIGI_STATE'] = {"a": 1};</script>
</head><body>
<div class="tabs">
  <button class="tab" data-active="true">Latest</button>
  <button class="tab" data-active="false">Popular</button>
</div>
<ul><li><a href="/x">x</a><span>1</span></li><li><a href="/y">y</a></li></ul>
</body></html>`

func openFixture(t *testing.T) browser.Page {
	t.Helper()
	b := New(fstest.MapFS{"@someone.html": {Data: []byte(fixtureHTML)}})
	p, err := b.NewPage(context.Background())
	require.NoError(t, err)
	require.NoError(t, p.Navigate(context.Background(), "https://www.tiktok.com/@someone"))
	return p
}

func TestFileFor(t *testing.T) {
	tests := map[string]string{
		"https://www.tiktok.com/@someone":         "@someone.html",
		"https://www.tiktok.com/@someone/video/1": "@someone/video/1.html",
		"https://www.tiktok.com/":                 "index.html",
		"https://www.tiktok.com/../../etc/passwd": "etc/passwd.html",
	}
	for in, want := range tests {
		got, err := FileFor(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestPage_ReadsScriptText(t *testing.T) {
	p := openFixture(t)
	src, err := p.Text(context.Background(), browser.First("script#SIGI_STATE"))
	require.NoError(t, err)
	assert.Equal(t, `window['SIGI_STATE'] = {"a": 1};`, src)
}

func TestPage_LocatorWalksAncestors(t *testing.T) {
	p := openFixture(t)
	ctx := context.Background()

	n, err := p.Count(ctx, "ul a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	text, err := p.Text(ctx, browser.Locator{Selector: "ul a", Index: 0, Up: 1, Within: "span"})
	require.NoError(t, err)
	assert.Equal(t, "1", text)

	_, err = p.Text(ctx, browser.Locator{Selector: "ul a", Index: 1, Up: 1, Within: "span"})
	assert.ErrorIs(t, err, browser.ErrNotFound)

	href, ok, err := p.Attribute(ctx, browser.Nth("ul a", 1), "href")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/y", href)
}

func TestPage_ClickMovesActiveFlag(t *testing.T) {
	p := openFixture(t)
	ctx := context.Background()

	require.NoError(t, p.Click(ctx, browser.Nth("button.tab", 1)))

	first, _, err := p.Attribute(ctx, browser.Nth("button.tab", 0), "data-active")
	require.NoError(t, err)
	second, _, err := p.Attribute(ctx, browser.Nth("button.tab", 1), "data-active")
	require.NoError(t, err)
	assert.Equal(t, "false", first)
	assert.Equal(t, "true", second)
}

func TestPage_WaitVisibleAndMissingFile(t *testing.T) {
	p := openFixture(t)
	ctx := context.Background()

	assert.NoError(t, p.WaitVisible(ctx, "ul", time.Second))
	assert.ErrorIs(t, p.WaitVisible(ctx, "video", time.Second), context.DeadlineExceeded)

	err := p.Navigate(ctx, "https://www.tiktok.com/@nobody")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, p.Close())
	_, err = p.Count(ctx, "ul")
	assert.ErrorIs(t, err, browser.ErrPageClosed)
}
