package scraper

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/law-makers/tokscrape/internal/browser"
	"github.com/law-makers/tokscrape/internal/browser/snapshot"
)

const profileHTML = `<html><body>
<h1 data-e2e="user-title">someone</h1>
<h2 data-e2e="user-subtitle">Some One</h2>
<h2 data-e2e="user-bio">dancing &amp; <b>cooking</b></h2>
<strong data-e2e="followers-count">1.2M</strong>
<strong data-e2e="following-count">180</strong>
<strong data-e2e="likes-count">33.4M</strong>
<div class="tabs">
  <button class="TUXSegmentedControl-item" data-active="true">Latest</button>
  <button class="TUXSegmentedControl-item" data-active="false">Popular</button>
  <button class="TUXSegmentedControl-item" data-active="false">Oldest</button>
</div>
<div class="feed">
  <div data-e2e="user-post-item"><div class="wrap"><a href="/@someone/video/1">A</a></div><strong data-e2e="video-views">10.5M</strong></div>
  <div data-e2e="user-post-item"><div class="wrap"><a href="/@someone">profile link</a></div></div>
  <div data-e2e="user-post-item"><div class="wrap"><a href="https://www.tiktok.com/@someone/video/2">B</a></div><strong data-e2e="video-views">900K</strong></div>
  <div data-e2e="user-post-item"><div class="wrap"><a href="/@someone/video/3">C</a></div></div>
</div>
</body></html>`

func videoHTML(likes, comments, shares string) string {
	return `<html><body>
<strong data-e2e="like-count">` + likes + `</strong>
<strong data-e2e="comment-count">` + comments + `</strong>
<strong data-e2e="share-count">` + shares + `</strong>
</body></html>`
}

func fixtureFS() fstest.MapFS {
	return fstest.MapFS{
		"@someone.html":         {Data: []byte(profileHTML)},
		"@someone/video/1.html": {Data: []byte(videoHTML("1.1M", "2,004", "310"))},
		// video 2 never renders its counters
		"@someone/video/2.html": {Data: []byte(`<html><body><p>loading</p></body></html>`)},
		"@someone/video/3.html": {Data: []byte(videoHTML("12K", "88", "5"))},
	}
}

func openProfile(t *testing.T) browser.Page {
	t.Helper()
	page, err := snapshot.New(fixtureFS()).NewPage(context.Background())
	require.NoError(t, err)
	require.NoError(t, page.Navigate(context.Background(), BaseURL+"/@someone"))
	t.Cleanup(func() { page.Close() })
	return page
}
