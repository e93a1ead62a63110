package scraper

// BaseURL is the site every profile and video link is resolved against.
const BaseURL = "https://www.tiktok.com"

// Profile header
const (
	SelProfileTitle    = `h1[data-e2e="user-title"]`
	SelProfileSubtitle = `h2[data-e2e="user-subtitle"]`
	SelProfileBio      = `h2[data-e2e="user-bio"]`
	SelFollowers       = `strong[data-e2e="followers-count"]`
	SelFollowing       = `strong[data-e2e="following-count"]`
	SelLikesTotal      = `strong[data-e2e="likes-count"]`
)

// Feed
const (
	SelTabButton  = `button.TUXSegmentedControl-item`
	AttrTabActive = "data-active"

	SelPostItem   = `div[data-e2e="user-post-item"]`
	SelPostAnchor = `div[data-e2e="user-post-item"] a`
	SelVideoViews = `strong[data-e2e="video-views"]`

	// ViewCountDepth is how many ancestors above an anchor the view counter lives.
	ViewCountDepth = 2

	// VideoPathMarker identifies item links among the feed anchors.
	VideoPathMarker = "/video/"
)

// Video page
const (
	SelLikeCount    = `[data-e2e="like-count"]`
	SelCommentCount = `[data-e2e="comment-count"]`
	SelShareCount   = `[data-e2e="share-count"]`
)
