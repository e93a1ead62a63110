package models

// Profile is the header of a TikTok account page. Every field is the display
// string exactly as rendered (e.g. "1.2M"); nothing is parsed to a number.
type Profile struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Followers   string `json:"followers"`
	Following   string `json:"following"`
	Likes       string `json:"likes"`
}

// DefaultViews is used when a feed tile has no view counter.
const DefaultViews = "0"

// ListingEntry is one video tile discovered in the profile feed
type ListingEntry struct {
	URL   string `json:"url"`
	Views string `json:"views"`
}

// VideoDetail holds the engagement counters read from a video page.
// Views is carried over from the feed tile.
type VideoDetail struct {
	VideoLink string `json:"videoLink"`
	Likes     string `json:"likes"`
	Comments  string `json:"comments"`
	Shares    string `json:"shares"`
	Views     string `json:"views"`
}

// Result is the output record of one run
type Result struct {
	Profile            Profile       `json:"profile"`
	TotalPopularVideos int           `json:"totalPopularVideos"`
	Videos             []VideoDetail `json:"videos"`
}
