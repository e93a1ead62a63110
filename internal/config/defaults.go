package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel = "info"
	DefaultJSONLog  = false

	DefaultEngine    = "chrome"
	DefaultHeadless  = false
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	DefaultBaseURL = "https://www.tiktok.com"
	DefaultTab     = "Popular"

	DefaultMaxScrolls         = 50
	DefaultScrollPause        = 1 * time.Second
	DefaultProfileWaitTimeout = 15 * time.Second
	DefaultTabWaitTimeout     = 7 * time.Second
	DefaultTabSettleDelay     = 3 * time.Second
	DefaultNavigationTimeout  = 60 * time.Second
	DefaultDetailWaitTimeout  = 15 * time.Second
	DefaultItemDelay          = 2 * time.Second

	// DefaultStateFallback reads counters from the embedded page state when
	// the like counter never renders.
	DefaultStateFallback = true

	DefaultNavRateLimitRPS   = 1.0
	DefaultNavRateLimitBurst = 1

	DefaultOutputDir = "."

	// EnvPrefix prefixes every environment override, e.g. TOKSCRAPE_PROXY.
	EnvPrefix = "TOKSCRAPE_"
)
