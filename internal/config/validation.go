package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	urlutil "github.com/law-makers/tokscrape/internal/utils/url"
)

var validEngines = map[string]bool{"chrome": true, "rod": true, "snapshot": true}

func validate(c *Config) error {
	var errs []error

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil || c.LogLevel == "" {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}
	if !validEngines[c.Engine] {
		errs = append(errs, fmt.Errorf("unknown engine %q (want chrome, rod or snapshot)", c.Engine))
	}
	if c.Engine == "snapshot" && c.SnapshotDir == "" {
		errs = append(errs, errors.New("snapshot engine needs --snapshot-dir"))
	}
	if err := urlutil.ValidateURL(c.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("base url: %w", err))
	}
	if strings.TrimSpace(c.Tab) == "" {
		errs = append(errs, errors.New("tab label cannot be empty"))
	}
	if c.MaxScrolls < 1 {
		errs = append(errs, errors.New("max scrolls must be >= 1"))
	}
	if c.NavRateLimitRPS <= 0 || c.NavRateLimitBurst <= 0 {
		errs = append(errs, errors.New("navigation rate limit and burst must be > 0"))
	}

	timeouts := map[string]int64{
		"navigation timeout":   int64(c.NavigationTimeout),
		"profile wait timeout": int64(c.ProfileWaitTimeout),
		"tab wait timeout":     int64(c.TabWaitTimeout),
		"detail wait timeout":  int64(c.DetailWaitTimeout),
	}
	for name, d := range timeouts {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0", name))
		}
	}
	if c.ScrollPause < 0 || c.TabSettleDelay < 0 || c.ItemDelay < 0 {
		errs = append(errs, errors.New("delays cannot be negative"))
	}

	return errors.Join(errs...)
}
