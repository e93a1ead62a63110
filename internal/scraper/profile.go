package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/law-makers/tokscrape/internal/browser"
	"github.com/law-makers/tokscrape/pkg/models"
)

// ScrapeProfile waits for the profile header and reads its fields. Only the
// header wait is fatal; a missing field is left empty.
func ScrapeProfile(ctx context.Context, c browser.Capability, timeout time.Duration) (models.Profile, error) {
	var p models.Profile
	if err := c.WaitVisible(ctx, SelProfileTitle, timeout); err != nil {
		return p, err
	}

	fields := []struct {
		sel string
		dst *string
	}{
		{SelProfileTitle, &p.Username},
		{SelProfileSubtitle, &p.DisplayName},
		{SelProfileBio, &p.Bio},
		{SelFollowers, &p.Followers},
		{SelFollowing, &p.Following},
		{SelLikesTotal, &p.Likes},
	}
	for _, f := range fields {
		text, err := c.Text(ctx, browser.First(f.sel))
		switch {
		case errors.Is(err, browser.ErrNotFound):
			zerolog.Ctx(ctx).Warn().Str("selector", f.sel).Msg("Profile field missing")
		case err != nil:
			return p, err
		default:
			*f.dst = text
		}
	}
	return p, nil
}
