package scraper

import "github.com/law-makers/tokscrape/pkg/models"

// Assemble combines the phase outputs into the persisted result. The total
// is the listing size, independent of how many details succeeded.
func Assemble(profile models.Profile, entries []models.ListingEntry, details []models.VideoDetail) models.Result {
	if details == nil {
		details = []models.VideoDetail{}
	}
	return models.Result{
		Profile:            profile,
		TotalPopularVideos: len(entries),
		Videos:             details,
	}
}
