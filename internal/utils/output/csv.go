package output

import (
	"bytes"
	"encoding/csv"

	"github.com/law-makers/tokscrape/pkg/models"
)

var csvHeader = []string{"videoLink", "likes", "comments", "shares", "views"}

// SaveCSV writes one row per scraped video, in result order.
func SaveCSV(res *models.Result, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, v := range res.Videos {
		if err := w.Write([]string{v.VideoLink, v.Likes, v.Comments, v.Shares, v.Views}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}
