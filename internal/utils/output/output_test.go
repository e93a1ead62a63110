package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/law-makers/tokscrape/pkg/models"
)

func sampleResult() *models.Result {
	return &models.Result{
		Profile: models.Profile{
			Username:    "someone",
			DisplayName: "Some One",
			Bio:         "cats & <dogs>",
			Followers:   "1.2M",
			Following:   "180",
			Likes:       "33.4M",
		},
		TotalPopularVideos: 3,
		Videos: []models.VideoDetail{
			{VideoLink: "https://www.tiktok.com/@someone/video/1?lang=en&is_from_webapp=1", Likes: "1.1M", Comments: "2,004", Shares: "310", Views: "10.5M"},
			{VideoLink: "https://www.tiktok.com/@someone/video/3", Likes: "12K", Comments: "88", Shares: "5", Views: "0"},
		},
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "tiktok_someone_popular.json", Filename("someone", "Popular", "json"))
	assert.Equal(t, "tiktok_someone_most_liked.csv", Filename("someone", " Most  Liked ", "csv"))
	assert.Equal(t, "tiktok_someone_popular.md", Filename("someone", "", "md"))
}

func TestFilename_StaysInOutputDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a/../../../escape", `..\..\x`, "/abs"} {
		path := filepath.Join(dir, Filename(name, "Popular", "json"))
		assert.Equal(t, dir, filepath.Dir(path), name)
	}
	assert.Equal(t, "tiktok_a_.._.._.._escape_popular.json", Filename("a/../../../escape", "Popular", "json"))
}

func TestJSON_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", Filename("someone", "Popular", "json"))
	want := sampleResult()

	require.NoError(t, SaveJSON(want, path))
	got, err := LoadJSON(path)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestEncodeJSON_Layout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, sampleResult()))
	s := buf.String()

	assert.Contains(t, s, "cats & <dogs>", "HTML characters are not escaped")
	assert.Contains(t, s, "?lang=en&is_from_webapp=1")
	assert.Contains(t, s, "\n  \"profile\": {")
	assert.Contains(t, s, "\n    \"displayName\": \"Some One\"")
	assert.Contains(t, s, "\"totalPopularVideos\": 3")

	// key order follows the struct
	assert.Less(t, strings.Index(s, "\"profile\""), strings.Index(s, "\"totalPopularVideos\""))
	assert.Less(t, strings.Index(s, "\"totalPopularVideos\""), strings.Index(s, "\"videos\""))
}

func TestEncodeJSON_EmptyVideosIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, &models.Result{Videos: []models.VideoDetail{}}))
	assert.Contains(t, buf.String(), "\"videos\": []")
}

func TestSaveCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "videos.csv")
	require.NoError(t, SaveCSV(sampleResult(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "2,004", rows[1][2])
	assert.Equal(t, "https://www.tiktok.com/@someone/video/3", rows[2][0])
}

func TestRenderMarkdown(t *testing.T) {
	res := sampleResult()
	res.Videos = append(res.Videos, models.VideoDetail{VideoLink: "/@someone/video/9", Likes: "1", Comments: "0", Shares: "0", Views: "7"})

	out, err := RenderMarkdown(res, "https://www.tiktok.com")
	require.NoError(t, err)

	assert.Contains(t, out, "# Some One (@someone)")
	assert.Contains(t, out, "1.2M")
	assert.Contains(t, out, "Comments |")
	assert.Contains(t, out, "(https://www.tiktok.com/@someone/video/9)")
	assert.Contains(t, out, "(https://www.tiktok.com/@someone/video/3)")
}

func TestSaveMarkdown(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	require.NoError(t, SaveMarkdown(sampleResult(), "https://www.tiktok.com", path))
	assert.FileExists(t, path)
}
