package scraper

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsWriteFile(t *testing.T) {
	m := NewMetrics()
	m.IncRun("ok")
	m.IncVideo("ok")
	m.IncVideo("error")
	m.ObserveDetail(1500 * time.Millisecond)
	m.SetListing(12)

	path := filepath.Join(t.TempDir(), "tokscrape.prom")
	require.NoError(t, m.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `tokscrape_runs_total{result="ok"} 1`)
	assert.Contains(t, text, `tokscrape_videos_total{outcome="error"} 1`)
	assert.Contains(t, text, "tokscrape_listing_videos 12")
	assert.Contains(t, text, "tokscrape_detail_duration_seconds_count 1")
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.IncRun("ok")
	m.SetFeedItems(3)
	assert.NoError(t, m.WriteFile("ignored"))
	assert.NoError(t, NewMetrics().WriteFile(""))
}
