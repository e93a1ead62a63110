package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for a scrape run.
type Metrics struct {
	Registry       *prometheus.Registry
	VideosTotal    *prometheus.CounterVec
	DetailDuration prometheus.Histogram
	ListingSize    prometheus.Gauge
	FeedItems      prometheus.Gauge
	RunsTotal      *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	videos := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokscrape_videos_total",
			Help: "Video detail visits by outcome.",
		},
		[]string{"outcome"},
	)
	detailDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tokscrape_detail_duration_seconds",
			Help:    "Time spent loading and reading one video page.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60},
		},
	)
	listing := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tokscrape_listing_videos",
		Help: "Video links collected from the selected tab.",
	})
	feed := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tokscrape_feed_items",
		Help: "Feed items loaded when scrolling converged.",
	})
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tokscrape_runs_total",
			Help: "Scrape runs by result code.",
		},
		[]string{"result"},
	)

	registry.MustRegister(videos, detailDuration, listing, feed, runs)

	return &Metrics{
		Registry:       registry,
		VideosTotal:    videos,
		DetailDuration: detailDuration,
		ListingSize:    listing,
		FeedItems:      feed,
		RunsTotal:      runs,
	}
}

// IncVideo counts one detail visit with the given outcome.
func (m *Metrics) IncVideo(outcome string) {
	if m == nil {
		return
	}
	m.VideosTotal.WithLabelValues(outcome).Inc()
}

// ObserveDetail records the duration of one detail visit.
func (m *Metrics) ObserveDetail(d time.Duration) {
	if m == nil {
		return
	}
	m.DetailDuration.Observe(d.Seconds())
}

func (m *Metrics) SetListing(n int) {
	if m == nil {
		return
	}
	m.ListingSize.Set(float64(n))
}

func (m *Metrics) SetFeedItems(n int) {
	if m == nil {
		return
	}
	m.FeedItems.Set(float64(n))
}

// IncRun counts a finished run; result is "ok" or an error code.
func (m *Metrics) IncRun(result string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(result).Inc()
}

// WriteFile dumps the registry in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
