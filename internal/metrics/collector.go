package metrics

import (
	"time"

	"media-index/internal/logging"
)

// StatsProvider supplies current index statistics for gauge refreshes.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the current index statistics.
type Stats struct {
	TotalImages int
	TotalVideos int
	TotalOther  int
	TotalTags   int
}

// Collector periodically collects and updates index gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop.
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection.
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	IndexFiles.WithLabelValues("image").Set(float64(stats.TotalImages))
	IndexFiles.WithLabelValues("video").Set(float64(stats.TotalVideos))
	IndexFiles.WithLabelValues("other").Set(float64(stats.TotalOther))
	IndexTags.Set(float64(stats.TotalTags))

	logging.Debug("Metrics collected: images=%d, videos=%d, other=%d, tags=%d",
		stats.TotalImages, stats.TotalVideos, stats.TotalOther, stats.TotalTags)
}
