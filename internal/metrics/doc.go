// Package metrics defines the Prometheus collectors exported by the
// media-index service.
//
// All collectors are registered at package load via promauto and are safe for
// concurrent use. InitializeMetrics pre-populates known label combinations so
// every series is present from the first scrape, and Collector periodically
// refreshes the index gauges from a StatsProvider.
package metrics
