package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, kind := range []string{"image", "video", "other"} {
		IndexFiles.WithLabelValues(kind)
	}

	for _, op := range []string{"add", "remove", "evict"} {
		IndexOpsTotal.WithLabelValues(op)
	}

	for _, op := range []string{"created", "deleted", "renamed", "modified"} {
		WatcherEventsTotal.WithLabelValues(op)
	}

	for _, attr := range []string{"size", "colors"} {
		AttributeDecodeDuration.WithLabelValues(attr)
		AttributeDecodeFailures.WithLabelValues(attr)
		AttributeRecomputes.WithLabelValues(attr)
	}

	// Filesystem retry metrics (per retry-operation x volume)
	for _, op := range []string{"stat", "open", "readdir", "write"} {
		for _, vol := range []string{"vault", "unknown"} {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}
}
