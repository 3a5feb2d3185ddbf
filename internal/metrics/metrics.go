package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_index_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_index_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_index_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Index metrics
var (
	IndexFiles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_index_files",
			Help: "Number of media records currently in the index",
		},
		[]string{"kind"}, // "image", "video", "other"
	)

	IndexTags = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_index_tags",
			Help: "Number of distinct tags currently in the index",
		},
	)

	IndexScansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_index_scans_total",
			Help: "Total number of full vault scans",
		},
	)

	IndexScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_index_scan_duration_seconds",
			Help:    "Full vault scan duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	IndexScanErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_index_scan_errors_total",
			Help: "Total number of errors during vault scans",
		},
	)

	IndexOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_index_ops_total",
			Help: "Total number of index mutations",
		},
		[]string{"op"}, // "add", "remove", "evict"
	)
)

// Mutation watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_index_watcher_events_total",
			Help: "Total number of filesystem mutation events handled",
		},
		[]string{"op"}, // "created", "deleted", "renamed", "modified"
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_index_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)

	SidecarRepairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_index_sidecar_repairs_total",
			Help: "Total number of sidecar pairing repairs (recreate after delete or orphaned rename)",
		},
	)
)

// Sidecar metrics
var (
	SidecarCreatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_index_sidecar_creates_total",
			Help: "Total number of sidecar documents created",
		},
	)

	SidecarWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_index_sidecar_write_failures_total",
			Help: "Total number of dropped sidecar front matter writes",
		},
	)
)

// Derived attribute metrics
var (
	AttributeDecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_index_attribute_decode_duration_seconds",
			Help:    "Derived attribute computation duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"attribute"}, // "size", "colors"
	)

	AttributeDecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_index_attribute_decode_failures_total",
			Help: "Total number of failed derived attribute computations",
		},
		[]string{"attribute"},
	)

	AttributeRecomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_index_attribute_recomputes_total",
			Help: "Total number of forced attribute recomputations after staleness detection",
		},
		[]string{"attribute"},
	)
)

// Filesystem retry metrics (NFS resilience)
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_index_fs_retry_attempts_total",
			Help: "Total number of filesystem operation retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_index_fs_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_index_fs_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_index_fs_stale_errors_total",
			Help: "Total number of NFS stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_index_fs_retry_duration_seconds",
			Help:    "Total duration of filesystem operations including retries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation", "volume"},
	)
)

// Memory pressure metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_index_memory_usage_ratio",
			Help: "Current heap usage as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_index_memory_paused",
			Help: "Whether attribute computation is paused for memory pressure (1) or running (0)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_index_memory_gc_pauses_total",
			Help: "Total number of forced garbage collections under memory pressure",
		},
	)
)
