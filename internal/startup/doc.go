// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig].
// The following environment variables are supported:
//
//   - VAULT_DIR: Path to the media vault (default: /vault)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - SIDECAR_WARMUP: Precompute sidecar attributes after the initial scan (default: true)
//   - MEDIA_EXTENSIONS: Comma-separated extension list overriding the built-in set
//   - INDEX_WORKERS: Worker count for the attribute warm-up pool
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The vault directory is created if missing and must be writable, since
// sidecar documents are written alongside the media files they describe.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
// The package provides structured logging functions for consistent output:
// [LogIndexInit], [LogIndexReady], [LogWatcherStarted], [LogHTTPRoutes],
// [LogServerStarted], [LogShutdownInitiated], [LogShutdownComplete].
package startup
