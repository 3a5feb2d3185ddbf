// Package main provides the entry point for the Media Index service.
//
// Media Index maintains a live, queryable index of the media files in a
// vault directory. Every media file is paired with a markdown sidecar
// document whose YAML front matter caches derived attributes: pixel
// dimensions, a dominant-color palette, tags, and a last-updated stamp.
//
// # Application Lifecycle
//
//  1. Configuration Loading: reads environment variables and validates the
//     vault directory
//  2. Initial Scan: walks the vault and builds the in-memory index
//  3. Filesystem Watcher: subscribes to vault mutations; the mutation
//     router keeps index and sidecar pairing consistent
//  4. Sidecar Warm-up: optional worker pool precomputes cached attributes
//  5. HTTP Server Setup: query, tag, upload, and admin endpoints
//  6. Graceful Shutdown: SIGINT/SIGTERM stops the watcher, notifier, and
//     HTTP servers under a timeout
//
// # HTTP Servers
//
// The application runs two HTTP servers:
//
//  1. Main server (default port 8080): the /api endpoints plus /healthz
//     and /readyz probes
//  2. Metrics server (default port 9090, optional): Prometheus /metrics
//
// # Environment Variables
//
//   - VAULT_DIR: Root directory containing media files and sidecars
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - SIDECAR_WARMUP: Precompute attributes after the initial scan (default: true)
//   - MEDIA_EXTENSIONS: Comma-separated extension override
//   - INDEX_WORKERS: Warm-up worker pool size
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//
// # Persistence
//
// Derived attributes live entirely inside sidecar front matter; there is
// no database. The index is rebuilt from media files and sidecars on every
// start, which keeps the vault portable and the sidecars authoritative.
//
// # Related Packages
//
//   - [media-index/internal/vault]: file tree abstraction and watcher
//   - [media-index/internal/sidecar]: front-matter documents
//   - [media-index/internal/record]: media records and attribute caching
//   - [media-index/internal/index]: the in-memory index
//   - [media-index/internal/router]: mutation routing and pairing repair
//   - [media-index/internal/query]: filter/sort evaluation
//   - [media-index/internal/handlers]: HTTP API
package main
