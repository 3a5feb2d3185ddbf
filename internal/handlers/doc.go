// Package handlers implements the HTTP API over the media index: filtered
// and sorted file listings, the tag map, multipart upload into the vault,
// extension reconfiguration, reindexing, and health probes.
//
// Listings are read-only views over the index; mutations go through the
// vault so the filesystem watcher and mutation router remain the single
// path by which index state changes.
package handlers
