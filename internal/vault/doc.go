// Package vault provides the file tree abstraction underneath the media
// index: enumeration, reads, writes, renames and deletes addressed by
// vault-relative slash paths, plus a filesystem mutation subscription built
// on fsnotify.
//
// All paths exchanged with callers are relative to the vault root and use
// forward slashes regardless of platform. Dotfiles and dot-directories are
// invisible to enumeration and to the watcher.
//
// Stat and open operations go through ESTALE-aware retry helpers so that a
// vault mounted over NFS does not surface transient stale-handle errors to
// the index.
package vault
