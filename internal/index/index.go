package index

import (
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"media-index/internal/logging"
	"media-index/internal/mediatypes"
	"media-index/internal/metrics"
	"media-index/internal/record"
	"media-index/internal/sidecar"
	"media-index/internal/vault"
)

// Index is the live collection of all known media records, keyed by vault
// path, with a tag reverse-lookup. It owns record lifecycle: creation during
// scans, insertion, removal, and extension-set reconciliation.
type Index struct {
	vault    *vault.Vault
	notifier *Notifier

	mu          sync.RWMutex
	files       map[string]record.Record
	tags        map[string]map[string]record.Record // tag -> path -> record
	extensions  map[string]bool
	initialized bool
}

// New creates an empty index over a vault, tracking the given extension set
// (nil means the default media extensions).
func New(v *vault.Vault, extensions map[string]bool) *Index {
	if extensions == nil {
		extensions = mediatypes.DefaultExtensions()
	}
	return &Index{
		vault:      v,
		notifier:   NewNotifier(),
		files:      make(map[string]record.Record),
		tags:       make(map[string]map[string]record.Record),
		extensions: extensions,
	}
}

// Notifier returns the change notifier presentation layers subscribe to.
func (ix *Index) Notifier() *Notifier {
	return ix.notifier
}

// Vault returns the underlying vault.
func (ix *Index) Vault() *vault.Vault {
	return ix.vault
}

// Initialized reports whether the initial scan has completed.
func (ix *Index) Initialized() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.initialized
}

// Initialize performs the one-time full vault scan, constructing a record
// for every file whose extension is in the configured set and folding its
// tags into the tag map. Idempotent: a second call is a no-op. A vault with
// no matching files yields an empty index, not an error.
func (ix *Index) Initialize() error {
	ix.mu.Lock()
	if ix.initialized {
		ix.mu.Unlock()
		logging.Debug("Index already initialized, skipping scan")
		return nil
	}
	// Mark before releasing the lock so concurrent initializers are no-ops;
	// a failed scan resets the flag.
	ix.initialized = true
	ix.mu.Unlock()

	start := time.Now()
	metrics.IndexScansTotal.Inc()
	logging.Info("Starting vault scan...")

	files, err := ix.vault.AllFiles()
	if err != nil {
		metrics.IndexScanErrors.Inc()
		ix.mu.Lock()
		ix.initialized = false
		ix.mu.Unlock()
		return fmt.Errorf("vault scan failed: %w", err)
	}

	indexed := 0
	for _, f := range files {
		if !ix.Tracks(f.Path) {
			continue
		}
		rec, err := record.New(ix.vault, f)
		if err != nil {
			metrics.IndexScanErrors.Inc()
			logging.Warn("Skipping %s during scan: %v", f.Path, err)
			continue
		}
		ix.AddFile(rec)
		indexed++
	}

	metrics.IndexScanDuration.Observe(time.Since(start).Seconds())
	logging.Info("Vault scan complete: %d media files indexed in %v", indexed, time.Since(start))
	return nil
}

// Reindex discards all records and runs a fresh vault scan. Records and
// tags reappear as the scan finds them; readers in between see a partial
// but consistent index.
func (ix *Index) Reindex() error {
	ix.mu.Lock()
	ix.files = make(map[string]record.Record)
	ix.tags = make(map[string]map[string]record.Record)
	ix.initialized = false
	ix.mu.Unlock()
	return ix.Initialize()
}

// Tracks reports whether a vault path belongs in the index: its extension
// is in the configured set and it is not a sidecar document.
func (ix *Index) Tracks(path string) bool {
	if sidecar.IsSidecarPath(path) {
		return false
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.extensions[extOf(path)]
}

// IsSidecar reports whether a vault path names a sidecar document.
func (ix *Index) IsSidecar(path string) bool {
	return sidecar.IsSidecarPath(path)
}

// AddFile inserts a record, overwriting any previous record at the same
// path, and merges its tags into the tag map.
func (ix *Index) AddFile(rec record.Record) {
	tags := rec.Tags() // sidecar read, outside the lock

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.files[rec.Path()]; exists {
		ix.dropTagsLocked(rec.Path())
	}
	ix.files[rec.Path()] = rec
	ix.addTagsLocked(rec, tags)

	metrics.IndexOpsTotal.WithLabelValues("add").Inc()
}

// RemoveFile deletes the record at path from both maps. Returns whether a
// record was actually present, so callers can decide whether to continue
// cascading work.
func (ix *Index) RemoveFile(path string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.files[path]; !exists {
		return false
	}
	delete(ix.files, path)
	ix.dropTagsLocked(path)

	metrics.IndexOpsTotal.WithLabelValues("remove").Inc()
	return true
}

// GetFile returns the record at path, if any.
func (ix *Index) GetFile(path string) (record.Record, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	rec, ok := ix.files[path]
	return rec, ok
}

// RefreshTags re-reads a record's tag set from its sidecar and updates the
// tag map. Both maps are touched under one lock so readers never observe a
// half-applied change.
func (ix *Index) RefreshTags(path string) {
	ix.mu.RLock()
	rec, ok := ix.files[path]
	ix.mu.RUnlock()
	if !ok {
		return
	}

	tags := rec.Tags()

	ix.mu.Lock()
	defer ix.mu.Unlock()
	// Re-check: the record may have been removed while tags were read.
	if _, ok := ix.files[path]; !ok {
		return
	}
	ix.dropTagsLocked(path)
	ix.addTagsLocked(rec, tags)
}

// Files returns a point-in-time snapshot of all records.
func (ix *Index) Files() []record.Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	records := make([]record.Record, 0, len(ix.files))
	for _, rec := range ix.files {
		records = append(records, rec)
	}
	return records
}

// Len returns the number of records currently indexed.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.files)
}

// Tags returns a snapshot of the tag map: tag name to records carrying it.
func (ix *Index) Tags() map[string][]record.Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make(map[string][]record.Record, len(ix.tags))
	for tag, members := range ix.tags {
		records := make([]record.Record, 0, len(members))
		for _, rec := range members {
			records = append(records, rec)
		}
		out[tag] = records
	}
	return out
}

// TaggedWith returns the records carrying a tag.
func (ix *Index) TaggedWith(tag string) []record.Record {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	members, ok := ix.tags[tag]
	if !ok {
		return nil
	}
	records := make([]record.Record, 0, len(members))
	for _, rec := range members {
		records = append(records, rec)
	}
	return records
}

// Extensions returns a copy of the configured extension set.
func (ix *Index) Extensions() map[string]bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make(map[string]bool, len(ix.extensions))
	for ext := range ix.extensions {
		out[ext] = true
	}
	return out
}

// GetStats reports current index statistics for the metrics collector.
func (ix *Index) GetStats() metrics.Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	stats := metrics.Stats{TotalTags: len(ix.tags)}
	for _, rec := range ix.files {
		switch rec.Kind() {
		case mediatypes.KindImage:
			stats.TotalImages++
		case mediatypes.KindVideo:
			stats.TotalVideos++
		default:
			stats.TotalOther++
		}
	}
	return stats
}

// Close shuts down the change notifier.
func (ix *Index) Close() {
	ix.notifier.Close()
}

// addTagsLocked folds a record's tags into the tag map. Caller holds mu.
func (ix *Index) addTagsLocked(rec record.Record, tags []string) {
	for _, tag := range tags {
		members, ok := ix.tags[tag]
		if !ok {
			members = make(map[string]record.Record)
			ix.tags[tag] = members
		}
		members[rec.Path()] = rec
	}
}

// dropTagsLocked removes every tag entry pointing at path, pruning tags
// with no remaining members. Caller holds mu.
func (ix *Index) dropTagsLocked(path string) {
	for tag, members := range ix.tags {
		if _, ok := members[path]; ok {
			delete(members, path)
			if len(members) == 0 {
				delete(ix.tags, tag)
			}
		}
	}
}

// extOf returns the lowercase extension of a slash path without the
// leading dot.
func extOf(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}
