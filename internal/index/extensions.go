package index

import (
	"fmt"

	"media-index/internal/logging"
	"media-index/internal/metrics"
	"media-index/internal/record"
)

// UpdateExtensions swaps the tracked extension set at runtime. Records
// whose extension left the set are evicted; files whose extension joined
// the set are discovered and inserted. No full rescan of already-tracked
// extensions happens and the watcher keeps running throughout.
func (ix *Index) UpdateExtensions(extensions map[string]bool) error {
	ix.mu.Lock()
	old := ix.extensions
	added := make(map[string]bool)
	for ext := range extensions {
		if !old[ext] {
			added[ext] = true
		}
	}
	ix.extensions = extensions

	var evicted []string
	for path := range ix.files {
		if !extensions[extOf(path)] {
			evicted = append(evicted, path)
		}
	}
	for _, path := range evicted {
		delete(ix.files, path)
		ix.dropTagsLocked(path)
		metrics.IndexOpsTotal.WithLabelValues("remove").Inc()
	}
	ix.mu.Unlock()

	for _, path := range evicted {
		ix.notifier.Publish(Change{Op: ChangeRemoved, Path: path})
	}
	if len(evicted) > 0 {
		logging.Info("Extension change evicted %d files", len(evicted))
	}

	if len(added) == 0 {
		return nil
	}

	files, err := ix.vault.AllFiles()
	if err != nil {
		return fmt.Errorf("extension rescan failed: %w", err)
	}
	inserted := 0
	for _, f := range files {
		if !added[f.Ext()] || !ix.Tracks(f.Path) {
			continue
		}
		if _, ok := ix.GetFile(f.Path); ok {
			continue
		}
		rec, err := record.New(ix.vault, f)
		if err != nil {
			logging.Warn("Skipping %s during extension rescan: %v", f.Path, err)
			continue
		}
		ix.AddFile(rec)
		ix.notifier.Publish(Change{Op: ChangeCreated, Path: f.Path})
		inserted++
	}
	logging.Info("Extension change added %d files", inserted)
	return nil
}
