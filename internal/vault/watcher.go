package vault

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"media-index/internal/logging"
	"media-index/internal/metrics"
)

// EventOp tags the kind of filesystem mutation an Event describes.
type EventOp int

const (
	// OpCreated means a file appeared.
	OpCreated EventOp = iota
	// OpDeleted means a file disappeared.
	OpDeleted
	// OpRenamed means a file moved; Event.OldPath carries the previous path.
	OpRenamed
	// OpModified means a file's contents changed.
	OpModified
)

// String returns the lowercase op name used for logs and metric labels.
func (op EventOp) String() string {
	switch op {
	case OpCreated:
		return "created"
	case OpDeleted:
		return "deleted"
	case OpRenamed:
		return "renamed"
	case OpModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Event is a single filesystem mutation, addressed by vault-relative paths.
type Event struct {
	Op      EventOp
	Path    string
	OldPath string // set only for OpRenamed
}

// defaultRenameWindow is how long a rename of an old path waits for the
// matching create of the new path before degrading to a plain delete.
const defaultRenameWindow = 200 * time.Millisecond

// Watcher subscribes to filesystem mutations under the vault root and
// delivers them as Events.
//
// fsnotify reports a rename as a Rename event for the old path followed by a
// Create event for the new path, with no linkage between the two. The
// watcher correlates such pairs arriving within a short window into a single
// OpRenamed event; an unmatched rename degrades to OpDeleted and an
// unmatched create is delivered as OpCreated, so no mutation is ever lost.
type Watcher struct {
	vault        *Vault
	fsw          *fsnotify.Watcher
	events       chan Event
	renameWindow time.Duration

	mu           sync.Mutex
	pendingPath  string // old path of an uncorrelated rename, "" if none
	pendingTimer *time.Timer

	// Rename-window expiries are handed to loop() on this channel so that
	// every send on events happens from the loop goroutine. A timer firing
	// concurrently with Close can therefore never race the channel close.
	expiries chan string

	closeOnce sync.Once
	done      chan struct{}
}

// NewWatcher creates a Watcher for the vault. Call Start to begin delivery.
func NewWatcher(v *Vault) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		vault:        v,
		fsw:          fsw,
		events:       make(chan Event, 64),
		renameWindow: defaultRenameWindow,
		expiries:     make(chan string, 1),
		done:         make(chan struct{}),
	}, nil
}

// Events returns the channel mutation events are delivered on. The channel
// is closed when the watcher shuts down.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start registers watches for the vault tree and begins event delivery.
func (w *Watcher) Start() error {
	if err := w.watchTree(w.vault.Root()); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Close stops the watcher and closes the event channel.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		if err := w.fsw.Close(); err != nil {
			logging.Warn("Error closing filesystem watcher: %v", err)
		}
	})
}

// watchTree registers watches for dir and every non-hidden subdirectory.
func (w *Watcher) watchTree(dir string) error {
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			logging.Warn("Error accessing path %s while registering watches: %v", p, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && p != dir {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			logging.Warn("Failed to watch directory %s: %v", p, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer close(w.events)

	for {
		select {
		case <-w.done:
			return
		case old := <-w.expiries:
			if w.claimPendingRename(old) {
				w.emit(Event{Op: OpDeleted, Path: old})
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			metrics.WatcherErrors.Inc()
			logging.Warn("Filesystem watcher error: %v", err)
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := w.vault.Rel(ev.Name)
	if err != nil {
		return
	}
	if isHidden(rel) {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create):
		// A new directory needs its own watch; its contents are reported
		// as separate create events by most platforms, but walk anyway to
		// catch files that landed before the watch was registered.
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.watchTree(ev.Name); err != nil {
				logging.Warn("Failed to watch new directory %s: %v", rel, err)
			}
			return
		}
		if old, ok := w.takePendingRename(); ok {
			w.emit(Event{Op: OpRenamed, Path: rel, OldPath: old})
			return
		}
		w.emit(Event{Op: OpCreated, Path: rel})

	case ev.Op.Has(fsnotify.Rename):
		// Hold the old path briefly; the matching create names the new path.
		w.setPendingRename(rel)

	case ev.Op.Has(fsnotify.Remove):
		w.emit(Event{Op: OpDeleted, Path: rel})

	case ev.Op.Has(fsnotify.Write):
		w.emit(Event{Op: OpModified, Path: rel})
	}
}

// setPendingRename remembers the old path of a rename and arms a timer that
// degrades it to a delete if no create arrives within the window. Called
// only from the loop goroutine.
func (w *Watcher) setPendingRename(oldPath string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A second rename before the first resolved: flush the first as a delete.
	if w.pendingPath != "" {
		w.pendingTimer.Stop()
		w.emit(Event{Op: OpDeleted, Path: w.pendingPath})
	}

	w.pendingPath = oldPath
	w.pendingTimer = time.AfterFunc(w.renameWindow, func() {
		// Never emits directly: loop() claims the pending path and emits,
		// so a timer outliving Close cannot send on the closed channel.
		select {
		case w.expiries <- oldPath:
		case <-w.done:
		}
	})
}

// claimPendingRename consumes the pending rename if it still names old.
// A stale expiry (the rename was already correlated or superseded) reports
// false and is dropped.
func (w *Watcher) claimPendingRename(old string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pendingPath != old {
		return false
	}
	w.pendingPath = ""
	return true
}

// takePendingRename claims the pending rename old path, if any.
func (w *Watcher) takePendingRename() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pendingPath == "" {
		return "", false
	}
	old := w.pendingPath
	w.pendingPath = ""
	w.pendingTimer.Stop()
	return old, true
}

func (w *Watcher) emit(ev Event) {
	metrics.WatcherEventsTotal.WithLabelValues(ev.Op.String()).Inc()
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// isHidden reports whether any segment of a relative slash path is a dotfile.
func isHidden(relPath string) bool {
	for _, part := range strings.Split(relPath, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
