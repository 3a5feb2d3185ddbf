package router

import (
	"media-index/internal/index"
	"media-index/internal/logging"
	"media-index/internal/metrics"
	"media-index/internal/record"
	"media-index/internal/sidecar"
	"media-index/internal/vault"
)

// Router turns vault filesystem events into index mutations. Each event is
// handled statelessly against current index and filesystem contents: every
// handler re-checks its precondition before acting, so a stale or
// double-fired event degrades to a no-op instead of corrupting state.
type Router struct {
	vault *vault.Vault
	index *index.Index
}

// New creates a router over a vault and its index.
func New(v *vault.Vault, ix *index.Index) *Router {
	return &Router{vault: v, index: ix}
}

// Run consumes watcher events until the channel closes. Events are handled
// independently; handlers rely on idempotence rather than ordering.
func (r *Router) Run(events <-chan vault.Event) {
	for ev := range events {
		go r.Dispatch(ev)
	}
}

// Dispatch routes one event to its handler. Events are counted at the
// watcher where they originate, not here.
func (r *Router) Dispatch(ev vault.Event) {
	logging.Debug("Routing %s event for %s", ev.Op, ev.Path)

	switch ev.Op {
	case vault.OpCreated:
		r.handleCreated(ev.Path)
	case vault.OpDeleted:
		r.handleDeleted(ev.Path)
	case vault.OpRenamed:
		r.handleRenamed(ev.Path, ev.OldPath)
	case vault.OpModified:
		r.handleModified(ev.Path)
	}
}

// handleCreated inserts a record for a new media file. Sidecar creations
// (including the router's own repairs) refresh the paired record's tags
// instead, which keeps repair from looping back into record construction.
func (r *Router) handleCreated(path string) {
	if sidecar.IsSidecarPath(path) {
		if media, ok := sidecar.MediaPathFor(path); ok {
			if _, indexed := r.index.GetFile(media); indexed {
				r.index.RefreshTags(media)
				r.notify(index.Change{Op: index.ChangeChanged, Path: media})
			}
		}
		return
	}
	if !r.index.Tracks(path) {
		return
	}
	if _, ok := r.index.GetFile(path); ok {
		return
	}

	f, err := r.vault.GetFile(path)
	if err != nil {
		logging.Debug("Create for %s raced with removal: %v", path, err)
		return
	}
	rec, err := record.New(r.vault, f)
	if err != nil {
		logging.Warn("Could not build record for %s: %v", path, err)
		return
	}
	r.index.AddFile(rec)
	r.notify(index.Change{Op: index.ChangeCreated, Path: path})
}

// handleDeleted removes a media record and its sidecar, or repairs the
// pairing when the deleted file was a sidecar whose media still exists.
func (r *Router) handleDeleted(path string) {
	if sidecar.IsSidecarPath(path) {
		if media, ok := sidecar.MediaPathFor(path); ok {
			r.repairSidecar(media)
		}
		return
	}
	if !r.index.RemoveFile(path) {
		return
	}
	side := sidecar.PathFor(path)
	if r.vault.Exists(side) {
		if err := r.vault.Delete(side); err != nil {
			logging.Warn("Could not remove orphaned sidecar %s: %v", side, err)
		}
	}
	r.notify(index.Change{Op: index.ChangeRemoved, Path: path})
}

// handleRenamed moves a media record to its new path, carrying the sidecar
// document along so cached attributes survive. A rename into or out of the
// sidecar namespace is a pairing break and goes through repair instead.
func (r *Router) handleRenamed(newPath, oldPath string) {
	if sidecar.IsSidecarPath(oldPath) {
		// The document walked away from its media file.
		if media, ok := sidecar.MediaPathFor(oldPath); ok {
			r.repairSidecar(media)
		}
	}
	if sidecar.IsSidecarPath(newPath) {
		if media, ok := sidecar.MediaPathFor(newPath); ok {
			if _, indexed := r.index.GetFile(media); indexed {
				r.index.RefreshTags(media)
				r.notify(index.Change{Op: index.ChangeChanged, Path: media})
			}
		}
		return
	}

	if !r.index.Tracks(newPath) {
		// Renamed out of the tracked set: same cleanup as a delete.
		r.handleDeleted(oldPath)
		return
	}

	moved := r.index.RemoveFile(oldPath)
	if moved {
		oldSide := sidecar.PathFor(oldPath)
		if r.vault.Exists(oldSide) {
			if err := r.vault.Rename(oldSide, sidecar.PathFor(newPath)); err != nil {
				logging.Warn("Could not carry sidecar %s along rename: %v", oldSide, err)
			}
		}
	}

	f, err := r.vault.GetFile(newPath)
	if err != nil {
		logging.Debug("Rename target %s raced with removal: %v", newPath, err)
		if moved {
			r.notify(index.Change{Op: index.ChangeRemoved, Path: oldPath})
		}
		return
	}
	rec, err := record.New(r.vault, f)
	if err != nil {
		logging.Warn("Could not build record for %s: %v", newPath, err)
		return
	}
	r.index.AddFile(rec)
	if moved {
		r.notify(index.Change{Op: index.ChangeMoved, Path: newPath, OldPath: oldPath})
	} else {
		r.notify(index.Change{Op: index.ChangeCreated, Path: newPath})
	}
}

// handleModified refreshes the record behind a changed file. Sidecar writes
// are resolved through the suffix to their paired media record; both cases
// run the record's staleness check and re-read tags.
func (r *Router) handleModified(path string) {
	media := path
	if m, ok := sidecar.MediaPathFor(path); ok {
		media = m
	}
	rec, ok := r.index.GetFile(media)
	if !ok {
		return
	}
	rec.Update()
	r.index.RefreshTags(media)
	r.notify(index.Change{Op: index.ChangeChanged, Path: media})
}

// repairSidecar recreates a missing sidecar for a media file that is still
// indexed and still on disk. Skipped otherwise; a second invocation finds
// the recreated document and is a no-op.
func (r *Router) repairSidecar(media string) {
	rec, indexed := r.index.GetFile(media)
	if !indexed || !r.vault.Exists(media) {
		return
	}
	if rec.Sidecar().Exists() {
		return
	}
	if _, err := sidecar.ResolveOrCreate(r.vault, media); err != nil {
		logging.Warn("Could not repair sidecar for %s: %v", media, err)
		return
	}
	metrics.SidecarRepairsTotal.Inc()
	logging.Info("Recreated sidecar for %s", media)
	r.notify(index.Change{Op: index.ChangeChanged, Path: media})
}

func (r *Router) notify(c index.Change) {
	r.index.Notifier().Publish(c)
}
