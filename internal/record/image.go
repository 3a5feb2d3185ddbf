package record

import (
	"time"

	"media-index/internal/logging"
	"media-index/internal/metrics"
	"media-index/internal/sidecar"
)

// Image specializes Base with pixel-dimension and dominant-color
// attributes, cached in the sidecar front matter.
type Image struct {
	Base
}

// CachedSize returns the image's natural pixel dimensions. A cached
// well-formed value is served directly; otherwise the image header is
// decoded and the result persisted.
func (r *Image) CachedSize() (width, height int, err error) {
	if w, h, ok := r.doc.Size(); ok {
		return w, h, nil
	}

	w, h, err := r.computeSize()
	if err != nil {
		return 0, 0, err
	}
	r.doc.SetSize(w, h)
	return w, h, nil
}

// CachedColors returns the image's dominant-color palette. A cached value
// is served directly; otherwise the palette is extracted from decoded pixel
// data and persisted.
func (r *Image) CachedColors() ([]sidecar.Color, error) {
	if colors, ok := r.doc.Colors(); ok {
		return colors, nil
	}

	colors, err := r.computeColors()
	if err != nil {
		return nil, err
	}
	r.doc.SetColors(colors)
	return colors, nil
}

// Update applies the two-phase refresh policy: first ensure both cached
// attributes are populated at least once, then force recomputation of both
// when the last-updated stamp is missing or predates the file's current
// modification time, stamping afterwards. The common path (attributes
// already fresh) pays no decode cost and writes nothing.
func (r *Image) Update() {
	// Phase 1: ensure present.
	if _, _, err := r.CachedSize(); err != nil {
		logging.Warn("Failed to compute size for %s: %v", r.Path(), err)
	}
	if _, err := r.CachedColors(); err != nil {
		logging.Warn("Failed to compute colors for %s: %v", r.Path(), err)
	}

	// Phase 2: ensure fresh. Re-stat so a mutation between event delivery
	// and this update is observed.
	current, err := r.vault.GetFile(r.Path())
	if err != nil {
		logging.Debug("Skipping staleness check for %s: %v", r.Path(), err)
		return
	}
	r.file = current

	// Stamp only after a stale pass. A fresh record must leave the sidecar
	// untouched, so the update triggered by the sidecar's own write event
	// terminates instead of feeding the watcher forever.
	if r.isStale(current.ModTime) {
		r.recompute()
		r.doc.SetUpdatedAt(current.ModTime)
	}
}

// isStale reports whether cached attributes can no longer be trusted: the
// last-updated stamp is absent or older than the file's modification time.
func (r *Image) isStale(modTime time.Time) bool {
	updated, ok := r.doc.UpdatedAt()
	return !ok || updated.Before(modTime)
}

// recompute forces both attributes to be recomputed, ignoring any cached
// values. Failures leave the previous cache in place.
func (r *Image) recompute() {
	logging.Debug("Recomputing stale attributes for %s", r.Path())

	if w, h, err := r.computeSize(); err == nil {
		metrics.AttributeRecomputes.WithLabelValues("size").Inc()
		r.doc.SetSize(w, h)
	} else {
		logging.Warn("Failed to recompute size for %s: %v", r.Path(), err)
	}

	if colors, err := r.computeColors(); err == nil {
		metrics.AttributeRecomputes.WithLabelValues("colors").Inc()
		r.doc.SetColors(colors)
	} else {
		logging.Warn("Failed to recompute colors for %s: %v", r.Path(), err)
	}
}

// computeSize decodes the image header for its natural dimensions.
func (r *Image) computeSize() (width, height int, err error) {
	start := time.Now()
	defer func() {
		metrics.AttributeDecodeDuration.WithLabelValues("size").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.AttributeDecodeFailures.WithLabelValues("size").Inc()
		}
	}()

	dims, err := GetImageDimensions(r.vault.Abs(r.Path()))
	if err != nil {
		return 0, 0, err
	}
	return dims.Width, dims.Height, nil
}

// computeColors decodes pixel data and clusters it into a palette.
func (r *Image) computeColors() (colors []sidecar.Color, err error) {
	start := time.Now()
	defer func() {
		metrics.AttributeDecodeDuration.WithLabelValues("colors").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.AttributeDecodeFailures.WithLabelValues("colors").Inc()
		}
	}()

	return ExtractPalette(r.vault.Abs(r.Path()))
}
