package record

import (
	"time"

	"media-index/internal/logging"
	"media-index/internal/mediatypes"
	"media-index/internal/sidecar"
	"media-index/internal/vault"
)

// Record is a media file plus its paired sidecar document.
type Record interface {
	// File returns the most recent snapshot of the underlying media file.
	File() *vault.File
	// Path returns the vault-relative media path (the record's identity).
	Path() string
	// Kind returns the media kind classified from the file extension.
	Kind() mediatypes.Kind
	// Sidecar returns the paired metadata document.
	Sidecar() *sidecar.Document
	// Tags returns the aggregated tag set from the sidecar.
	Tags() []string
	// FirstSeen returns when the record entered the index. Used as the
	// creation timestamp for sorting on filesystems without birth times.
	FirstSeen() time.Time
	// Update refreshes derived attributes: it ensures each cached attribute
	// is populated at least once, recomputes everything when the cache is
	// stale, and stamps the last-updated timestamp.
	Update()
}

// Imager is the capability interface implemented by records that can
// measure pixel dimensions and describe a dominant-color palette.
type Imager interface {
	// CachedSize returns pixel dimensions, decoding and persisting them on
	// a cache miss.
	CachedSize() (width, height int, err error)
	// CachedColors returns the dominant-color palette, extracting and
	// persisting it on a cache miss.
	CachedColors() ([]sidecar.Color, error)
}

// Base is the kind-independent record implementation. Video and
// unknown-kind records use it directly; Update only stamps.
type Base struct {
	vault     *vault.Vault
	file      *vault.File
	kind      mediatypes.Kind
	doc       *sidecar.Document
	firstSeen time.Time
}

// New builds the kind-appropriate record for a media file, resolving (and
// if absent creating) its sidecar document.
func New(v *vault.Vault, file *vault.File) (Record, error) {
	doc, err := sidecar.ResolveOrCreate(v, file.Path)
	if err != nil {
		return nil, err
	}

	base := Base{
		vault:     v,
		file:      file,
		kind:      mediatypes.GetKind("." + file.Ext()),
		doc:       doc,
		firstSeen: time.Now(),
	}

	if base.kind == mediatypes.KindImage {
		return &Image{Base: base}, nil
	}
	return &base, nil
}

// File returns the current file snapshot.
func (r *Base) File() *vault.File {
	return r.file
}

// Path returns the vault-relative media path.
func (r *Base) Path() string {
	return r.file.Path
}

// Kind returns the classified media kind.
func (r *Base) Kind() mediatypes.Kind {
	return r.kind
}

// Sidecar returns the paired metadata document.
func (r *Base) Sidecar() *sidecar.Document {
	return r.doc
}

// Tags returns the aggregated sidecar tags.
func (r *Base) Tags() []string {
	return r.doc.Tags()
}

// FirstSeen returns when the record was constructed.
func (r *Base) FirstSeen() time.Time {
	return r.firstSeen
}

// Update stamps the last-updated timestamp; kinds without derived
// attributes have nothing to recompute.
func (r *Base) Update() {
	r.stamp()
}

// stamp refreshes the file snapshot and writes the last-updated timestamp,
// keeping it at or above the file's modification time. An already current
// stamp is left alone: stamping must not rewrite the sidecar, or the write
// event it raises would route straight back into another Update.
func (r *Base) stamp() {
	if current, err := r.vault.GetFile(r.file.Path); err == nil {
		r.file = current
	} else {
		logging.Debug("Skipping stamp for %s: %v", r.file.Path, err)
		return
	}
	if updated, ok := r.doc.UpdatedAt(); ok && !updated.Before(r.file.ModTime) {
		return
	}
	r.doc.SetUpdatedAt(r.file.ModTime)
}
