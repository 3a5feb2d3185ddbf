// Package sidecar implements the companion metadata documents paired with
// media files.
//
// Every media file at vault path P owns at most one sidecar markdown document
// at P + Suffix. The document's YAML front matter caches derived attributes
// (pixel size, dominant colors, tags, last-updated timestamp) under fixed
// field names; the free-form markdown body belongs to the user and survives
// every front matter rewrite byte for byte.
//
// ResolveOrCreate is the pairing entry point: it wraps an existing document
// or creates an empty one, and is safe to race for the same path. The
// create-if-absent check and the creation are a single exclusive-create
// step, so a losing caller observes the winner's document.
//
// Front matter write failures (for example a malformed existing document)
// are logged and dropped, never propagated; the sidecar's cached attributes
// simply stay stale until the next successful write.
package sidecar
