// Package record implements typed media records: a media file paired with
// its sidecar document, exposing derived-attribute accessors with lazy,
// cached computation.
//
// New classifies the file by extension and returns the kind-appropriate
// specialization. Image records additionally measure pixel dimensions and
// extract a dominant-color palette; both are cached in the sidecar front
// matter and recomputed only when the cache predates the media file's
// modification time. Video and unknown-kind records skip attribute
// extraction entirely.
//
// Attribute computation failures are logged and leave previously cached
// values in place; a record with incomplete attributes stays queryable and
// self-heals on the next Update.
package record
