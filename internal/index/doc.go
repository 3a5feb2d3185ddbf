// Package index implements the process-wide in-memory collection of media
// records: a path map plus a tag reverse-lookup, populated by a one-time
// vault scan and mutated incrementally by the mutation router thereafter.
//
// The two maps are guarded by a single lock and always updated together, so
// a reader never observes a tag pointing at a record that is no longer in
// the path map. Initialize is idempotent; a second call is a no-op.
//
// The index carries no on-disk state of its own: it is rebuilt from media
// files and their sidecars on every initialization.
package index
