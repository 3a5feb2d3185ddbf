// Package router dispatches vault filesystem events into index mutations
// while keeping the media/sidecar pairing invariant intact: deleting or
// renaming a sidecar away from a live media file triggers recreation of a
// fresh document, and media deletes and renames cascade onto the paired
// sidecar. Handlers are stateless and precondition-checked, so interleaved
// or double-fired events settle into the same end state.
package router
