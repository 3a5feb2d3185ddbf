package handlers

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"
)

// TagEntry summarizes one tag in the index.
type TagEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ListTags returns every tag with its member count, sorted by name.
func (h *Handlers) ListTags(w http.ResponseWriter, _ *http.Request) {
	tagMap := h.index.Tags()
	tags := make([]TagEntry, 0, len(tagMap))
	for name, members := range tagMap {
		tags = append(tags, TagEntry{Name: name, Count: len(members)})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	writeJSON(w, tags)
}

// GetFilesByTag returns the listing entries for one tag.
func (h *Handlers) GetFilesByTag(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if tag == "" {
		writeJSONError(w, "tag name is required", http.StatusBadRequest)
		return
	}

	records := h.index.TaggedWith(tag)
	entries := make([]FileEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, entryFor(rec))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	writeJSON(w, entries)
}
