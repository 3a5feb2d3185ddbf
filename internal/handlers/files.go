package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"media-index/internal/query"
	"media-index/internal/record"
	"media-index/internal/sidecar"
)

// FileEntry is the JSON shape of one listed record. Width, height, and
// colors come from the sidecar cache only; a listing never forces a decode.
type FileEntry struct {
	Path    string          `json:"path"`
	Name    string          `json:"name"`
	Kind    string          `json:"kind"`
	Size    int64           `json:"size"`
	ModTime time.Time       `json:"modTime"`
	Tags    []string        `json:"tags"`
	Width   int             `json:"width,omitempty"`
	Height  int             `json:"height,omitempty"`
	Colors  []sidecar.Color `json:"colors,omitempty"`
}

// FilesResponse is the paginated listing envelope.
type FilesResponse struct {
	Files  []FileEntry `json:"files"`
	Total  int         `json:"total"`
	Offset int         `json:"offset"`
}

// ListFiles evaluates the query parameters against the index and returns
// the matching records in sorted order.
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	spec, err := specFromRequest(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	items, err := query.New(h.index, spec).Items()
	if err != nil {
		writeJSONError(w, "query failed", http.StatusInternalServerError)
		return
	}

	total := len(items)
	offset := intParam(r, "offset", 0)
	if offset > total {
		offset = total
	}
	items = items[offset:]
	if limit := intParam(r, "limit", 0); limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	entries := make([]FileEntry, 0, len(items))
	for _, rec := range items {
		entries = append(entries, entryFor(rec))
	}
	writeJSON(w, FilesResponse{Files: entries, Total: total, Offset: offset})
}

// GetFile returns the detail entry for one vault path.
func (h *Handlers) GetFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSONError(w, "path is required", http.StatusBadRequest)
		return
	}
	rec, ok := h.index.GetFile(path)
	if !ok {
		writeJSONError(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, entryFor(rec))
}

func entryFor(rec record.Record) FileEntry {
	f := rec.File()
	entry := FileEntry{
		Path:    rec.Path(),
		Name:    f.Name,
		Kind:    string(rec.Kind()),
		Size:    f.Size,
		ModTime: f.ModTime,
		Tags:    rec.Tags(),
	}
	if entry.Tags == nil {
		entry.Tags = []string{}
	}
	doc := rec.Sidecar()
	if w, h, ok := doc.Size(); ok {
		entry.Width, entry.Height = w, h
	}
	if colors, ok := doc.Colors(); ok {
		entry.Colors = colors
	}
	return entry
}

// specFromRequest maps listing query parameters onto a query spec.
func specFromRequest(r *http.Request) (query.Spec, error) {
	var spec query.Spec
	q := r.URL.Query()

	sortKey, err := query.ParseSortKey(q.Get("sort"))
	if err != nil {
		return spec, err
	}
	spec.Sort = sortKey
	spec.Descending = q.Get("order") == "desc"

	if hex := q.Get("color"); hex != "" {
		target, err := query.ParseHexColor(hex)
		if err != nil {
			return spec, err
		}
		spec.Color = target
		if t := q.Get("threshold"); t != "" {
			threshold, err := strconv.ParseFloat(t, 64)
			if err != nil || threshold <= 0 {
				return spec, fmt.Errorf("invalid threshold %q", t)
			}
			spec.ColorThreshold = threshold
		}
	}

	spec.Folders = q["folder"]
	spec.Tags = q["tag"]
	spec.RequiredFields = q["field"]
	for _, list := range q["ext"] {
		for _, ext := range strings.Split(list, ",") {
			if ext = strings.TrimSpace(ext); ext != "" {
				spec.Extensions = append(spec.Extensions, ext)
			}
		}
	}
	for _, name := range q["shape"] {
		shape, err := query.ParseShape(name)
		if err != nil {
			return spec, err
		}
		spec.Shapes = append(spec.Shapes, shape)
	}

	spec.MinWidth = intParam(r, "minWidth", 0)
	spec.MaxWidth = intParam(r, "maxWidth", 0)
	spec.MinHeight = intParam(r, "minHeight", 0)
	spec.MaxHeight = intParam(r, "maxHeight", 0)

	return spec, nil
}

func intParam(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
