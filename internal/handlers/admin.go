package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"media-index/internal/logging"
	"media-index/internal/mediatypes"
)

// Reindex discards the in-memory index and rescans the vault.
func (h *Handlers) Reindex(w http.ResponseWriter, _ *http.Request) {
	logging.Info("Reindex requested over HTTP")
	if err := h.index.Reindex(); err != nil {
		logging.Error("Reindex failed: %v", err)
		writeJSONError(w, "reindex failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]interface{}{
		"status": "ok",
		"files":  h.index.Len(),
	})
}

// ExtensionsRequest is the body of an extension-set update.
type ExtensionsRequest struct {
	Extensions []string `json:"extensions"`
}

// GetExtensions returns the currently tracked extension set.
func (h *Handlers) GetExtensions(w http.ResponseWriter, _ *http.Request) {
	set := h.index.Extensions()
	extensions := make([]string, 0, len(set))
	for ext := range set {
		extensions = append(extensions, ext)
	}
	writeJSON(w, ExtensionsRequest{Extensions: extensions})
}

// UpdateExtensions swaps the tracked extension set at runtime, evicting and
// discovering records as needed.
func (h *Handlers) UpdateExtensions(w http.ResponseWriter, r *http.Request) {
	var req ExtensionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Extensions) == 0 {
		writeJSONError(w, "extensions array is required", http.StatusBadRequest)
		return
	}

	set := mediatypes.ParseExtensionList(strings.Join(req.Extensions, ","))
	if set == nil {
		writeJSONError(w, "no valid extensions given", http.StatusBadRequest)
		return
	}
	if err := h.index.UpdateExtensions(set); err != nil {
		logging.Error("Extension update failed: %v", err)
		writeJSONError(w, "extension rescan failed", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "ok")
}
