package handlers

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"media-index/internal/logging"
)

// maxUploadSize caps multipart ingestion at 512 MiB.
const maxUploadSize = 512 << 20

// Upload ingests a multipart file into the vault. The index picks the new
// file up through the normal watcher create path; the handler only writes
// bytes.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSONError(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := path.Base(header.Filename)
	if name == "." || name == "/" || name == "" {
		writeJSONError(w, "invalid file name", http.StatusBadRequest)
		return
	}

	dest := name
	if folder := cleanFolder(r.FormValue("folder")); folder != "" {
		dest = folder + "/" + name
	}
	if !h.index.Tracks(dest) {
		writeJSONError(w, "unsupported file type", http.StatusUnsupportedMediaType)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSONError(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	if err := h.vault.Create(dest, data); err != nil {
		if errors.Is(err, fs.ErrExist) {
			writeJSONError(w, "file already exists", http.StatusConflict)
			return
		}
		logging.Error("Upload of %s failed: %v", dest, err)
		writeJSONError(w, "failed to store file", http.StatusInternalServerError)
		return
	}

	logging.Info("Uploaded %s (%d bytes)", dest, len(data))
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"path": dest})
}

// cleanFolder normalizes a user-supplied folder and rejects traversal.
func cleanFolder(folder string) string {
	folder = path.Clean("/" + folder)
	folder = strings.TrimPrefix(folder, "/")
	if folder == "." {
		return ""
	}
	return folder
}
